// Package evaluate scores deliverables against expected output kinds.
// Scoring is structural: it inspects the typed payloads rather than pattern
// matching on rendered text, so results are deterministic.
package evaluate

import (
	"github.com/taskflowr/taskflowr/pkg/models"
)

// Kind names one category of output a deliverable can contain.
type Kind string

const (
	KindChecklist    Kind = "checklist"
	KindWorkflow     Kind = "workflow"
	KindTemplate     Kind = "template"
	KindEmail        Kind = "email"
	KindSummary      Kind = "summary"
	KindAnnouncement Kind = "announcement"
)

// Report is the outcome of evaluating one deliverable.
type Report struct {
	// RunID is the evaluated run.
	RunID string `json:"run_id"`
	// Status is the deliverable's completion status.
	Status models.DeliverableStatus `json:"status"`
	// Expected lists the kinds the deliverable was supposed to contain.
	Expected []Kind `json:"expected"`
	// Found lists the expected kinds actually present.
	Found []Kind `json:"found"`
	// Missing lists the expected kinds not present.
	Missing []Kind `json:"missing"`
	// Passed is true when every expected kind was found.
	Passed bool `json:"passed"`
	// Coverage is found/expected, 1.0 when nothing was expected.
	Coverage float64 `json:"coverage"`
}

// Evaluate checks a deliverable for the expected output kinds.
func Evaluate(d *models.Deliverable, expected []Kind) *Report {
	present := DetectKinds(d)
	presentSet := make(map[Kind]bool, len(present))
	for _, k := range present {
		presentSet[k] = true
	}

	report := &Report{
		RunID:    d.RunID,
		Status:   d.Status,
		Expected: expected,
	}
	for _, k := range expected {
		if presentSet[k] {
			report.Found = append(report.Found, k)
		} else {
			report.Missing = append(report.Missing, k)
		}
	}
	report.Passed = len(report.Missing) == 0
	if len(expected) == 0 {
		report.Coverage = 1.0
	} else {
		report.Coverage = float64(len(report.Found)) / float64(len(expected))
	}
	return report
}

// DetectKinds reports which output kinds a deliverable contains, in a fixed
// order.
func DetectKinds(d *models.Deliverable) []Kind {
	var (
		found []Kind
		seen  = make(map[Kind]bool)
	)
	add := func(k Kind) {
		if !seen[k] {
			seen[k] = true
			found = append(found, k)
		}
	}

	for _, p := range d.Payloads {
		if p.Payload == nil {
			continue
		}
		if s := p.Payload.Structured; s != nil {
			if len(s.Checklists) > 0 {
				add(KindChecklist)
			}
			if len(s.Workflows) > 0 {
				add(KindWorkflow)
			}
			if len(s.Templates) > 0 {
				add(KindTemplate)
			}
		}
		if c := p.Payload.Communication; c != nil {
			if len(c.Emails) > 0 {
				add(KindEmail)
			}
			if len(c.Summaries) > 0 {
				add(KindSummary)
			}
			if len(c.Announcements) > 0 {
				add(KindAnnouncement)
			}
		}
	}
	return found
}
