package evaluate

import (
	"context"
	"errors"
	"testing"

	"github.com/taskflowr/taskflowr/pkg/models"
)

func deliverableWith(payloads ...models.DeliverablePayload) *models.Deliverable {
	return &models.Deliverable{
		RunID:    "run-1",
		Status:   models.StatusComplete,
		Payloads: payloads,
	}
}

func structuredPayload(checklists, workflows int) models.DeliverablePayload {
	p := &models.StructuredPayload{}
	for i := 0; i < checklists; i++ {
		p.Checklists = append(p.Checklists, models.Checklist{Title: "c", Items: []string{"i"}})
	}
	for i := 0; i < workflows; i++ {
		p.Workflows = append(p.Workflows, models.Workflow{Name: "w", Steps: []string{"s"}})
	}
	return models.DeliverablePayload{
		SubtaskID: "s1",
		Class:     models.CapabilityStructuredOps,
		Payload:   &models.WorkerPayload{Class: models.CapabilityStructuredOps, Structured: p},
	}
}

func communicationPayload(emails, summaries int) models.DeliverablePayload {
	p := &models.CommunicationPayload{}
	for i := 0; i < emails; i++ {
		p.Emails = append(p.Emails, models.Email{Recipient: "r", Subject: "s", Body: "b"})
	}
	for i := 0; i < summaries; i++ {
		p.Summaries = append(p.Summaries, models.Summary{Title: "t", Content: "c"})
	}
	return models.DeliverablePayload{
		SubtaskID: "s2",
		Class:     models.CapabilityNaturalLanguage,
		Payload:   &models.WorkerPayload{Class: models.CapabilityNaturalLanguage, Communication: p},
	}
}

func TestDetectKinds(t *testing.T) {
	d := deliverableWith(structuredPayload(1, 1), communicationPayload(1, 0))
	kinds := DetectKinds(d)

	want := map[Kind]bool{KindChecklist: true, KindWorkflow: true, KindEmail: true}
	if len(kinds) != len(want) {
		t.Fatalf("detected %v, want %d kinds", kinds, len(want))
	}
	for _, k := range kinds {
		if !want[k] {
			t.Errorf("unexpected kind %s", k)
		}
	}
}

func TestEvaluateAllExpectedFound(t *testing.T) {
	d := deliverableWith(structuredPayload(1, 0), communicationPayload(0, 1))
	report := Evaluate(d, []Kind{KindChecklist, KindSummary})

	if !report.Passed {
		t.Errorf("expected pass, missing %v", report.Missing)
	}
	if report.Coverage != 1.0 {
		t.Errorf("coverage = %f, want 1.0", report.Coverage)
	}
}

func TestEvaluateMissingKind(t *testing.T) {
	d := deliverableWith(structuredPayload(1, 0))
	report := Evaluate(d, []Kind{KindChecklist, KindEmail})

	if report.Passed {
		t.Error("expected failure when a kind is missing")
	}
	if len(report.Missing) != 1 || report.Missing[0] != KindEmail {
		t.Errorf("missing = %v, want [email]", report.Missing)
	}
	if report.Coverage != 0.5 {
		t.Errorf("coverage = %f, want 0.5", report.Coverage)
	}
}

func TestEvaluateNoExpectations(t *testing.T) {
	report := Evaluate(deliverableWith(), nil)
	if !report.Passed || report.Coverage != 1.0 {
		t.Errorf("empty expectations should trivially pass: %+v", report)
	}
}

func TestRunSuiteAggregates(t *testing.T) {
	cases := []TestCase{
		{ID: "TC1", Input: "a", Expected: []Kind{KindChecklist}},
		{ID: "TC2", Input: "b", Expected: []Kind{KindEmail}},
		{ID: "TC3", Input: "c", Expected: []Kind{KindSummary}},
	}
	run := func(_ context.Context, instruction string) (*models.Deliverable, error) {
		switch instruction {
		case "a":
			return deliverableWith(structuredPayload(1, 0)), nil
		case "b":
			return deliverableWith(), nil // missing the email
		default:
			return nil, errors.New("backend unavailable")
		}
	}

	result, err := RunSuite(context.Background(), run, cases)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Passed != 1 || result.Failed != 2 {
		t.Errorf("passed=%d failed=%d, want 1/2", result.Passed, result.Failed)
	}
	if result.Results[2].Err == "" {
		t.Error("errored case should carry its error")
	}
	if want := float64(1) / 3 * 100; result.SuccessRate != want {
		t.Errorf("success rate = %f, want %f", result.SuccessRate, want)
	}
}

func TestRunSuiteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunSuite(ctx, func(context.Context, string) (*models.Deliverable, error) {
		return deliverableWith(), nil
	}, DefaultTestCases())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
