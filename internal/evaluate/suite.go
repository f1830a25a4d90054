package evaluate

import (
	"context"
	"fmt"
	"time"

	"github.com/taskflowr/taskflowr/pkg/models"
)

// RunFunc executes one instruction end to end and returns its deliverable.
// Satisfied by the engine; tests substitute canned deliverables.
type RunFunc func(ctx context.Context, instruction string) (*models.Deliverable, error)

// TestCase is one end-to-end evaluation scenario.
type TestCase struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Input    string `json:"input"`
	Expected []Kind `json:"expected"`
}

// DefaultTestCases returns the built-in evaluation scenarios covering both
// capability classes and mixed instructions.
func DefaultTestCases() []TestCase {
	return []TestCase{
		{
			ID:       "TC001",
			Name:     "Sales Report Generation",
			Input:    "Create Q4 sales report with monthly figures, top products, regional analysis, and executive summary",
			Expected: []Kind{KindChecklist, KindSummary},
		},
		{
			ID:       "TC002",
			Name:     "Team Communication",
			Input:    "Draft team announcement about new process and create onboarding checklist for new members",
			Expected: []Kind{KindAnnouncement, KindChecklist},
		},
		{
			ID:       "TC003",
			Name:     "Workflow Automation",
			Input:    "Generate weekly operations checklist with monitoring tasks, reporting, and quality checks",
			Expected: []Kind{KindWorkflow, KindChecklist},
		},
	}
}

// CaseResult pairs a test case with its evaluation report and timing.
type CaseResult struct {
	Case         TestCase      `json:"case"`
	Report       *Report       `json:"report,omitempty"`
	Err          string        `json:"error,omitempty"`
	ResponseTime time.Duration `json:"response_time"`
}

// SuiteResult aggregates the outcome of a full evaluation run.
type SuiteResult struct {
	Total               int           `json:"total"`
	Passed              int           `json:"passed"`
	Failed              int           `json:"failed"`
	Results             []CaseResult  `json:"results"`
	AverageResponseTime time.Duration `json:"average_response_time"`
	SuccessRate         float64       `json:"success_rate"`
}

// RunSuite executes every test case through run and evaluates the
// deliverables. A case that errors counts as failed; the suite itself only
// errors when the context is cancelled.
func RunSuite(ctx context.Context, run RunFunc, cases []TestCase) (*SuiteResult, error) {
	result := &SuiteResult{Total: len(cases)}
	var totalTime time.Duration

	for _, tc := range cases {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("evaluation cancelled: %w", err)
		}

		start := time.Now()
		deliverable, err := run(ctx, tc.Input)
		elapsed := time.Since(start)
		totalTime += elapsed

		cr := CaseResult{Case: tc, ResponseTime: elapsed}
		if err != nil {
			cr.Err = err.Error()
			result.Failed++
		} else {
			cr.Report = Evaluate(deliverable, tc.Expected)
			if cr.Report.Passed {
				result.Passed++
			} else {
				result.Failed++
			}
		}
		result.Results = append(result.Results, cr)
	}

	if len(cases) > 0 {
		result.AverageResponseTime = totalTime / time.Duration(len(cases))
		result.SuccessRate = float64(result.Passed) / float64(len(cases)) * 100
	}
	return result, nil
}
