package executor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/taskflowr/taskflowr/internal/capability"
	"github.com/taskflowr/taskflowr/internal/router"
	"github.com/taskflowr/taskflowr/pkg/models"
)

// stubAdapter is a scripted Adapter for exercising the executor without a
// generative backend.
type stubAdapter struct {
	class  models.CapabilityClass
	invoke func(ctx context.Context, description string, prior []capability.PriorResult, tone string) (*models.WorkerPayload, error)

	mu          sync.Mutex
	invocations []string
	priors      map[string][]capability.PriorResult
}

func newStubAdapter(class models.CapabilityClass) *stubAdapter {
	return &stubAdapter{
		class:  class,
		priors: make(map[string][]capability.PriorResult),
		invoke: func(context.Context, string, []capability.PriorResult, string) (*models.WorkerPayload, error) {
			return okPayload(class), nil
		},
	}
}

func (s *stubAdapter) Class() models.CapabilityClass { return s.class }

func (s *stubAdapter) Invoke(ctx context.Context, description string, prior []capability.PriorResult, tone string) (*models.WorkerPayload, error) {
	s.mu.Lock()
	s.invocations = append(s.invocations, description)
	s.priors[description] = prior
	s.mu.Unlock()
	return s.invoke(ctx, description, prior, tone)
}

func (s *stubAdapter) callCount(description string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, d := range s.invocations {
		if d == description {
			n++
		}
	}
	return n
}

func okPayload(class models.CapabilityClass) *models.WorkerPayload {
	if class == models.CapabilityStructuredOps {
		return &models.WorkerPayload{
			Class: class,
			Structured: &models.StructuredPayload{
				Checklists: []models.Checklist{{Title: "t", Items: []string{"a"}}},
			},
		}
	}
	return &models.WorkerPayload{
		Class: class,
		Communication: &models.CommunicationPayload{
			Summaries: []models.Summary{{Title: "t", Content: "c"}},
		},
	}
}

func adapterSet(structured, natural *stubAdapter) map[models.CapabilityClass]capability.Adapter {
	return map[models.CapabilityClass]capability.Adapter{
		models.CapabilityStructuredOps:   structured,
		models.CapabilityNaturalLanguage: natural,
	}
}

func mustRoute(t *testing.T, subtasks []models.Subtask) *models.DispatchPlan {
	t.Helper()
	plan, err := router.Route(subtasks)
	if err != nil {
		t.Fatalf("routing failed: %v", err)
	}
	return plan
}

func TestExecuteAllSucceed(t *testing.T) {
	structured := newStubAdapter(models.CapabilityStructuredOps)
	natural := newStubAdapter(models.CapabilityNaturalLanguage)
	exec := New(adapterSet(structured, natural), time.Second)

	plan := mustRoute(t, []models.Subtask{
		{ID: "s1", Seq: 1, CapabilityClass: models.CapabilityStructuredOps, Description: "build checklist"},
		{ID: "s2", Seq: 2, CapabilityClass: models.CapabilityNaturalLanguage, Description: "draft email"},
		{ID: "s3", Seq: 3, CapabilityClass: models.CapabilityStructuredOps, Description: "build workflow"},
	})

	results, err := exec.Execute(context.Background(), "run-1", plan, "professional")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Outcome != models.OutcomeSuccess {
			t.Errorf("subtask %s: outcome = %s, want success", res.SubtaskID, res.Outcome)
		}
		if res.Attempts != 1 {
			t.Errorf("subtask %s: attempts = %d, want 1", res.SubtaskID, res.Attempts)
		}
		if res.Payload == nil {
			t.Errorf("subtask %s: expected payload", res.SubtaskID)
		}
	}
}

func TestExecuteWaveOrdering(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(desc string) {
		mu.Lock()
		order = append(order, desc)
		mu.Unlock()
	}

	structured := newStubAdapter(models.CapabilityStructuredOps)
	structured.invoke = func(_ context.Context, desc string, _ []capability.PriorResult, _ string) (*models.WorkerPayload, error) {
		record(desc)
		return okPayload(models.CapabilityStructuredOps), nil
	}
	natural := newStubAdapter(models.CapabilityNaturalLanguage)
	natural.invoke = func(_ context.Context, desc string, _ []capability.PriorResult, _ string) (*models.WorkerPayload, error) {
		record(desc)
		return okPayload(models.CapabilityNaturalLanguage), nil
	}
	exec := New(adapterSet(structured, natural), time.Second)

	plan := mustRoute(t, []models.Subtask{
		{ID: "s1", Seq: 1, CapabilityClass: models.CapabilityStructuredOps, Description: "first"},
		{ID: "s2", Seq: 2, CapabilityClass: models.CapabilityNaturalLanguage, Description: "second", DependsOn: []string{"s1"}},
	})

	if _, err := exec.Execute(context.Background(), "run-1", plan, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("expected dependency to run after its prerequisite, got order %v", order)
	}
}

func TestExecuteFailureIsolated(t *testing.T) {
	structured := newStubAdapter(models.CapabilityStructuredOps)
	natural := newStubAdapter(models.CapabilityNaturalLanguage)
	natural.invoke = func(context.Context, string, []capability.PriorResult, string) (*models.WorkerPayload, error) {
		return nil, &capability.Error{Class: models.CapabilityNaturalLanguage, Reason: "empty response"}
	}
	exec := New(adapterSet(structured, natural), time.Second)

	plan := mustRoute(t, []models.Subtask{
		{ID: "s1", Seq: 1, CapabilityClass: models.CapabilityStructuredOps, Description: "ok one"},
		{ID: "s2", Seq: 2, CapabilityClass: models.CapabilityNaturalLanguage, Description: "bad"},
		{ID: "s3", Seq: 3, CapabilityClass: models.CapabilityStructuredOps, Description: "ok two"},
	})

	results, err := exec.Execute(context.Background(), "run-1", plan, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byID := make(map[string]models.WorkerResult)
	for _, res := range results {
		byID[res.SubtaskID] = res
	}
	if byID["s1"].Outcome != models.OutcomeSuccess || byID["s3"].Outcome != models.OutcomeSuccess {
		t.Errorf("sibling subtasks should succeed despite s2 failing: %+v", byID)
	}
	failed := byID["s2"]
	if failed.Outcome != models.OutcomeFailure {
		t.Errorf("s2 outcome = %s, want failure", failed.Outcome)
	}
	if failed.Attempts != 1 {
		t.Errorf("failures must not be retried, attempts = %d", failed.Attempts)
	}
	if !strings.Contains(failed.Err, "empty response") {
		t.Errorf("expected failure reason in Err, got %q", failed.Err)
	}
}

func TestExecuteTimeoutRetriedOnce(t *testing.T) {
	structured := newStubAdapter(models.CapabilityStructuredOps)
	structured.invoke = func(ctx context.Context, _ string, _ []capability.PriorResult, _ string) (*models.WorkerPayload, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	natural := newStubAdapter(models.CapabilityNaturalLanguage)
	exec := New(adapterSet(structured, natural), 20*time.Millisecond)

	plan := mustRoute(t, []models.Subtask{
		{ID: "s1", Seq: 1, CapabilityClass: models.CapabilityStructuredOps, Description: "slow"},
	})

	results, err := exec.Execute(context.Background(), "run-1", plan, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	res := results[0]
	if res.Outcome != models.OutcomeTimeout {
		t.Errorf("outcome = %s, want timeout", res.Outcome)
	}
	if res.Attempts != 2 {
		t.Errorf("attempts = %d, want exactly 2 (one retry)", res.Attempts)
	}
	if structured.callCount("slow") != 2 {
		t.Errorf("adapter invoked %d times, want 2", structured.callCount("slow"))
	}
}

func TestExecuteTimeoutThenSuccess(t *testing.T) {
	var calls int
	var mu sync.Mutex
	structured := newStubAdapter(models.CapabilityStructuredOps)
	structured.invoke = func(ctx context.Context, _ string, _ []capability.PriorResult, _ string) (*models.WorkerPayload, error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return okPayload(models.CapabilityStructuredOps), nil
	}
	natural := newStubAdapter(models.CapabilityNaturalLanguage)
	exec := New(adapterSet(structured, natural), 20*time.Millisecond)

	plan := mustRoute(t, []models.Subtask{
		{ID: "s1", Seq: 1, CapabilityClass: models.CapabilityStructuredOps, Description: "flaky"},
	})

	results, err := exec.Execute(context.Background(), "run-1", plan, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := results[0]
	if res.Outcome != models.OutcomeSuccess {
		t.Errorf("outcome = %s, want success after retry", res.Outcome)
	}
	if res.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", res.Attempts)
	}
	if res.Payload == nil {
		t.Error("expected payload from the retry attempt")
	}
}

func TestExecuteCancellationStopsFurtherWaves(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	structured := newStubAdapter(models.CapabilityStructuredOps)
	structured.invoke = func(context.Context, string, []capability.PriorResult, string) (*models.WorkerPayload, error) {
		cancel()
		return okPayload(models.CapabilityStructuredOps), nil
	}
	natural := newStubAdapter(models.CapabilityNaturalLanguage)
	exec := New(adapterSet(structured, natural), time.Second)

	plan := mustRoute(t, []models.Subtask{
		{ID: "s1", Seq: 1, CapabilityClass: models.CapabilityStructuredOps, Description: "wave zero"},
		{ID: "s2", Seq: 2, CapabilityClass: models.CapabilityNaturalLanguage, Description: "wave one", DependsOn: []string{"s1"}},
	})

	results, err := exec.Execute(ctx, "run-1", plan, "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(results) != 1 || results[0].SubtaskID != "s1" {
		t.Fatalf("expected only the wave-zero result, got %+v", results)
	}
	if natural.callCount("wave one") != 0 {
		t.Error("wave-one subtask must not dispatch after cancellation")
	}
}

func TestExecuteCancellationDuringFinalWave(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	structured := newStubAdapter(models.CapabilityStructuredOps)
	structured.invoke = func(context.Context, string, []capability.PriorResult, string) (*models.WorkerPayload, error) {
		cancel()
		return okPayload(models.CapabilityStructuredOps), nil
	}
	natural := newStubAdapter(models.CapabilityNaturalLanguage)
	exec := New(adapterSet(structured, natural), time.Second)

	// Single wave: there is no later wave left to skip, but the run is
	// still cancelled.
	plan := mustRoute(t, []models.Subtask{
		{ID: "s1", Seq: 1, CapabilityClass: models.CapabilityStructuredOps, Description: "only"},
	})

	results, err := exec.Execute(ctx, "run-1", plan, "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled after final-wave cancellation, got %v", err)
	}
	if len(results) != 1 || results[0].SubtaskID != "s1" {
		t.Fatalf("settled results must still be returned, got %+v", results)
	}
}

func TestExecutePriorContextOnlyForDependencies(t *testing.T) {
	structured := newStubAdapter(models.CapabilityStructuredOps)
	natural := newStubAdapter(models.CapabilityNaturalLanguage)
	exec := New(adapterSet(structured, natural), time.Second)

	plan := mustRoute(t, []models.Subtask{
		{ID: "s1", Seq: 1, CapabilityClass: models.CapabilityStructuredOps, Description: "base"},
		{ID: "s2", Seq: 2, CapabilityClass: models.CapabilityStructuredOps, Description: "unrelated"},
		{ID: "s3", Seq: 3, CapabilityClass: models.CapabilityNaturalLanguage, Description: "dependent", DependsOn: []string{"s1"}},
	})

	if _, err := exec.Execute(context.Background(), "run-1", plan, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prior := natural.priors["dependent"]
	if len(prior) != 1 {
		t.Fatalf("expected exactly one prior result, got %d", len(prior))
	}
	if prior[0].SubtaskID != "s1" {
		t.Errorf("prior result from %s, want s1", prior[0].SubtaskID)
	}
	if len(structured.priors["unrelated"]) != 0 {
		t.Error("independent subtask must receive no prior context")
	}
}

func TestExecuteFailedDependencyYieldsNoPriorContext(t *testing.T) {
	structured := newStubAdapter(models.CapabilityStructuredOps)
	structured.invoke = func(context.Context, string, []capability.PriorResult, string) (*models.WorkerPayload, error) {
		return nil, &capability.Error{Class: models.CapabilityStructuredOps, Reason: "malformed"}
	}
	natural := newStubAdapter(models.CapabilityNaturalLanguage)
	exec := New(adapterSet(structured, natural), time.Second)

	plan := mustRoute(t, []models.Subtask{
		{ID: "s1", Seq: 1, CapabilityClass: models.CapabilityStructuredOps, Description: "broken base"},
		{ID: "s2", Seq: 2, CapabilityClass: models.CapabilityNaturalLanguage, Description: "dependent", DependsOn: []string{"s1"}},
	})

	results, err := exec.Execute(context.Background(), "run-1", plan, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if got := natural.priors["dependent"]; len(got) != 0 {
		t.Errorf("failed dependency must contribute no prior context, got %+v", got)
	}
}

func TestExecuteMissingAdapter(t *testing.T) {
	exec := New(map[models.CapabilityClass]capability.Adapter{
		models.CapabilityStructuredOps: newStubAdapter(models.CapabilityStructuredOps),
	}, time.Second)

	plan := mustRoute(t, []models.Subtask{
		{ID: "s1", Seq: 1, CapabilityClass: models.CapabilityNaturalLanguage, Description: "draft"},
	})

	if _, err := exec.Execute(context.Background(), "run-1", plan, ""); err == nil {
		t.Fatal("expected error for unregistered adapter class")
	}
}
