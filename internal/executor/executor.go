// Package executor dispatches a routed plan wave by wave. Subtasks within
// one wave run concurrently; a wave starts only after the previous wave has
// fully settled, so dependency payloads are always available before their
// dependents dispatch.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/taskflowr/taskflowr/internal/capability"
	"github.com/taskflowr/taskflowr/internal/events"
	"github.com/taskflowr/taskflowr/pkg/models"
)

// Executor runs dispatch plans against a fixed set of capability adapters.
type Executor struct {
	adapters map[models.CapabilityClass]capability.Adapter
	timeout  time.Duration
	emitter  *events.Emitter
}

// New creates an Executor with the given adapters and per-subtask timeout.
func New(adapters map[models.CapabilityClass]capability.Adapter, timeout time.Duration) *Executor {
	return &Executor{
		adapters: adapters,
		timeout:  timeout,
	}
}

// SetEmitter attaches an event emitter. Dispatch and settlement events are
// emitted per subtask. Nil disables emission.
func (e *Executor) SetEmitter(em *events.Emitter) {
	e.emitter = em
}

// Execute runs every subtask in the plan and returns one WorkerResult per
// subtask, in plan assignment order. Adapter failures and timeouts are
// absorbed into results; they never abort sibling subtasks. The only error
// return is cancellation: if ctx is cancelled, no further waves are
// dispatched and the results gathered so far are returned alongside
// ctx.Err(). The check also runs after the final wave settles, so a
// cancellation arriving mid-wave is never reported as a normal completion.
func (e *Executor) Execute(ctx context.Context, runID string, plan *models.DispatchPlan, tone string) ([]models.WorkerResult, error) {
	for _, as := range plan.Assignments {
		if _, ok := e.adapters[as.Adapter]; !ok {
			return nil, fmt.Errorf("no adapter registered for class %q", as.Adapter)
		}
	}

	// settled holds results keyed by subtask ID. Waves run strictly in
	// order, so reads for prior context never race with writes.
	settled := make(map[string]models.WorkerResult, plan.Size())

	for wave, subtasks := range plan.Waves {
		if err := ctx.Err(); err != nil {
			log.Printf("[executor] run %s cancelled before wave %d", runID, wave)
			return e.collect(plan, settled), err
		}

		// Snapshot prior context for the whole wave before any goroutine
		// starts writing results.
		priors := make(map[string][]capability.PriorResult, len(subtasks))
		for _, st := range subtasks {
			priors[st.ID] = e.priorContext(st, settled)
		}

		var wg sync.WaitGroup
		var mu sync.Mutex
		for _, st := range subtasks {
			prior := priors[st.ID]
			e.emit(events.Event{
				Type:      events.TypeSubtaskDispatched,
				RunID:     runID,
				SubtaskID: st.ID,
				Class:     st.CapabilityClass,
				Wave:      wave,
			})

			wg.Add(1)
			go func(st *models.Subtask) {
				defer wg.Done()
				res := e.runOne(ctx, st, tone, prior)
				mu.Lock()
				settled[st.ID] = res
				mu.Unlock()
				e.emit(events.Event{
					Type:      events.TypeSubtaskSettled,
					RunID:     runID,
					SubtaskID: st.ID,
					Class:     st.CapabilityClass,
					Wave:      wave,
					Outcome:   res.Outcome,
					Latency:   res.Latency,
					Err:       res.Err,
				})
			}(st)
		}
		wg.Wait()
	}

	// A cancellation landing during the final wave is still a cancelled
	// run, even though no wave was left to skip.
	if err := ctx.Err(); err != nil {
		log.Printf("[executor] run %s cancelled during final wave", runID)
		return e.collect(plan, settled), err
	}

	return e.collect(plan, settled), nil
}

// runOne invokes the adapter for a single subtask with the per-subtask
// timeout. A timed-out attempt is retried exactly once; failures are never
// retried.
func (e *Executor) runOne(ctx context.Context, st *models.Subtask, tone string, prior []capability.PriorResult) models.WorkerResult {
	adapter := e.adapters[st.CapabilityClass]
	start := time.Now()
	res := models.WorkerResult{SubtaskID: st.ID}

	for attempt := 1; attempt <= 2; attempt++ {
		res.Attempts = attempt

		attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
		payload, err := adapter.Invoke(attemptCtx, st.Description, prior, tone)
		cancel()

		if err == nil {
			res.Outcome = models.OutcomeSuccess
			res.Payload = payload
			break
		}

		if timedOut(err) && ctx.Err() == nil {
			if attempt == 1 {
				log.Printf("[executor] subtask %s timed out after %s, retrying once", st.ID, e.timeout)
				continue
			}
			res.Outcome = models.OutcomeTimeout
			res.Err = fmt.Sprintf("deadline of %s exceeded twice", e.timeout)
			break
		}

		res.Outcome = models.OutcomeFailure
		res.Err = err.Error()
		break
	}

	res.Latency = time.Since(start)
	return res
}

// priorContext gathers the successful payloads of the subtasks st depends on.
// Payloads of unrelated subtasks are never forwarded.
func (e *Executor) priorContext(st *models.Subtask, settled map[string]models.WorkerResult) []capability.PriorResult {
	var prior []capability.PriorResult
	for _, dep := range st.DependsOn {
		res, ok := settled[dep]
		if !ok || res.Outcome != models.OutcomeSuccess {
			continue
		}
		prior = append(prior, capability.PriorResult{
			SubtaskID: dep,
			Payload:   res.Payload,
		})
	}
	return prior
}

// collect orders settled results by plan assignment order. Subtasks in waves
// that never dispatched (due to cancellation) are omitted.
func (e *Executor) collect(plan *models.DispatchPlan, settled map[string]models.WorkerResult) []models.WorkerResult {
	results := make([]models.WorkerResult, 0, len(settled))
	for _, as := range plan.Assignments {
		if res, ok := settled[as.Subtask.ID]; ok {
			results = append(results, res)
		}
	}
	return results
}

func (e *Executor) emit(ev events.Event) {
	if e.emitter != nil {
		e.emitter.Emit(ev)
	}
}

// timedOut reports whether an adapter error was caused by the attempt
// deadline rather than a genuine adapter failure.
func timedOut(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
