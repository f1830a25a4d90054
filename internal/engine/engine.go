// Package engine wires the orchestration pipeline: load session, decompose
// the instruction, route subtasks, execute them wave by wave, merge the
// results, and persist the session. One Run call is one turn.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/taskflowr/taskflowr/internal/capability"
	"github.com/taskflowr/taskflowr/internal/config"
	"github.com/taskflowr/taskflowr/internal/decompose"
	"github.com/taskflowr/taskflowr/internal/events"
	"github.com/taskflowr/taskflowr/internal/executor"
	"github.com/taskflowr/taskflowr/internal/merge"
	"github.com/taskflowr/taskflowr/internal/router"
	"github.com/taskflowr/taskflowr/internal/session"
	"github.com/taskflowr/taskflowr/internal/tone"
	"github.com/taskflowr/taskflowr/pkg/models"
)

// Generator is the full generative surface the engine needs. Satisfied by
// api.Runner; tests substitute deterministic stubs.
type Generator interface {
	Run(ctx context.Context, prompt string) (string, error)
	RunWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Result is the outcome of one orchestration run.
type Result struct {
	// Deliverable is the merged artifact. Nil only when the run failed
	// before any subtask settled.
	Deliverable *models.Deliverable
	// RunID identifies the run in the event stream.
	RunID string
	// Tone is the tone profile the run executed with.
	Tone string
	// Saved reports whether session state was persisted. False after a
	// save failure or a cancelled run.
	Saved bool
	// SaveErr carries the save failure detail when Saved is false and a
	// save was attempted.
	SaveErr string
	// Cancelled reports that the run stopped early on caller cancellation.
	// The deliverable then covers only the waves that dispatched.
	Cancelled bool
}

// Engine coordinates a full orchestration turn.
type Engine struct {
	cfg        *config.Config
	store      *session.Store
	decomposer *decompose.Decomposer
	exec       *executor.Executor
	tones      *tone.Catalog
	emitter    *events.Emitter
}

// New assembles an engine from its collaborators. The same generator backs
// decomposition and both capability adapters.
func New(cfg *config.Config, gen Generator, store *session.Store, tones *tone.Catalog) *Engine {
	adapters := map[models.CapabilityClass]capability.Adapter{
		models.CapabilityStructuredOps:   capability.NewStructuredAdapter(gen),
		models.CapabilityNaturalLanguage: capability.NewNaturalLanguageAdapter(gen, tones),
	}
	return &Engine{
		cfg:        cfg,
		store:      store,
		decomposer: decompose.New(gen, cfg.Engine.MaxSubtasks),
		exec:       executor.New(adapters, cfg.Engine.SubtaskTimeout),
		tones:      tones,
	}
}

// SetEmitter attaches an event emitter for run observability.
func (e *Engine) SetEmitter(em *events.Emitter) {
	e.emitter = em
	e.exec.SetEmitter(em)
}

// Run executes one instruction end to end. Decomposition, routing, and
// session errors are fatal and return before anything is dispatched or
// persisted. Adapter failures and timeouts are absorbed into the
// deliverable. A save failure still returns the deliverable, flagged
// unsaved.
func (e *Engine) Run(ctx context.Context, instruction models.Instruction) (*Result, error) {
	if instruction.Text == "" {
		return nil, &decompose.Error{Reason: "empty instruction"}
	}
	if instruction.SessionID == "" {
		return nil, errors.New("instruction has no session id")
	}
	if instruction.ReceivedAt.IsZero() {
		instruction.ReceivedAt = time.Now()
	}

	runID := uuid.New().String()[:8]

	// Hold the session lock across the whole turn so concurrent runs on
	// the same session serialize their state updates.
	release := e.store.Acquire(instruction.SessionID)
	defer release()

	sess, err := e.store.Load(ctx, instruction.SessionID)
	if err != nil {
		return nil, err
	}

	toneProfile := tone.Resolve(sess.ToneProfile, instruction.Text, e.cfg.Tone.Default)

	e.emit(events.Event{
		Type:      events.TypeRunStarted,
		RunID:     runID,
		SessionID: sess.ID,
		Message:   fmt.Sprintf("turn %d, tone %s", sess.TurnCount+1, toneProfile),
	})

	subtasks, err := e.decomposer.Decompose(ctx, instruction, decompose.SessionContext{
		ToneProfile: toneProfile,
		History:     sess.History,
	})
	if err != nil {
		e.emitFailure(runID, sess.ID, err)
		return nil, err
	}
	e.emit(events.Event{
		Type:      events.TypeDecomposed,
		RunID:     runID,
		SessionID: sess.ID,
		Message:   fmt.Sprintf("%d subtasks", len(subtasks)),
	})

	plan, err := router.Route(subtasks)
	if err != nil {
		e.emitFailure(runID, sess.ID, err)
		return nil, err
	}
	e.emit(events.Event{
		Type:      events.TypeRouted,
		RunID:     runID,
		SessionID: sess.ID,
		Message:   fmt.Sprintf("%d subtasks across %d waves", plan.Size(), len(plan.Waves)),
	})

	results, execErr := e.exec.Execute(ctx, runID, plan, toneProfile)
	if execErr != nil {
		// Cancellation: merge whatever settled, skip the session write.
		deliverable := merge.Merge(runID, subtasks, results)
		e.emit(events.Event{
			Type:      events.TypeRunCancelled,
			RunID:     runID,
			SessionID: sess.ID,
			Err:       execErr.Error(),
		})
		return &Result{
			Deliverable: deliverable,
			RunID:       runID,
			Tone:        toneProfile,
			Cancelled:   true,
		}, nil
	}

	deliverable := merge.Merge(runID, subtasks, results)
	e.emit(events.Event{
		Type:      events.TypeMerged,
		RunID:     runID,
		SessionID: sess.ID,
		Status:    deliverable.Status,
		Message:   fmt.Sprintf("%d payloads", len(deliverable.Payloads)),
	})

	result := &Result{
		Deliverable: deliverable,
		RunID:       runID,
		Tone:        toneProfile,
		Saved:       true,
	}
	if err := e.store.SaveRun(ctx, sess, deliverable.Summarize()); err != nil {
		log.Printf("[engine] run %s: session save failed: %v", runID, err)
		result.Saved = false
		result.SaveErr = err.Error()
	} else {
		e.emit(events.Event{
			Type:      events.TypeSessionSaved,
			RunID:     runID,
			SessionID: sess.ID,
			Message:   fmt.Sprintf("turn %d", sess.TurnCount),
		})
	}
	return result, nil
}

// RunFunc adapts the engine to the evaluation suite's entry point, running
// each scenario in its own throwaway session.
func (e *Engine) RunFunc() func(ctx context.Context, instruction string) (*models.Deliverable, error) {
	return func(ctx context.Context, instruction string) (*models.Deliverable, error) {
		res, err := e.Run(ctx, models.Instruction{
			Text:      instruction,
			SessionID: "eval-" + uuid.New().String()[:8],
		})
		if err != nil {
			return nil, err
		}
		return res.Deliverable, nil
	}
}

func (e *Engine) emit(ev events.Event) {
	if e.emitter != nil {
		e.emitter.Emit(ev)
	}
}

func (e *Engine) emitFailure(runID, sessionID string, err error) {
	e.emit(events.Event{
		Type:      events.TypeRunFailed,
		RunID:     runID,
		SessionID: sessionID,
		Err:       err.Error(),
	})
}
