// Package capability defines the adapter boundary between the orchestration
// engine and the two specialized generative workers.
package capability

import (
	"context"
	"fmt"

	"github.com/taskflowr/taskflowr/pkg/models"
)

// Generator is the narrow surface an adapter needs from the generative
// collaborator. Satisfied by api.Runner; tests substitute deterministic stubs.
type Generator interface {
	RunWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// PriorResult is one completed payload from an earlier wave, passed to a
// dependent subtask as explicit context.
type PriorResult struct {
	// SubtaskID identifies the subtask that produced the payload.
	SubtaskID string
	// Payload is the completed worker output.
	Payload *models.WorkerPayload
}

// Adapter is the uniform interface the executor dispatches subtasks through.
// Implementations wrap one capability class each.
type Adapter interface {
	// Class reports which capability class this adapter serves.
	Class() models.CapabilityClass
	// Invoke runs one subtask description through the generative worker.
	// priorContext carries only the payloads of subtasks this one depends on.
	// tone is the session tone profile, empty for the default.
	Invoke(ctx context.Context, description string, priorContext []PriorResult, tone string) (*models.WorkerPayload, error)
}

// Error indicates a single adapter invocation produced a malformed or empty
// response. The executor records it as a failure outcome; it never aborts
// sibling subtasks.
type Error struct {
	// Class is the capability class whose invocation failed.
	Class models.CapabilityClass
	// Reason describes what was wrong with the response.
	Reason string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("adapter %s: %s: %v", e.Class, e.Reason, e.Err)
	}
	return fmt.Sprintf("adapter %s: %s", e.Class, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}
