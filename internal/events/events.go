// Package events defines the engine's observability event stream.
// Events are append-only, best-effort, and never block the critical path.
package events

import (
	"time"

	"github.com/taskflowr/taskflowr/pkg/models"
)

// Type represents the kind of engine event.
type Type string

const (
	// TypeRunStarted indicates an orchestration run has begun.
	TypeRunStarted Type = "run_started"
	// TypeDecomposed indicates the instruction was decomposed into subtasks.
	TypeDecomposed Type = "decomposed"
	// TypeRouted indicates a dispatch plan was produced.
	TypeRouted Type = "routed"
	// TypeSubtaskDispatched indicates a subtask was handed to its adapter.
	TypeSubtaskDispatched Type = "subtask_dispatched"
	// TypeSubtaskSettled indicates a subtask reached a terminal outcome.
	TypeSubtaskSettled Type = "subtask_settled"
	// TypeMerged indicates results were merged into a deliverable.
	TypeMerged Type = "merged"
	// TypeSessionSaved indicates session state was persisted.
	TypeSessionSaved Type = "session_saved"
	// TypeRunFailed indicates the run terminated with a fatal error.
	TypeRunFailed Type = "run_failed"
	// TypeRunCancelled indicates the run was cancelled before completion.
	TypeRunCancelled Type = "run_cancelled"
)

// Event is one entry in the observability stream. RunID correlates all
// events of a single orchestration run.
type Event struct {
	// Type is the kind of event.
	Type Type `json:"type"`
	// RunID correlates events belonging to one orchestration run.
	RunID string `json:"run_id"`
	// SessionID is the session the run belongs to.
	SessionID string `json:"session_id,omitempty"`
	// SubtaskID is the related subtask, if applicable.
	SubtaskID string `json:"subtask_id,omitempty"`
	// Class is the capability class of the related subtask, if applicable.
	Class models.CapabilityClass `json:"class,omitempty"`
	// Wave is the execution wave of the related subtask, if applicable.
	Wave int `json:"wave,omitempty"`
	// Outcome is the terminal outcome for subtask_settled events.
	Outcome models.Outcome `json:"outcome,omitempty"`
	// Latency is the subtask latency for subtask_settled events.
	Latency time.Duration `json:"latency,omitempty"`
	// Status is the deliverable status for merged events.
	Status models.DeliverableStatus `json:"status,omitempty"`
	// Message provides additional context.
	Message string `json:"message,omitempty"`
	// Err contains error detail for failure events.
	Err string `json:"error,omitempty"`
	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`
}
