package models

import "time"

// DeliverableStatus summarizes how much of a run completed.
type DeliverableStatus string

const (
	// StatusComplete means every subtask succeeded.
	StatusComplete DeliverableStatus = "complete"
	// StatusPartial means at least one subtask succeeded and at least one did not.
	StatusPartial DeliverableStatus = "partial"
	// StatusFailed means no subtask succeeded.
	StatusFailed DeliverableStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s DeliverableStatus) Valid() bool {
	switch s {
	case StatusComplete, StatusPartial, StatusFailed:
		return true
	default:
		return false
	}
}

// DeliverablePayload is one entry in a deliverable, pairing a subtask's
// payload with its origin.
type DeliverablePayload struct {
	// SubtaskID identifies which subtask produced this payload.
	SubtaskID string `json:"subtask_id"`
	// Class is the capability class of the payload.
	Class CapabilityClass `json:"class"`
	// Payload is the typed worker output.
	Payload *WorkerPayload `json:"payload"`
}

// Deliverable is the final merged result of one orchestration run.
// Payloads preserve the original subtask sequence order regardless of
// completion order. Immutable after creation.
type Deliverable struct {
	// RunID correlates the deliverable with the run's event stream.
	RunID string `json:"run_id"`
	// Status is complete, partial, or failed.
	Status DeliverableStatus `json:"status"`
	// Payloads are successful subtask outputs in subtask sequence order.
	Payloads []DeliverablePayload `json:"payloads"`
	// Note explains which subtasks did not complete and why.
	// Empty when Status is complete.
	Note string `json:"note,omitempty"`
	// CreatedAt is when the merge produced this deliverable.
	CreatedAt time.Time `json:"created_at"`
}

// DeliverableSummary is the bounded per-session record of a past deliverable.
type DeliverableSummary struct {
	RunID     string            `json:"run_id"`
	Status    DeliverableStatus `json:"status"`
	// PayloadCount is the number of payload entries in the deliverable.
	PayloadCount int `json:"payload_count"`
	// Note is the assembly note, if the run was not complete.
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Summarize produces the session-history record for this deliverable.
func (d *Deliverable) Summarize() DeliverableSummary {
	return DeliverableSummary{
		RunID:        d.RunID,
		Status:       d.Status,
		PayloadCount: len(d.Payloads),
		Note:         d.Note,
		CreatedAt:    d.CreatedAt,
	}
}
