package models

import "time"

// Outcome is the terminal state of one dispatched subtask.
type Outcome string

const (
	// OutcomeSuccess indicates the adapter returned a usable payload.
	OutcomeSuccess Outcome = "success"
	// OutcomeFailure indicates the adapter rejected or errored on the subtask.
	OutcomeFailure Outcome = "failure"
	// OutcomeTimeout indicates the subtask exceeded its deadline after one retry.
	OutcomeTimeout Outcome = "timeout"
)

// Valid returns true if the outcome is a known value.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeSuccess, OutcomeFailure, OutcomeTimeout:
		return true
	default:
		return false
	}
}

// WorkerResult records what happened to a single subtask. The executor
// creates one per subtask; results are immutable afterwards.
type WorkerResult struct {
	// SubtaskID is the ID of the subtask this result belongs to.
	SubtaskID string `json:"subtask_id"`
	// Outcome is the terminal state of the dispatch.
	Outcome Outcome `json:"outcome"`
	// Payload is the adapter output. Nil unless Outcome is success.
	Payload *WorkerPayload `json:"payload,omitempty"`
	// Err holds the error detail for failure and timeout outcomes.
	Err string `json:"error,omitempty"`
	// Latency is the wall-clock time from dispatch to settlement,
	// including the retry attempt for timeouts.
	Latency time.Duration `json:"latency"`
	// Attempts is how many times the adapter was invoked (1 or 2).
	Attempts int `json:"attempts"`
}
