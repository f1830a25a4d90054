// Package models defines the shared domain types for the TaskFlowr engine.
package models

import "time"

// Subtask is one unit of work produced by decomposition, tagged with exactly
// one capability class. Subtasks are immutable after creation.
type Subtask struct {
	// ID is unique within a single orchestration run (e.g. "s1", "s2").
	ID string `json:"id"`
	// Seq is the position of the subtask in decomposition order, starting at 1.
	Seq int `json:"seq"`
	// CapabilityClass determines which adapter handles this subtask.
	CapabilityClass CapabilityClass `json:"capability_class"`
	// Description is the text handed to the capability adapter.
	Description string `json:"description"`
	// DependsOn lists subtask IDs that must complete before this one runs.
	DependsOn []string `json:"depends_on,omitempty"`
}

// Instruction is one free-form user request bound to a session.
// It is immutable once created and drives exactly one orchestration run.
type Instruction struct {
	// Text is the raw user instruction.
	Text string `json:"text"`
	// SessionID identifies the session this instruction belongs to.
	SessionID string `json:"session_id"`
	// ReceivedAt is when the instruction arrived.
	ReceivedAt time.Time `json:"received_at"`
}
