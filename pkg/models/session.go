package models

import "time"

// Session is the persisted per-user context spanning multiple instructions.
// It is exclusively owned by the session store; the rest of the engine reads
// and writes it only through Load and Save, never holding a long-lived
// reference.
type Session struct {
	// ID is the opaque session identifier supplied by the caller.
	ID string `json:"id"`
	// ToneProfile is the preferred tone for natural-language output.
	// Empty until the user sets one; adapters fall back to a default.
	ToneProfile string `json:"tone_profile,omitempty"`
	// History holds summaries of past deliverables, most recent last,
	// bounded to the configured retention count.
	History []DeliverableSummary `json:"history,omitempty"`
	// TurnCount is the number of completed orchestration runs.
	TurnCount int `json:"turn_count"`
	// CreatedAt is when the session was first seen.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the session was last saved.
	UpdatedAt time.Time `json:"updated_at"`
}
