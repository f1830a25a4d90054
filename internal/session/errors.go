package session

import "fmt"

// CorruptionError indicates persisted session state could not be decoded or
// failed validation. It is fatal for the run: the engine surfaces it rather
// than guessing at a usable session.
type CorruptionError struct {
	// SessionID is the session whose state is unusable.
	SessionID string
	// Reason describes what was wrong with the stored state.
	Reason string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *CorruptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("session %s corrupted: %s: %v", e.SessionID, e.Reason, e.Err)
	}
	return fmt.Sprintf("session %s corrupted: %s", e.SessionID, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *CorruptionError) Unwrap() error {
	return e.Err
}
