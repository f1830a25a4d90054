package decompose

import "fmt"

// Error indicates the instruction could not be decomposed into a valid
// subtask set. It is fatal to the run: nothing is dispatched and nothing is
// persisted to the session.
type Error struct {
	// Reason describes what was wrong with the instruction or the
	// collaborator's output.
	Reason string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decomposition: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decomposition: %s", e.Reason)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}
