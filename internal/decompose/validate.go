package decompose

import (
	"fmt"

	"github.com/taskflowr/taskflowr/pkg/models"
)

// Validate checks the structural invariants of a decomposition batch:
// unique sequence-ordered ids, non-empty descriptions, exactly one valid
// capability class per subtask, and dependencies that resolve within the
// batch without self-reference.
func Validate(subtasks []models.Subtask) error {
	if len(subtasks) == 0 {
		return &Error{Reason: "empty subtask set"}
	}

	ids := make(map[string]bool, len(subtasks))
	for _, st := range subtasks {
		if st.ID == "" {
			return &Error{Reason: fmt.Sprintf("subtask %d has no id", st.Seq)}
		}
		if ids[st.ID] {
			return &Error{Reason: fmt.Sprintf("duplicate subtask id %q", st.ID)}
		}
		ids[st.ID] = true
	}

	for _, st := range subtasks {
		if st.Description == "" {
			return &Error{Reason: fmt.Sprintf("subtask %s has an empty description", st.ID)}
		}
		if !st.CapabilityClass.Valid() {
			return &Error{Reason: fmt.Sprintf("subtask %s has unknown capability class %q", st.ID, st.CapabilityClass)}
		}
		for _, dep := range st.DependsOn {
			if dep == st.ID {
				return &Error{Reason: fmt.Sprintf("subtask %s depends on itself", st.ID)}
			}
			if !ids[dep] {
				return &Error{Reason: fmt.Sprintf("subtask %s depends on unknown subtask %q", st.ID, dep)}
			}
		}
	}

	return nil
}
