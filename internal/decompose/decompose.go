// Package decompose turns one user instruction into typed subtasks.
package decompose

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/taskflowr/taskflowr/internal/api"
	"github.com/taskflowr/taskflowr/pkg/models"
)

// Generator is the narrow surface the decomposer needs from the generative
// collaborator. Satisfied by api.Runner; tests substitute deterministic stubs.
type Generator interface {
	Run(ctx context.Context, prompt string) (string, error)
}

// SessionContext is the slice of session state the decomposer may consult.
type SessionContext struct {
	// ToneProfile is the session's tone preference, empty if unset.
	ToneProfile string
	// History holds recent deliverable summaries, most recent last.
	History []models.DeliverableSummary
}

// decomposedSubtask is the JSON structure returned by the collaborator for a
// single subtask. Dependencies reference earlier subtasks by 1-based position.
type decomposedSubtask struct {
	Capability  string `json:"capability"`
	Description string `json:"description"`
	DependsOn   []int  `json:"depends_on"`
}

// Decomposer breaks user instructions into capability-tagged subtasks.
type Decomposer struct {
	gen Generator
	// maxSubtasks caps the size of a single decomposition.
	maxSubtasks int
}

// New creates a Decomposer with the given generator.
// maxSubtasks <= 0 disables the cap.
func New(gen Generator, maxSubtasks int) *Decomposer {
	return &Decomposer{gen: gen, maxSubtasks: maxSubtasks}
}

// Decompose makes exactly one generative call and returns the ordered subtask
// list. Any malformed collaborator output is an *Error; no silent fallback
// decomposition is applied, since routing must stay auditable.
func (d *Decomposer) Decompose(ctx context.Context, instruction models.Instruction, sessionCtx SessionContext) ([]models.Subtask, error) {
	prompt := buildPrompt(instruction.Text, sessionCtx)

	response, err := d.gen.Run(ctx, prompt)
	if err != nil {
		return nil, &Error{Reason: "generative call failed", Err: err}
	}

	subtasks, err := ParseResponse(response)
	if err != nil {
		return nil, err
	}

	if d.maxSubtasks > 0 && len(subtasks) > d.maxSubtasks {
		return nil, &Error{Reason: fmt.Sprintf("decomposition produced %d subtasks, cap is %d", len(subtasks), d.maxSubtasks)}
	}

	if err := Validate(subtasks); err != nil {
		return nil, err
	}

	return subtasks, nil
}

// ParseResponse parses the collaborator's JSON response into subtasks,
// assigning sequence-ordered ids and resolving positional dependencies.
func ParseResponse(response string) ([]models.Subtask, error) {
	jsonStr, err := api.ExtractJSON(response)
	if err != nil {
		return nil, &Error{Reason: "no JSON array in response", Err: err}
	}

	var decomposed []decomposedSubtask
	if err := json.Unmarshal([]byte(jsonStr), &decomposed); err != nil {
		return nil, &Error{Reason: "malformed decomposition JSON", Err: err}
	}

	if len(decomposed) == 0 {
		return nil, &Error{Reason: "instruction yielded no actionable subtasks"}
	}

	subtasks := make([]models.Subtask, len(decomposed))
	for i, ds := range decomposed {
		seq := i + 1

		class := models.CapabilityClass(strings.ToLower(strings.TrimSpace(ds.Capability)))
		if !class.Valid() {
			return nil, &Error{Reason: fmt.Sprintf("subtask %d has unknown capability %q", seq, ds.Capability)}
		}

		var deps []string
		for _, pos := range ds.DependsOn {
			if pos < 1 || pos > len(decomposed) {
				return nil, &Error{Reason: fmt.Sprintf("subtask %d depends on unknown subtask %d", seq, pos)}
			}
			if pos == seq {
				return nil, &Error{Reason: fmt.Sprintf("subtask %d depends on itself", seq)}
			}
			deps = append(deps, subtaskID(pos))
		}

		subtasks[i] = models.Subtask{
			ID:              subtaskID(seq),
			Seq:             seq,
			CapabilityClass: class,
			Description:     strings.TrimSpace(ds.Description),
			DependsOn:       deps,
		}
	}

	return subtasks, nil
}

// subtaskID formats the run-scoped id for a sequence position.
func subtaskID(seq int) string {
	return fmt.Sprintf("s%d", seq)
}
