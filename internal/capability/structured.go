package capability

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taskflowr/taskflowr/internal/api"
	"github.com/taskflowr/taskflowr/pkg/models"
)

// StructuredAdapter routes subtasks to the structured-operations worker.
type StructuredAdapter struct {
	gen Generator
}

// NewStructuredAdapter creates a structured-operations adapter backed by the
// given generator.
func NewStructuredAdapter(gen Generator) *StructuredAdapter {
	return &StructuredAdapter{gen: gen}
}

// Class reports the capability class this adapter serves.
func (a *StructuredAdapter) Class() models.CapabilityClass {
	return models.CapabilityStructuredOps
}

// Invoke runs one subtask through the structured-operations worker and parses
// its JSON response into a typed payload.
func (a *StructuredAdapter) Invoke(ctx context.Context, description string, priorContext []PriorResult, tone string) (*models.WorkerPayload, error) {
	userPrompt := fmt.Sprintf("TASK: %s%s", description, renderPriorContext(priorContext))

	response, err := a.gen.RunWithSystem(ctx, structuredSystemPrompt, userPrompt)
	if err != nil {
		return nil, &Error{Class: a.Class(), Reason: "generative call failed", Err: err}
	}

	payload, err := parseStructured(response)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// parseStructured extracts and validates a structured payload from a raw
// worker response.
func parseStructured(response string) (*models.WorkerPayload, error) {
	jsonStr, err := api.ExtractJSON(response)
	if err != nil {
		return nil, &Error{Class: models.CapabilityStructuredOps, Reason: "no JSON in response", Err: err}
	}

	var p models.StructuredPayload
	if err := json.Unmarshal([]byte(jsonStr), &p); err != nil {
		return nil, &Error{Class: models.CapabilityStructuredOps, Reason: "malformed JSON payload", Err: err}
	}

	if p.Empty() {
		return nil, &Error{Class: models.CapabilityStructuredOps, Reason: "empty payload: no checklists, workflows, or templates"}
	}

	return &models.WorkerPayload{
		Class:      models.CapabilityStructuredOps,
		Structured: &p,
	}, nil
}
