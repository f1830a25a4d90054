package capability

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taskflowr/taskflowr/internal/api"
	"github.com/taskflowr/taskflowr/internal/tone"
	"github.com/taskflowr/taskflowr/pkg/models"
)

// NaturalLanguageAdapter routes subtasks to the natural-language worker.
type NaturalLanguageAdapter struct {
	gen   Generator
	tones *tone.Catalog
}

// NewNaturalLanguageAdapter creates a natural-language adapter backed by the
// given generator and tone catalog.
func NewNaturalLanguageAdapter(gen Generator, tones *tone.Catalog) *NaturalLanguageAdapter {
	if tones == nil {
		tones = tone.NewCatalog()
	}
	return &NaturalLanguageAdapter{gen: gen, tones: tones}
}

// Class reports the capability class this adapter serves.
func (a *NaturalLanguageAdapter) Class() models.CapabilityClass {
	return models.CapabilityNaturalLanguage
}

// Invoke runs one subtask through the natural-language worker with the
// session's tone profile applied.
func (a *NaturalLanguageAdapter) Invoke(ctx context.Context, description string, priorContext []PriorResult, toneName string) (*models.WorkerPayload, error) {
	if toneName == "" {
		toneName = tone.DefaultTone
	}

	userPrompt := fmt.Sprintf("TASK: %s\nTONE: %s\nSTYLE GUIDE: %s%s",
		description, toneName, a.tones.StyleGuide(toneName), renderPriorContext(priorContext))

	response, err := a.gen.RunWithSystem(ctx, naturalLanguageSystemPrompt, userPrompt)
	if err != nil {
		return nil, &Error{Class: a.Class(), Reason: "generative call failed", Err: err}
	}

	payload, err := parseCommunication(response)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// parseCommunication extracts and validates a communication payload from a
// raw worker response.
func parseCommunication(response string) (*models.WorkerPayload, error) {
	jsonStr, err := api.ExtractJSON(response)
	if err != nil {
		return nil, &Error{Class: models.CapabilityNaturalLanguage, Reason: "no JSON in response", Err: err}
	}

	var p models.CommunicationPayload
	if err := json.Unmarshal([]byte(jsonStr), &p); err != nil {
		return nil, &Error{Class: models.CapabilityNaturalLanguage, Reason: "malformed JSON payload", Err: err}
	}

	if p.Empty() {
		return nil, &Error{Class: models.CapabilityNaturalLanguage, Reason: "empty payload: no emails, summaries, or announcements"}
	}

	for i, e := range p.Emails {
		if e.Body == "" {
			return nil, &Error{Class: models.CapabilityNaturalLanguage, Reason: fmt.Sprintf("email %d has no body", i+1)}
		}
	}
	for i, s := range p.Summaries {
		if s.Content == "" {
			return nil, &Error{Class: models.CapabilityNaturalLanguage, Reason: fmt.Sprintf("summary %d has no content", i+1)}
		}
	}
	for i, an := range p.Announcements {
		if an.Content == "" {
			return nil, &Error{Class: models.CapabilityNaturalLanguage, Reason: fmt.Sprintf("announcement %d has no content", i+1)}
		}
	}

	return &models.WorkerPayload{
		Class:         models.CapabilityNaturalLanguage,
		Communication: &p,
	}, nil
}
