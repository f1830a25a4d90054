package capability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/taskflowr/taskflowr/internal/tone"
	"github.com/taskflowr/taskflowr/pkg/models"
)

// stubGenerator returns a canned response or error.
type stubGenerator struct {
	response   string
	err        error
	lastSystem string
	lastUser   string
}

func (s *stubGenerator) RunWithSystem(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	s.lastSystem = systemPrompt
	s.lastUser = userPrompt
	return s.response, s.err
}

func TestStructuredAdapterInvoke(t *testing.T) {
	gen := &stubGenerator{response: `Here you go:
{"checklists": [{"title": "Onboarding", "items": ["Create accounts", "Assign buddy", "Schedule intro"]}]}`}
	a := NewStructuredAdapter(gen)

	payload, err := a.Invoke(context.Background(), "generate a 3-item onboarding checklist", nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Class != models.CapabilityStructuredOps {
		t.Errorf("expected structured-operations class, got %s", payload.Class)
	}
	if len(payload.Structured.Checklists) != 1 {
		t.Fatalf("expected 1 checklist, got %d", len(payload.Structured.Checklists))
	}
	if len(payload.Structured.Checklists[0].Items) != 3 {
		t.Errorf("expected 3 items, got %d", len(payload.Structured.Checklists[0].Items))
	}
}

func TestStructuredAdapterEmptyPayload(t *testing.T) {
	gen := &stubGenerator{response: `{"checklists": [], "workflows": []}`}
	a := NewStructuredAdapter(gen)

	_, err := a.Invoke(context.Background(), "make a checklist", nil, "")
	var advErr *Error
	if !errors.As(err, &advErr) {
		t.Fatalf("expected adapter error, got %v", err)
	}
	if advErr.Class != models.CapabilityStructuredOps {
		t.Errorf("expected structured-operations class on error, got %s", advErr.Class)
	}
}

func TestStructuredAdapterMalformedResponse(t *testing.T) {
	gen := &stubGenerator{response: "I could not produce structured output."}
	a := NewStructuredAdapter(gen)

	if _, err := a.Invoke(context.Background(), "make a checklist", nil, ""); err == nil {
		t.Fatal("expected error for response without JSON")
	}
}

func TestStructuredAdapterGeneratorError(t *testing.T) {
	sentinel := fmt.Errorf("rate limited")
	gen := &stubGenerator{err: sentinel}
	a := NewStructuredAdapter(gen)

	_, err := a.Invoke(context.Background(), "make a checklist", nil, "")
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped generator error, got %v", err)
	}
}

func TestNaturalLanguageAdapterInvoke(t *testing.T) {
	gen := &stubGenerator{response: `{"emails": [{"subject": "Welcome aboard", "body": "We are glad to have you.", "tone": "friendly"}]}`}
	a := NewNaturalLanguageAdapter(gen, tone.NewCatalog())

	payload, err := a.Invoke(context.Background(), "draft a welcome email", nil, "friendly")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Class != models.CapabilityNaturalLanguage {
		t.Errorf("expected natural-language class, got %s", payload.Class)
	}
	if len(payload.Communication.Emails) != 1 {
		t.Fatalf("expected 1 email, got %d", len(payload.Communication.Emails))
	}

	// The tone and its style guide are part of the worker prompt.
	if !strings.Contains(gen.lastUser, "TONE: friendly") {
		t.Errorf("expected tone in prompt, got %q", gen.lastUser)
	}
	if !strings.Contains(gen.lastUser, "STYLE GUIDE:") {
		t.Errorf("expected style guide in prompt, got %q", gen.lastUser)
	}
}

func TestNaturalLanguageAdapterDefaultsTone(t *testing.T) {
	gen := &stubGenerator{response: `{"summaries": [{"content": "All systems nominal."}]}`}
	a := NewNaturalLanguageAdapter(gen, nil)

	if _, err := a.Invoke(context.Background(), "summarize status", nil, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gen.lastUser, "TONE: "+tone.DefaultTone) {
		t.Errorf("expected default tone in prompt, got %q", gen.lastUser)
	}
}

func TestNaturalLanguageAdapterRejectsEmptyBody(t *testing.T) {
	gen := &stubGenerator{response: `{"emails": [{"subject": "Oops", "body": ""}]}`}
	a := NewNaturalLanguageAdapter(gen, nil)

	if _, err := a.Invoke(context.Background(), "draft an email", nil, ""); err == nil {
		t.Fatal("expected error for email without body")
	}
}

func TestInvokePassesPriorContext(t *testing.T) {
	gen := &stubGenerator{response: `{"summaries": [{"content": "Summary of the checklist."}]}`}
	a := NewNaturalLanguageAdapter(gen, nil)

	prior := []PriorResult{
		{
			SubtaskID: "s1",
			Payload: &models.WorkerPayload{
				Class: models.CapabilityStructuredOps,
				Structured: &models.StructuredPayload{
					Checklists: []models.Checklist{{Title: "Setup", Items: []string{"a", "b"}}},
				},
			},
		},
	}

	if _, err := a.Invoke(context.Background(), "summarize the checklist", prior, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gen.lastUser, "s1") {
		t.Errorf("expected prior subtask id in prompt, got %q", gen.lastUser)
	}
	if !strings.Contains(gen.lastUser, "Setup") {
		t.Errorf("expected prior payload content in prompt, got %q", gen.lastUser)
	}
}

func TestRenderPriorContextEmpty(t *testing.T) {
	if got := renderPriorContext(nil); got != "" {
		t.Errorf("expected empty render for no context, got %q", got)
	}
}
