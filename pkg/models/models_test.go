package models

import (
	"testing"
	"time"
)

func TestCapabilityClassValid(t *testing.T) {
	tests := []struct {
		class CapabilityClass
		want  bool
	}{
		{CapabilityStructuredOps, true},
		{CapabilityNaturalLanguage, true},
		{CapabilityClass("data-processing"), false},
		{CapabilityClass(""), false},
	}

	for _, tt := range tests {
		if got := tt.class.Valid(); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.class, got, tt.want)
		}
	}
}

func TestOutcomeValid(t *testing.T) {
	for _, o := range []Outcome{OutcomeSuccess, OutcomeFailure, OutcomeTimeout} {
		if !o.Valid() {
			t.Errorf("expected %q to be valid", o)
		}
	}
	if Outcome("cancelled").Valid() {
		t.Error("expected unknown outcome to be invalid")
	}
}

func TestDeliverableStatusValid(t *testing.T) {
	for _, s := range []DeliverableStatus{StatusComplete, StatusPartial, StatusFailed} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if DeliverableStatus("done").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}

func TestWorkerPayloadEmpty(t *testing.T) {
	var nilPayload *WorkerPayload
	if !nilPayload.Empty() {
		t.Error("nil payload should be empty")
	}

	empty := &WorkerPayload{Class: CapabilityStructuredOps, Structured: &StructuredPayload{}}
	if !empty.Empty() {
		t.Error("payload with no artifacts should be empty")
	}

	full := &WorkerPayload{
		Class: CapabilityStructuredOps,
		Structured: &StructuredPayload{
			Checklists: []Checklist{{Title: "Onboarding", Items: []string{"laptop", "badge"}}},
		},
	}
	if full.Empty() {
		t.Error("payload with a checklist should not be empty")
	}

	comm := &WorkerPayload{
		Class: CapabilityNaturalLanguage,
		Communication: &CommunicationPayload{
			Emails: []Email{{Subject: "Welcome", Body: "Hello and welcome."}},
		},
	}
	if comm.Empty() {
		t.Error("payload with an email should not be empty")
	}
}

func TestDeliverableSummarize(t *testing.T) {
	now := time.Now()
	d := &Deliverable{
		RunID:  "run-1",
		Status: StatusPartial,
		Payloads: []DeliverablePayload{
			{SubtaskID: "s1", Class: CapabilityStructuredOps, Payload: &WorkerPayload{Class: CapabilityStructuredOps}},
		},
		Note:      "subtask s2 timed out",
		CreatedAt: now,
	}

	sum := d.Summarize()
	if sum.RunID != "run-1" {
		t.Errorf("expected run-1, got %s", sum.RunID)
	}
	if sum.Status != StatusPartial {
		t.Errorf("expected partial, got %s", sum.Status)
	}
	if sum.PayloadCount != 1 {
		t.Errorf("expected 1 payload, got %d", sum.PayloadCount)
	}
	if sum.Note == "" {
		t.Error("expected note to carry over")
	}
	if !sum.CreatedAt.Equal(now) {
		t.Error("expected created_at to carry over")
	}
}

func TestDispatchPlanWaveOf(t *testing.T) {
	s1 := &Subtask{ID: "s1", Seq: 1, CapabilityClass: CapabilityStructuredOps}
	s2 := &Subtask{ID: "s2", Seq: 2, CapabilityClass: CapabilityNaturalLanguage, DependsOn: []string{"s1"}}
	plan := &DispatchPlan{
		Assignments: []Assignment{
			{Subtask: s1, Adapter: CapabilityStructuredOps, Wave: 0},
			{Subtask: s2, Adapter: CapabilityNaturalLanguage, Wave: 1},
		},
		Waves: [][]*Subtask{{s1}, {s2}},
	}

	if got := plan.WaveOf("s2"); got != 1 {
		t.Errorf("expected wave 1 for s2, got %d", got)
	}
	if got := plan.WaveOf("missing"); got != -1 {
		t.Errorf("expected -1 for unknown subtask, got %d", got)
	}
	if plan.Size() != 2 {
		t.Errorf("expected size 2, got %d", plan.Size())
	}
}
