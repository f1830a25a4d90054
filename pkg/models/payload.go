package models

// WorkerPayload is the typed output of a capability adapter. Exactly one of
// Structured or Communication is non-nil, matching Class.
type WorkerPayload struct {
	// Class is the capability class that produced this payload.
	Class CapabilityClass `json:"class"`
	// Structured holds structured-operations output, if any.
	Structured *StructuredPayload `json:"structured,omitempty"`
	// Communication holds natural-language output, if any.
	Communication *CommunicationPayload `json:"communication,omitempty"`
}

// Empty returns true if the payload carries no content at all.
func (p *WorkerPayload) Empty() bool {
	if p == nil {
		return true
	}
	switch p.Class {
	case CapabilityStructuredOps:
		return p.Structured == nil || p.Structured.Empty()
	case CapabilityNaturalLanguage:
		return p.Communication == nil || p.Communication.Empty()
	default:
		return true
	}
}

// StructuredPayload is the output shape of the structured-operations
// capability: zero or more checklists, workflows, and templates.
type StructuredPayload struct {
	Checklists []Checklist `json:"checklists,omitempty"`
	Workflows  []Workflow  `json:"workflows,omitempty"`
	Templates  []Template  `json:"templates,omitempty"`
}

// Empty returns true if no structured artifacts were produced.
func (p *StructuredPayload) Empty() bool {
	return len(p.Checklists) == 0 && len(p.Workflows) == 0 && len(p.Templates) == 0
}

// Checklist is an ordered list of actionable items under a title.
type Checklist struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// Workflow is a named sequence of process steps.
type Workflow struct {
	Name  string   `json:"name"`
	Steps []string `json:"steps"`
}

// Template is a reusable structured document with named fields.
type Template struct {
	Name   string   `json:"name"`
	Format string   `json:"format,omitempty"`
	Fields []string `json:"fields"`
}

// CommunicationPayload is the output shape of the natural-language
// capability: zero or more emails, summaries, and announcements.
type CommunicationPayload struct {
	Emails        []Email        `json:"emails,omitempty"`
	Summaries     []Summary      `json:"summaries,omitempty"`
	Announcements []Announcement `json:"announcements,omitempty"`
}

// Empty returns true if no communication artifacts were produced.
func (p *CommunicationPayload) Empty() bool {
	return len(p.Emails) == 0 && len(p.Summaries) == 0 && len(p.Announcements) == 0
}

// Email is a drafted message. Body is always present; the rest is optional.
type Email struct {
	Recipient string `json:"recipient,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body"`
	Tone      string `json:"tone,omitempty"`
}

// Summary is a condensed brief with optional key points.
type Summary struct {
	Title     string   `json:"title,omitempty"`
	Content   string   `json:"content"`
	KeyPoints []string `json:"key_points,omitempty"`
}

// Announcement is a team-facing update with optional action items.
type Announcement struct {
	Title       string   `json:"title,omitempty"`
	Content     string   `json:"content"`
	ActionItems []string `json:"action_items,omitempty"`
}
