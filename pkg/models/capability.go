package models

// CapabilityClass identifies which specialized worker a subtask is routed to.
// The set is closed: routing is a total mapping over these two values, never
// an open-ended dispatch table.
type CapabilityClass string

const (
	// CapabilityStructuredOps handles checklists, workflows, and structured templates.
	CapabilityStructuredOps CapabilityClass = "structured-operations"
	// CapabilityNaturalLanguage handles emails, summaries, and announcements.
	CapabilityNaturalLanguage CapabilityClass = "natural-language"
)

// Valid returns true if the class is a known value.
func (c CapabilityClass) Valid() bool {
	switch c {
	case CapabilityStructuredOps, CapabilityNaturalLanguage:
		return true
	default:
		return false
	}
}

// Classes returns all capability classes in a stable order.
func Classes() []CapabilityClass {
	return []CapabilityClass{CapabilityStructuredOps, CapabilityNaturalLanguage}
}
