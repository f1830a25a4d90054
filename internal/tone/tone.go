// Package tone manages the tone profiles applied to natural-language output.
package tone

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

// DefaultTone is used when neither the session nor the instruction implies one.
const DefaultTone = "professional"

// builtinStyles are the always-available tone presets and their style guidance.
var builtinStyles = map[string]string{
	"professional": "Clear, concise, business-appropriate language",
	"friendly":     "Warm, approachable, collaborative tone",
	"executive":    "High-level, strategic, decision-focused",
	"technical":    "Precise, detailed, domain-specific",
}

// Catalog holds the known tone presets. Presets loaded from a YAML file extend
// or override the built-ins.
type Catalog struct {
	mu     sync.RWMutex
	styles map[string]string
}

// presetsFile is the YAML structure for user-defined tone presets.
type presetsFile struct {
	Tones map[string]string `yaml:"tones"`
}

// NewCatalog creates a catalog with the built-in presets.
func NewCatalog() *Catalog {
	styles := make(map[string]string, len(builtinStyles))
	for k, v := range builtinStyles {
		styles[k] = v
	}
	return &Catalog{styles: styles}
}

// LoadPresets merges tone presets from a YAML file into the catalog.
func (c *Catalog) LoadPresets(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tone presets: %w", err)
	}

	var f presetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse tone presets: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for name, style := range f.Tones {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || style == "" {
			continue
		}
		c.styles[name] = style
	}
	return nil
}

// Known returns true if the catalog has a preset for the given tone.
func (c *Catalog) Known(tone string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.styles[strings.ToLower(tone)]
	return ok
}

// StyleGuide returns the style guidance for a tone, falling back to the
// professional preset for unknown tones.
func (c *Catalog) StyleGuide(tone string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if style, ok := c.styles[strings.ToLower(tone)]; ok {
		return style
	}
	return c.styles[DefaultTone]
}

// Names returns the catalog's tone names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.styles))
	for name := range c.styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve picks the tone for a run. An explicit session preference wins;
// otherwise the instruction text is scanned for audience cues, and the
// fallback is used when nothing matches.
func Resolve(sessionTone, instruction, fallback string) string {
	if sessionTone != "" {
		return sessionTone
	}

	lower := strings.ToLower(instruction)
	switch {
	case containsAny(lower, "executive", "leadership", "board", "ceo"):
		return "executive"
	case containsAny(lower, "team", "colleagues", "internal", "welcome"):
		return "friendly"
	case containsAny(lower, "technical", "engineering", "developer", "api"):
		return "technical"
	}

	if fallback != "" {
		return fallback
	}
	return DefaultTone
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
