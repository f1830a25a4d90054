package capability

import (
	"encoding/json"
	"fmt"
	"strings"
)

// renderPriorContext formats earlier-wave payloads for inclusion in a worker
// prompt. Only explicit-dependency payloads reach an adapter, so the rendered
// block stays bounded.
func renderPriorContext(prior []PriorResult) string {
	if len(prior) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nCompleted outputs from earlier subtasks this task depends on:\n")
	for _, p := range prior {
		data, err := json.Marshal(p.Payload)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", p.SubtaskID, string(data))
	}
	return b.String()
}
