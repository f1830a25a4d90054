package decompose

import (
	"fmt"
	"strings"
)

// decompositionPrompt is the prompt template for instruction decomposition.
const decompositionPrompt = `Break this user instruction into subtasks for two specialized workers.

User instruction:
%s
%s
Return ONLY a JSON array of subtasks with this exact structure (no other text):
[
  {
    "capability": "structured-operations|natural-language",
    "description": "What the worker should produce",
    "depends_on": [1]
  }
]

Capability classification:
- structured-operations: checklists, workflows, process templates, structured documents
- natural-language: emails, summaries, announcements, human-facing prose

Rules:
- Each subtask gets EXACTLY ONE capability. An instruction needing both forms
  must be split into at least two subtasks, never one subtask serving both roles.
- depends_on lists the 1-based positions of earlier subtasks whose output this
  subtask needs. Use an empty array [] when there is no ordering requirement.
- Default to independent subtasks (empty depends_on) so they can run in
  parallel; add a dependency only when output of one subtask is genuinely
  required as input to another (e.g. a summary of a generated checklist).
- Every description must be specific and self-contained.`

// buildPrompt renders the decomposition prompt with optional session context.
func buildPrompt(instruction string, sessionCtx SessionContext) string {
	var ctxBlock strings.Builder
	if sessionCtx.ToneProfile != "" {
		fmt.Fprintf(&ctxBlock, "\nSession tone preference: %s\n", sessionCtx.ToneProfile)
	}
	if n := len(sessionCtx.History); n > 0 {
		recent := sessionCtx.History[n-1]
		fmt.Fprintf(&ctxBlock, "\nPrevious run in this session: status=%s, %d outputs.\n", recent.Status, recent.PayloadCount)
	}
	return fmt.Sprintf(decompositionPrompt, instruction, ctxBlock.String())
}
