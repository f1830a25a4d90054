// Package merge assembles settled worker results into a single deliverable.
// Merging is pure: the same subtasks and results always produce the same
// deliverable, so a re-merge after a crash yields an identical artifact.
package merge

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/taskflowr/taskflowr/pkg/models"
)

// Merge combines one result per subtask into a deliverable. Payloads appear
// in subtask sequence order regardless of completion order. Subtasks with no
// result (for example after a cancelled run) count as unfinished.
func Merge(runID string, subtasks []models.Subtask, results []models.WorkerResult) *models.Deliverable {
	byID := make(map[string]models.WorkerResult, len(results))
	for _, res := range results {
		byID[res.SubtaskID] = res
	}

	ordered := make([]models.Subtask, len(subtasks))
	copy(ordered, subtasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Seq < ordered[j].Seq
	})

	var payloads []models.DeliverablePayload
	var unfinished []string
	for _, st := range ordered {
		res, ok := byID[st.ID]
		if !ok {
			unfinished = append(unfinished, fmt.Sprintf("%s (never dispatched)", st.ID))
			continue
		}
		if res.Outcome != models.OutcomeSuccess {
			unfinished = append(unfinished, describeUnfinished(st.ID, res))
			continue
		}
		payloads = append(payloads, models.DeliverablePayload{
			SubtaskID: st.ID,
			Class:     st.CapabilityClass,
			Payload:   res.Payload,
		})
	}

	return &models.Deliverable{
		RunID:     runID,
		Status:    status(len(payloads), len(subtasks)),
		Payloads:  payloads,
		Note:      note(unfinished),
		CreatedAt: time.Now(),
	}
}

func status(succeeded, total int) models.DeliverableStatus {
	switch {
	case total == 0 || succeeded == 0:
		return models.StatusFailed
	case succeeded == total:
		return models.StatusComplete
	default:
		return models.StatusPartial
	}
}

func describeUnfinished(subtaskID string, res models.WorkerResult) string {
	switch res.Outcome {
	case models.OutcomeTimeout:
		return fmt.Sprintf("%s (timed out after %d attempts)", subtaskID, res.Attempts)
	default:
		if res.Err != "" {
			return fmt.Sprintf("%s (failed: %s)", subtaskID, res.Err)
		}
		return fmt.Sprintf("%s (failed)", subtaskID)
	}
}

func note(unfinished []string) string {
	if len(unfinished) == 0 {
		return ""
	}
	return "unfinished subtasks: " + strings.Join(unfinished, "; ")
}
