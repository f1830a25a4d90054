// Package router assigns subtasks to capability adapters and derives the
// wave schedule from the dependency graph.
package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/taskflowr/taskflowr/pkg/models"
)

// Error indicates a subtask set that cannot be routed: an unrecognized
// capability class or a dependency cycle. Fatal to the run; no plan is
// produced and nothing is persisted.
type Error struct {
	// Reason describes why routing failed.
	Reason string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("routing: %s", e.Reason)
}

// Route builds a DispatchPlan for the given subtasks. It is a pure,
// deterministic function of its input: identical subtask lists always produce
// identical plans, with no hidden state and no randomness. Subtasks within
// the same wave are ordered by their original sequence.
func Route(subtasks []models.Subtask) (*models.DispatchPlan, error) {
	if len(subtasks) == 0 {
		return nil, &Error{Reason: "no subtasks to route"}
	}

	for _, st := range subtasks {
		if !st.CapabilityClass.Valid() {
			return nil, &Error{Reason: fmt.Sprintf("subtask %s has unrecognized capability class %q", st.ID, st.CapabilityClass)}
		}
	}

	waves, err := computeWaves(subtasks)
	if err != nil {
		return nil, err
	}

	assignments := make([]models.Assignment, len(subtasks))
	maxWave := 0
	for i := range subtasks {
		st := &subtasks[i]
		w := waves[st.ID]
		if w > maxWave {
			maxWave = w
		}
		assignments[i] = models.Assignment{
			Subtask: st,
			Adapter: st.CapabilityClass,
			Wave:    w,
		}
	}

	// Order assignments by wave, ties broken by original sequence.
	sort.SliceStable(assignments, func(i, j int) bool {
		if assignments[i].Wave != assignments[j].Wave {
			return assignments[i].Wave < assignments[j].Wave
		}
		return assignments[i].Subtask.Seq < assignments[j].Subtask.Seq
	})

	waveGroups := make([][]*models.Subtask, maxWave+1)
	for _, a := range assignments {
		waveGroups[a.Wave] = append(waveGroups[a.Wave], a.Subtask)
	}

	return &models.DispatchPlan{
		Assignments: assignments,
		Waves:       waveGroups,
	}, nil
}

// computeWaves assigns each subtask its dependency depth: wave 0 for
// dependency-free subtasks, otherwise one more than the highest wave among
// its dependencies. Kahn-style passes; any subtask left unresolved when a
// pass makes no progress is part of a cycle.
func computeWaves(subtasks []models.Subtask) (map[string]int, error) {
	waves := make(map[string]int, len(subtasks))

	byID := make(map[string]*models.Subtask, len(subtasks))
	for i := range subtasks {
		byID[subtasks[i].ID] = &subtasks[i]
	}

	for len(waves) < len(subtasks) {
		progressed := false

		for i := range subtasks {
			st := &subtasks[i]
			if _, done := waves[st.ID]; done {
				continue
			}

			wave := 0
			resolved := true
			for _, dep := range st.DependsOn {
				if _, ok := byID[dep]; !ok {
					return nil, &Error{Reason: fmt.Sprintf("subtask %s depends on unknown subtask %q", st.ID, dep)}
				}
				depWave, ok := waves[dep]
				if !ok {
					resolved = false
					break
				}
				if depWave+1 > wave {
					wave = depWave + 1
				}
			}

			if resolved {
				waves[st.ID] = wave
				progressed = true
			}
		}

		if !progressed {
			var stuck []string
			for i := range subtasks {
				if _, done := waves[subtasks[i].ID]; !done {
					stuck = append(stuck, subtasks[i].ID)
				}
			}
			sort.Strings(stuck)
			return nil, &Error{Reason: fmt.Sprintf("dependency cycle among subtasks: %s", strings.Join(stuck, ", "))}
		}
	}

	return waves, nil
}
