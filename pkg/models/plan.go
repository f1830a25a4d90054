package models

// Assignment binds one subtask to an adapter and an execution wave.
type Assignment struct {
	// Subtask is the unit of work being dispatched.
	Subtask *Subtask `json:"subtask"`
	// Adapter is the capability class of the adapter instance assigned.
	Adapter CapabilityClass `json:"adapter"`
	// Wave is the execution wave: 0 for dependency-free subtasks,
	// otherwise one more than the highest wave among dependencies.
	Wave int `json:"wave"`
}

// DispatchPlan is the router's output: a deterministic mapping of subtasks to
// adapters plus the wave schedule derived from the dependency graph.
// Assignments are ordered by wave, then by subtask sequence.
type DispatchPlan struct {
	// Assignments lists every subtask with its adapter and wave.
	Assignments []Assignment `json:"assignments"`
	// Waves groups the assigned subtasks by wave number for execution.
	// Waves[k] holds the subtasks dispatched concurrently in wave k,
	// ordered by subtask sequence.
	Waves [][]*Subtask `json:"-"`
}

// WaveOf returns the wave number for the given subtask ID, or -1 if the
// subtask is not in the plan.
func (p *DispatchPlan) WaveOf(subtaskID string) int {
	for _, a := range p.Assignments {
		if a.Subtask.ID == subtaskID {
			return a.Wave
		}
	}
	return -1
}

// Size returns the number of subtasks in the plan.
func (p *DispatchPlan) Size() int {
	return len(p.Assignments)
}
