package ordering

import (
	"sort"

	"routine-planner/internal/model"
)

// Less is the task comparator: incomplete first, then rank, then the policy
// tiebreak, then id so that the order never depends on input order.
func Less(a, b *model.Task, p Policy) bool {
	if a.IsCompleted != b.IsCompleted {
		return !a.IsCompleted
	}
	wa, wb := TaskWeight(a, p.Bands), TaskWeight(b, p.Bands)
	if wa != wb {
		return wa < wb
	}
	if p.Tiebreak == TiebreakPosition && a.SortOrder != b.SortOrder {
		return a.SortOrder < b.SortOrder
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Sort returns a sorted copy of tasks.
func Sort(tasks []model.Task, p Policy) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return Less(&out[i], &out[j], p)
	})
	return out
}

// IDs lists task ids in order.
func IDs(tasks []model.Task) []string {
	ids := make([]string, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}
	return ids
}
