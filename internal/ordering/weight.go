package ordering

import "routine-planner/internal/model"

// UnknownWeight ranks priorities outside the enum after everything else.
const UnknownWeight = 999.0

var baseWeight = map[model.Priority]float64{
	model.PriorityHigh:   1,
	model.PriorityMedium: 2,
	model.PriorityLow:    3,
}

// Weight returns the rank of a priority; lower sorts earlier. Under
// BandsRoutine a routine task ranks 1 + base*0.1, i.e. after explicit high
// and before explicit medium.
func Weight(p model.Priority, fromRoutine bool, bands Bands) float64 {
	base, ok := baseWeight[p]
	if !ok {
		return UnknownWeight
	}
	if fromRoutine && bands == BandsRoutine {
		return 1 + base*0.1
	}
	return base
}

// TaskWeight is Weight applied to a task.
func TaskWeight(t *model.Task, bands Bands) float64 {
	return Weight(t.Priority, t.FromRoutine(), bands)
}
