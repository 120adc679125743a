package ordering

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"routine-planner/internal/model"
)

var (
	t0 = time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Minute)
	t2 = t0.Add(2 * time.Minute)
)

func routineID(s string) *string { return &s }

func allPolicies() []Policy {
	return []Policy{
		{Bands: BandsRoutine, Tiebreak: TiebreakPosition},
		{Bands: BandsRoutine, Tiebreak: TiebreakCreatedAt},
		{Bands: BandsFlat, Tiebreak: TiebreakPosition},
		{Bands: BandsFlat, Tiebreak: TiebreakCreatedAt},
	}
}

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "a", Priority: model.PriorityLow, CreatedAt: t0, SortOrder: 4},
		{ID: "b", Priority: model.PriorityHigh, CreatedAt: t2, SortOrder: 0},
		{ID: "c", Priority: model.PriorityHigh, RoutineID: routineID("r1"), CreatedAt: t0, SortOrder: 1},
		{ID: "d", Priority: model.PriorityMedium, IsCompleted: true, CreatedAt: t0, SortOrder: 2},
		{ID: "e", Priority: "urgent", CreatedAt: t0, SortOrder: 3},
		{ID: "f", Priority: model.PriorityMedium, CreatedAt: t1, SortOrder: 5},
		{ID: "g", Priority: model.PriorityLow, RoutineID: routineID("r2"), CreatedAt: t1, SortOrder: 6},
		{ID: "h", Priority: model.PriorityHigh, IsCompleted: true, CreatedAt: t1, SortOrder: 7},
	}
}

func TestWeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		priority model.Priority
		routine  bool
		bands    Bands
		want     float64
	}{
		{model.PriorityHigh, false, BandsRoutine, 1},
		{model.PriorityMedium, false, BandsRoutine, 2},
		{model.PriorityLow, false, BandsRoutine, 3},
		{model.PriorityHigh, true, BandsRoutine, 1.1},
		{model.PriorityMedium, true, BandsRoutine, 1.2},
		{model.PriorityLow, true, BandsRoutine, 1.3},
		{model.PriorityHigh, true, BandsFlat, 1},
		{model.PriorityLow, true, BandsFlat, 3},
		{"bogus", false, BandsRoutine, UnknownWeight},
		{"bogus", true, BandsRoutine, UnknownWeight},
		{"", false, BandsFlat, UnknownWeight},
	}

	for _, tt := range tests {
		got := Weight(tt.priority, tt.routine, tt.bands)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("Weight(%q, %v, %v) = %v, want %v", tt.priority, tt.routine, tt.bands, got, tt.want)
		}
	}
}

func TestSortIsIdempotent(t *testing.T) {
	t.Parallel()

	for _, p := range allPolicies() {
		once := Sort(sampleTasks(), p)
		twice := Sort(once, p)
		if !reflect.DeepEqual(IDs(once), IDs(twice)) {
			t.Errorf("policy %v/%v: Sort not idempotent: %v vs %v", p.Bands, p.Tiebreak, IDs(once), IDs(twice))
		}
	}
}

func TestSortIgnoresInputOrder(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for _, p := range allPolicies() {
		want := IDs(Sort(sampleTasks(), p))
		for i := 0; i < 20; i++ {
			shuffled := sampleTasks()
			rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
			if got := IDs(Sort(shuffled, p)); !reflect.DeepEqual(got, want) {
				t.Fatalf("policy %v/%v: got %v, want %v", p.Bands, p.Tiebreak, got, want)
			}
		}
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := sampleTasks()
	before := IDs(in)
	_ = Sort(in, DefaultPolicy)
	if !reflect.DeepEqual(IDs(in), before) {
		t.Errorf("Sort mutated its input: %v", IDs(in))
	}
}

func TestIncompleteBeforeComplete(t *testing.T) {
	t.Parallel()

	for _, p := range allPolicies() {
		sorted := Sort(sampleTasks(), p)
		seenCompleted := false
		for _, task := range sorted {
			if task.IsCompleted {
				seenCompleted = true
				continue
			}
			if seenCompleted {
				t.Fatalf("policy %v/%v: incomplete task %s after a completed one: %v", p.Bands, p.Tiebreak, task.ID, IDs(sorted))
			}
		}
	}
}

func TestRoutineBanding(t *testing.T) {
	t.Parallel()

	explicitHigh := model.Task{ID: "x", Priority: model.PriorityHigh, CreatedAt: t2, SortOrder: 9}
	routineHigh := model.Task{ID: "y", Priority: model.PriorityHigh, RoutineID: routineID("r"), CreatedAt: t0, SortOrder: 0}
	routineLow := model.Task{ID: "z", Priority: model.PriorityLow, RoutineID: routineID("r2"), CreatedAt: t0, SortOrder: 0}
	explicitMedium := model.Task{ID: "w", Priority: model.PriorityMedium, CreatedAt: t0, SortOrder: 0}

	for _, tb := range []Tiebreak{TiebreakPosition, TiebreakCreatedAt} {
		p := Policy{Bands: BandsRoutine, Tiebreak: tb}
		got := IDs(Sort([]model.Task{explicitMedium, routineLow, routineHigh, explicitHigh}, p))
		want := []string{"x", "y", "z", "w"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("tiebreak %v: got %v, want %v", tb, got, want)
		}
	}

	// Flat banding: routine high ties with explicit high, so the tiebreak decides.
	flat := Policy{Bands: BandsFlat, Tiebreak: TiebreakCreatedAt}
	got := IDs(Sort([]model.Task{explicitHigh, routineHigh}, flat))
	if !reflect.DeepEqual(got, []string{"y", "x"}) {
		t.Errorf("flat bands: got %v, want [y x]", got)
	}
}

func TestPriorityDominatesCreationTime(t *testing.T) {
	t.Parallel()

	tasks := []model.Task{
		{ID: "medium", Priority: model.PriorityMedium, CreatedAt: t0},
		{ID: "high", Priority: model.PriorityHigh, CreatedAt: t1},
	}
	for _, p := range allPolicies() {
		got := IDs(Sort(tasks, p))
		if !reflect.DeepEqual(got, []string{"high", "medium"}) {
			t.Errorf("policy %v/%v: got %v", p.Bands, p.Tiebreak, got)
		}
	}
}

func TestTiebreakPolicies(t *testing.T) {
	t.Parallel()

	tasks := []model.Task{
		{ID: "a", Priority: model.PriorityMedium, CreatedAt: t0, SortOrder: 2},
		{ID: "b", Priority: model.PriorityMedium, CreatedAt: t1, SortOrder: 0},
		{ID: "c", Priority: model.PriorityMedium, CreatedAt: t2, SortOrder: 1},
	}

	byPosition := IDs(Sort(tasks, Policy{Tiebreak: TiebreakPosition}))
	if !reflect.DeepEqual(byPosition, []string{"b", "c", "a"}) {
		t.Errorf("position tiebreak: got %v", byPosition)
	}
	byCreated := IDs(Sort(tasks, Policy{Tiebreak: TiebreakCreatedAt}))
	if !reflect.DeepEqual(byCreated, []string{"a", "b", "c"}) {
		t.Errorf("created tiebreak: got %v", byCreated)
	}
}

func TestUnknownPrioritySortsLast(t *testing.T) {
	t.Parallel()

	tasks := []model.Task{
		{ID: "odd", Priority: "someday", CreatedAt: t0},
		{ID: "low", Priority: model.PriorityLow, CreatedAt: t1},
	}
	got := IDs(Sort(tasks, DefaultPolicy))
	if !reflect.DeepEqual(got, []string{"low", "odd"}) {
		t.Errorf("got %v, want [low odd]", got)
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	if b, err := ParseBands("FLAT"); err != nil || b != BandsFlat {
		t.Errorf("ParseBands(FLAT) = %v, %v", b, err)
	}
	if b, err := ParseBands(""); err != nil || b != BandsRoutine {
		t.Errorf("ParseBands(\"\") = %v, %v", b, err)
	}
	if _, err := ParseBands("wide"); err == nil {
		t.Error("Expected error for unknown bands")
	}
	if tb, err := ParseTiebreak("created"); err != nil || tb != TiebreakCreatedAt {
		t.Errorf("ParseTiebreak(created) = %v, %v", tb, err)
	}
	if tb, err := ParseTiebreak(""); err != nil || tb != TiebreakPosition {
		t.Errorf("ParseTiebreak(\"\") = %v, %v", tb, err)
	}
}
