package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"routine-planner/internal/model"
	"routine-planner/internal/ordering"
	"routine-planner/internal/repository"
)

func seedABC(t *testing.T, h *harness) (a, b, c model.Task) {
	t.Helper()
	base := testNow.Add(-time.Hour)
	a = h.seedTask(t, model.Task{Title: "A", TaskDate: h.today(), SortOrder: 0, CreatedAt: base})
	b = h.seedTask(t, model.Task{Title: "B", TaskDate: h.today(), SortOrder: 1, CreatedAt: base.Add(time.Minute)})
	c = h.seedTask(t, model.Task{Title: "C", TaskDate: h.today(), SortOrder: 2, CreatedAt: base.Add(2 * time.Minute)})
	return a, b, c
}

func TestReorderCommit(t *testing.T) {
	bothPolicies(t, func(t *testing.T, p ordering.Policy) {
		h := newHarness(t, withPolicy(p))
		ctx := context.Background()
		a, b, c := seedABC(t, h)
		reorder := NewReorderService(h.taskRepo, p, true, zap.NewNop())

		got, err := reorder.Commit(ctx, "u1", h.today(), []string{c.ID, a.ID, b.ID})
		if err != nil {
			t.Fatalf("Commit failed: %v", err)
		}
		if want := []string{"C", "A", "B"}; !equalStrings(titles(got), want) {
			t.Errorf("Expected %v, got %v", want, titles(got))
		}

		positions := map[string]int{c.ID: 0, a.ID: 1, b.ID: 2}
		stored := h.day(t, "u1", h.today())
		for _, task := range stored {
			if task.SortOrder != positions[task.ID] {
				t.Errorf("Expected %s at %d, got %d", task.Title, positions[task.ID], task.SortOrder)
			}
		}
		resorted := ordering.Sort(stored, p.WithTiebreak(ordering.TiebreakPosition))
		if want := []string{"C", "A", "B"}; !equalStrings(titles(resorted), want) {
			t.Errorf("Expected position sort %v, got %v", want, titles(resorted))
		}
	})
}

func TestReorderKeepsPriorityBands(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	low := h.seedTask(t, model.Task{Title: "low", Priority: model.PriorityLow, TaskDate: h.today()})
	high := h.seedTask(t, model.Task{Title: "high", Priority: model.PriorityHigh, TaskDate: h.today()})
	reorder := NewReorderService(h.taskRepo, ordering.DefaultPolicy, true, zap.NewNop())

	got, err := reorder.Commit(ctx, "u1", h.today(), []string{low.ID, high.ID})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if want := []string{"high", "low"}; !equalStrings(titles(got), want) {
		t.Errorf("Expected priority to win over manual order %v, got %v", want, titles(got))
	}
}

func TestReorderRejectsBadSequence(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	a, b, c := seedABC(t, h)
	other := h.seedTask(t, model.Task{Title: "other day", TaskDate: h.today().AddDays(1)})
	foreign := h.seedTask(t, model.Task{UserID: "u2", Title: "foreign", TaskDate: h.today()})
	reorder := NewReorderService(h.taskRepo, ordering.DefaultPolicy, true, zap.NewNop())

	tests := [][]string{
		{a.ID, a.ID, b.ID},
		{b.ID, other.ID},
		{foreign.ID, a.ID},
		{"missing"},
		{c.ID},
		{b.ID, a.ID},
		{},
	}
	for _, ids := range tests {
		if _, err := reorder.Commit(ctx, "u1", h.today(), ids); !errors.Is(err, ErrInvalidOrder) {
			t.Errorf("Expected ErrInvalidOrder for %v, got %v", ids, err)
		}
	}
	for _, task := range h.day(t, "u1", h.today()) {
		if task.Title == "A" && task.SortOrder != 0 || task.Title == "B" && task.SortOrder != 1 || task.Title == "C" && task.SortOrder != 2 {
			t.Errorf("Expected no writes after rejected order, %s is at %d", task.Title, task.SortOrder)
		}
	}
}

// flakyPositions fails the position write of one task.
type flakyPositions struct {
	*repository.TaskRepository
	failID string
}

func (f *flakyPositions) UpdateSortOrder(ctx context.Context, userID, taskID string, position int) error {
	if taskID == f.failID {
		return errors.New("write rejected")
	}
	return f.TaskRepository.UpdateSortOrder(ctx, userID, taskID, position)
}

func TestReorderFailurePolicies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("resync", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		a, b, c := seedABC(t, h)
		store := &flakyPositions{TaskRepository: h.taskRepo, failID: a.ID}
		reorder := NewReorderService(store, ordering.DefaultPolicy, true, zap.NewNop())

		got, err := reorder.Commit(ctx, "u1", h.today(), []string{c.ID, a.ID, b.ID})
		if err == nil {
			t.Fatal("Expected error")
		}
		// C reached position 0 before the failure; A and B were never written.
		if want := []string{"A", "C", "B"}; !equalStrings(titles(got), want) {
			t.Errorf("Expected reloaded order %v, got %v", want, titles(got))
		}
		for _, task := range h.day(t, "u1", h.today()) {
			if task.ID == b.ID && task.SortOrder != 1 {
				t.Errorf("Expected B to keep position 1, got %d", task.SortOrder)
			}
		}
	})

	t.Run("continue", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		a, b, c := seedABC(t, h)
		store := &flakyPositions{TaskRepository: h.taskRepo, failID: a.ID}
		reorder := NewReorderService(store, ordering.DefaultPolicy, false, zap.NewNop())

		got, err := reorder.Commit(ctx, "u1", h.today(), []string{c.ID, a.ID, b.ID})
		if err == nil {
			t.Fatal("Expected joined error")
		}
		if want := []string{"C", "A", "B"}; !equalStrings(titles(got), want) {
			t.Errorf("Expected optimistic order %v, got %v", want, titles(got))
		}
		for _, task := range h.day(t, "u1", h.today()) {
			if task.ID == b.ID && task.SortOrder != 2 {
				t.Errorf("Expected B to be written after the failure, got %d", task.SortOrder)
			}
		}
	})
}
