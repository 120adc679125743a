package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"routine-planner/internal/model"
	"routine-planner/internal/repository"
)

func TestMaterializeIdempotent(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	r := h.seedRoutine(t, model.Routine{Title: "Stretch", Frequency: model.FrequencyDaily})

	for i := 0; i < 2; i++ {
		if _, err := h.routines.Materialize(ctx, "u1", h.today()); err != nil {
			t.Fatalf("Materialize failed: %v", err)
		}
	}
	tasks := h.day(t, "u1", h.today())
	if len(tasks) != 1 {
		t.Fatalf("Expected exactly 1 task, got %d", len(tasks))
	}
	if tasks[0].RoutineID == nil || *tasks[0].RoutineID != r.ID {
		t.Errorf("Expected task to reference routine %s, got %v", r.ID, tasks[0].RoutineID)
	}
	if tasks[0].IsCompleted {
		t.Error("Expected materialized task to be incomplete")
	}
}

func TestMaterializeWeekly(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	h.seedRoutine(t, model.Routine{
		Title:     "Run",
		Frequency: model.FrequencyWeekly,
		Weekdays:  model.NewWeekdaySet(time.Monday),
	})

	monday := model.Date("2024-06-03")
	n, err := h.routines.Materialize(ctx, "u1", monday)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	tasks := h.day(t, "u1", monday)
	if n != 1 || len(tasks) != 1 || tasks[0].Title != "Run" || !tasks[0].FromRoutine() {
		t.Fatalf("Expected one routine task \"Run\" on Monday, got n=%d tasks=%v", n, titles(tasks))
	}

	tuesday := monday.AddDays(1)
	n, err = h.routines.Materialize(ctx, "u1", tuesday)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if n != 0 || len(h.day(t, "u1", tuesday)) != 0 {
		t.Errorf("Expected no task on Tuesday, got %d", n)
	}
}

func TestMaterializeMonthlyOverflow(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		overflow model.MonthOverflow
		date     model.Date
		want     int
	}{
		{"clamp on last day", model.OverflowClamp, "2024-06-30", 1},
		{"clamp not before last day", model.OverflowClamp, "2024-06-29", 0},
		{"skip short month", model.OverflowSkip, "2024-06-30", 0},
		{"exact day", model.OverflowSkip, "2024-07-31", 1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, withOverflow(tt.overflow))
			h.seedRoutine(t, model.Routine{Title: "Rent", Frequency: model.FrequencyMonthly, DayOfMonth: 31})
			n, err := h.routines.Materialize(context.Background(), "u1", tt.date)
			if err != nil {
				t.Fatalf("Materialize failed: %v", err)
			}
			if n != tt.want {
				t.Errorf("Expected %d tasks, got %d", tt.want, n)
			}
		})
	}
}

func TestMaterializeCopiesRoutineAndAppends(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	cat, err := h.categoryRepo.EnsureDefault(ctx, "u1")
	if err != nil {
		t.Fatalf("EnsureDefault failed: %v", err)
	}
	h.seedTask(t, model.Task{Title: "existing", TaskDate: h.today(), SortOrder: 4})
	h.seedRoutine(t, model.Routine{
		Title:      "Read",
		Memo:       "20 pages",
		Priority:   model.PriorityHigh,
		CategoryID: &cat.ID,
		Frequency:  model.FrequencyDaily,
	})

	if _, err := h.routines.Materialize(ctx, "u1", h.today()); err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	var got *model.Task
	for _, task := range h.day(t, "u1", h.today()) {
		if task.FromRoutine() {
			task := task
			got = &task
		}
	}
	if got == nil {
		t.Fatal("Expected a routine task")
	}
	if got.Memo != "20 pages" || got.Priority != model.PriorityHigh || got.CategoryID == nil || *got.CategoryID != cat.ID {
		t.Errorf("Expected routine fields to be copied, got %+v", got)
	}
	if got.SortOrder != 5 {
		t.Errorf("Expected sort order 5, got %d", got.SortOrder)
	}
}

func TestMaterializeSkipsInactive(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	r := h.seedRoutine(t, model.Routine{Title: "Paused", Frequency: model.FrequencyDaily})
	if _, err := h.routines.Materialize(ctx, "u1", h.today()); err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if _, err := h.routines.SetActive(ctx, "u1", r.ID, false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	tomorrow := h.today().AddDays(1)
	n, err := h.routines.Materialize(ctx, "u1", tomorrow)
	if err != nil || n != 0 {
		t.Fatalf("Expected inactive routine to produce nothing, got %d, %v", n, err)
	}
	if len(h.day(t, "u1", h.today())) != 1 {
		t.Error("Expected already generated task to stay after deactivation")
	}
}

// blindDay hides the day's tasks so the unique index is the only guard.
type blindDay struct {
	*repository.TaskRepository
}

func (b blindDay) ListByDate(context.Context, string, model.Date) ([]model.Task, error) {
	return nil, nil
}

func TestMaterializeDuplicateCountsAsPresent(t *testing.T) {
	t.Parallel()
	h := newHarness(t, withTaskStore(func(r *repository.TaskRepository) TaskStore {
		return blindDay{r}
	}))
	ctx := context.Background()
	h.seedRoutine(t, model.Routine{Title: "Water", Frequency: model.FrequencyDaily})

	if n, err := h.routines.Materialize(ctx, "u1", h.today()); err != nil || n != 1 {
		t.Fatalf("Expected first materialize to create 1, got %d, %v", n, err)
	}
	n, err := h.routines.Materialize(ctx, "u1", h.today())
	if err != nil {
		t.Fatalf("Expected duplicate to be tolerated, got %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 created, got %d", n)
	}
	if got := len(h.day(t, "u1", h.today())); got != 1 {
		t.Errorf("Expected 1 stored task, got %d", got)
	}
}

func TestMaterializeWithoutUser(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	if n, err := h.routines.Materialize(context.Background(), "", h.today()); n != 0 || err != nil {
		t.Errorf("Expected no-op, got %d, %v", n, err)
	}
}

func TestRoutineCreateValidation(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   RoutineInput
		want error
	}{
		{"empty title", RoutineInput{Title: " ", Frequency: model.FrequencyDaily}, ErrEmptyTitle},
		{"weekly without days", RoutineInput{Title: "x", Frequency: model.FrequencyWeekly}, ErrInvalidRecurrence},
		{"monthly day 0", RoutineInput{Title: "x", Frequency: model.FrequencyMonthly}, ErrInvalidRecurrence},
		{"monthly day 32", RoutineInput{Title: "x", Frequency: model.FrequencyMonthly, DayOfMonth: 32}, ErrInvalidRecurrence},
		{"unknown frequency", RoutineInput{Title: "x", Frequency: "yearly"}, ErrInvalidRecurrence},
		{"bad time", RoutineInput{Title: "x", Frequency: model.FrequencyDaily, Time: "25:00"}, ErrInvalidTime},
		{"bad priority", RoutineInput{Title: "x", Frequency: model.FrequencyDaily, Priority: "urgent"}, ErrInvalidPriority},
		{"unknown category", RoutineInput{Title: "x", Frequency: model.FrequencyDaily, CategoryID: strPtr("nope")}, ErrUnknownCategory},
	}
	for _, tt := range tests {
		if _, err := h.routines.Create(ctx, "u1", tt.in); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
	list, err := h.routines.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected no routine stored after rejected input, got %d", len(list))
	}
	if _, err := h.routines.Create(ctx, "", RoutineInput{Title: "x", Frequency: model.FrequencyDaily}); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated, got %v", err)
	}
}

func TestRoutineCreateUpdateDelete(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	r, err := h.routines.Create(ctx, "u1", RoutineInput{
		Title:     " Gym ",
		Frequency: model.FrequencyWeekly,
		Weekdays:  model.NewWeekdaySet(time.Monday, time.Thursday),
		// ignored for weekly
		DayOfMonth: 12,
		Time:       "07:30",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if r.Title != "Gym" || !r.IsActive || !r.HasTime || r.DayOfMonth != 0 || r.Priority != model.PriorityMedium {
		t.Errorf("Unexpected routine: %+v", r)
	}

	updated, err := h.routines.Update(ctx, "u1", r.ID, RoutineInput{Title: "Gym", Frequency: model.FrequencyMonthly, DayOfMonth: 15})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Weekdays != 0 || updated.DayOfMonth != 15 || updated.HasTime {
		t.Errorf("Unexpected updated routine: %+v", updated)
	}
	stored, err := h.routines.Get(ctx, "u1", r.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Frequency != model.FrequencyMonthly || stored.DayOfMonth != 15 || !stored.IsActive {
		t.Errorf("Expected stored monthly routine, got %+v", stored)
	}

	if _, err := h.routines.Update(ctx, "u2", r.ID, RoutineInput{Title: "x", Frequency: model.FrequencyDaily}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for other user, got %v", err)
	}
	if err := h.routines.Delete(ctx, "u1", r.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := h.routines.Get(ctx, "u1", r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestRoutineDeleteReleasesTasksToCarryOver(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	yesterday := h.today().AddDays(-1)

	r, err := h.routines.Create(ctx, "u1", RoutineInput{Title: "Stretch", Frequency: model.FrequencyDaily})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if n, err := h.routines.Materialize(ctx, "u1", yesterday); err != nil || n != 1 {
		t.Fatalf("Expected one materialized task, got %d: %v", n, err)
	}
	if err := h.routines.Delete(ctx, "u1", r.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	moved, err := h.carry.Run(ctx, "u1", h.today())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if moved != 1 {
		t.Fatalf("Expected the orphaned task carried over, moved %d", moved)
	}
	today := h.day(t, "u1", h.today())
	if len(today) != 1 || today[0].Title != "Stretch" || today[0].RoutineID != nil {
		t.Errorf("Expected a detached Stretch task today, got %+v", today)
	}
}

func TestMaterializeAll(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	a, err := h.userRepo.UpsertFromTelegram(ctx, 1, "A", "", "a")
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	b, err := h.userRepo.UpsertFromTelegram(ctx, 2, "B", "", "b")
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	h.seedRoutine(t, model.Routine{UserID: a.ID, Title: "a", Frequency: model.FrequencyDaily})
	h.seedRoutine(t, model.Routine{UserID: b.ID, Title: "b", Frequency: model.FrequencyDaily})

	n, err := h.routines.MaterializeAll(ctx, h.today())
	if err != nil {
		t.Fatalf("MaterializeAll failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 tasks, got %d", n)
	}
}
