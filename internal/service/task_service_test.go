package service

import (
	"context"
	"errors"
	"testing"

	"routine-planner/internal/model"
)

func TestCreateTaskDefaults(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	task, err := h.tasks.CreateTask(ctx, "u1", TaskInput{Title: "  Buy milk  "})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.Title != "Buy milk" {
		t.Errorf("Expected trimmed title, got %q", task.Title)
	}
	if task.Priority != model.PriorityMedium {
		t.Errorf("Expected medium priority, got %s", task.Priority)
	}
	if task.TaskDate != h.today() {
		t.Errorf("Expected today's date, got %s", task.TaskDate)
	}
	if task.CategoryID == nil {
		t.Fatal("Expected default category")
	}
	def, err := h.categoryRepo.EnsureDefault(ctx, "u1")
	if err != nil {
		t.Fatalf("EnsureDefault failed: %v", err)
	}
	if *task.CategoryID != def.ID {
		t.Errorf("Expected category %s, got %s", def.ID, *task.CategoryID)
	}
	if task.FromRoutine() || task.IsCompleted {
		t.Errorf("Expected a new explicit incomplete task, got %+v", task)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input TaskInput
		want  error
	}{
		{"empty title", TaskInput{Title: "   "}, ErrEmptyTitle},
		{"bad priority", TaskInput{Title: "x", Priority: "urgent"}, ErrInvalidPriority},
		{"bad date", TaskInput{Title: "x", Date: "2024-13-01"}, ErrInvalidDate},
		{"unknown category", TaskInput{Title: "x", CategoryID: strPtr("missing")}, ErrUnknownCategory},
	}
	for _, tt := range tests {
		_, err := h.tasks.CreateTask(ctx, "u1", tt.input)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected a validation error, got %v", tt.name, err)
		}
	}
	if got := len(h.day(t, "u1", h.today())); got != 0 {
		t.Errorf("Expected no task written, got %d", got)
	}
	if _, err := h.tasks.CreateTask(ctx, "", TaskInput{Title: "x"}); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated, got %v", err)
	}
}

func TestCreateTaskPosition(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	create := func(title, priority string) *model.Task {
		t.Helper()
		task, err := h.tasks.CreateTask(ctx, "u1", TaskInput{Title: title, Priority: priority})
		if err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}
		return task
	}

	first := create("first", "high")
	if first.SortOrder != 0 {
		t.Errorf("Expected first task at 0, got %d", first.SortOrder)
	}
	low := create("low", "low")
	if low.SortOrder != 1 {
		t.Errorf("Expected first low task after everything, got %d", low.SortOrder)
	}
	second := create("second high", "high")
	if second.SortOrder != 1 {
		t.Errorf("Expected second high task after the first high one, got %d", second.SortOrder)
	}
}

func TestUpdateTask(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	task, err := h.tasks.CreateTask(ctx, "u1", TaskInput{Title: "draft", Memo: "memo"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	title, priority := "final", "h"
	updated, err := h.tasks.UpdateTask(ctx, "u1", task.ID, TaskPatch{Title: &title, Priority: &priority, ClearCategory: true})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if updated.Title != "final" || updated.Priority != model.PriorityHigh || updated.CategoryID != nil || updated.Memo != "memo" {
		t.Errorf("Unexpected update result: %+v", updated)
	}

	empty := " "
	if _, err := h.tasks.UpdateTask(ctx, "u1", task.ID, TaskPatch{Title: &empty}); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("Expected ErrEmptyTitle, got %v", err)
	}
	if _, err := h.tasks.UpdateTask(ctx, "u1", task.ID, TaskPatch{}); !errors.Is(err, ErrEmptyPatch) {
		t.Errorf("Expected ErrEmptyPatch, got %v", err)
	}
	if _, err := h.tasks.UpdateTask(ctx, "u2", task.ID, TaskPatch{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for another user, got %v", err)
	}
}

func TestToggleMoveDelete(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	task, err := h.tasks.CreateTask(ctx, "u1", TaskInput{Title: "walk"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	toggled, err := h.tasks.ToggleComplete(ctx, "u1", task.ID)
	if err != nil {
		t.Fatalf("ToggleComplete failed: %v", err)
	}
	if !toggled.IsCompleted {
		t.Error("Expected task to be completed")
	}
	toggled, err = h.tasks.ToggleComplete(ctx, "u1", task.ID)
	if err != nil {
		t.Fatalf("ToggleComplete failed: %v", err)
	}
	if toggled.IsCompleted {
		t.Error("Expected task to be incomplete again")
	}

	moved, err := h.tasks.MoveToTomorrow(ctx, "u1", task.ID)
	if err != nil {
		t.Fatalf("MoveToTomorrow failed: %v", err)
	}
	if moved.TaskDate != h.today().AddDays(1) {
		t.Errorf("Expected %s, got %s", h.today().AddDays(1), moved.TaskDate)
	}

	if err := h.tasks.DeleteTask(ctx, "u1", task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if _, err := h.tasks.GetTask(ctx, "u1", task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := h.tasks.DeleteTask(ctx, "u1", task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSearchTasks(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	h.seedTask(t, model.Task{Title: "Call Mom", TaskDate: h.today()})
	h.seedTask(t, model.Task{Title: "Groceries", Memo: "call shop first", TaskDate: h.today().AddDays(-3), IsCompleted: true})
	h.seedTask(t, model.Task{Title: "Call Bob", TaskDate: h.today(), UserID: "u2"})

	found, err := h.tasks.Search(ctx, "u1", model.TaskFilter{Query: "CALL"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if want := []string{"Call Mom", "Groceries"}; !equalStrings(titles(found), want) {
		t.Errorf("Expected %v, got %v", want, titles(found))
	}

	found, err = h.tasks.Search(ctx, "u1", model.TaskFilter{Query: "call", Status: model.StatusIncomplete})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if want := []string{"Call Mom"}; !equalStrings(titles(found), want) {
		t.Errorf("Expected %v, got %v", want, titles(found))
	}

	if _, err := h.tasks.Search(ctx, "u1", model.TaskFilter{Status: "later"}); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for unknown status, got %v", err)
	}
}
