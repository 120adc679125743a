package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"routine-planner/internal/model"
	"routine-planner/internal/ordering"
	"routine-planner/internal/repository"
)

// monday 2024-06-03, 09:00 UTC
var testNow = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

type harness struct {
	taskRepo     *repository.TaskRepository
	routineRepo  *repository.RoutineRepository
	categoryRepo *repository.CategoryRepository
	wishRepo     *repository.WishRepository
	userRepo     *repository.UserRepository

	tasks      *TaskService
	routines   *RoutineService
	carry      *CarryOverService
	categories *CategoryService
	wishes     *WishService
	profiles   *ProfileService
	view       *DayView
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	policy   ordering.Policy
	overflow model.MonthOverflow
	taskDB   func(*repository.TaskRepository) TaskStore
}

func withPolicy(p ordering.Policy) harnessOption {
	return func(c *harnessConfig) { c.policy = p }
}

func withOverflow(o model.MonthOverflow) harnessOption {
	return func(c *harnessConfig) { c.overflow = o }
}

func withTaskStore(wrap func(*repository.TaskRepository) TaskStore) harnessOption {
	return func(c *harnessConfig) { c.taskDB = wrap }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	cfg := harnessConfig{
		policy:   ordering.DefaultPolicy,
		overflow: model.OverflowClamp,
		taskDB:   func(r *repository.TaskRepository) TaskStore { return r },
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := repository.NewDB(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := zap.NewNop()
	clock := func() time.Time { return testNow }
	h := &harness{
		taskRepo:     repository.NewTaskRepository(db),
		routineRepo:  repository.NewRoutineRepository(db),
		categoryRepo: repository.NewCategoryRepository(db),
		wishRepo:     repository.NewWishRepository(db),
		userRepo:     repository.NewUserRepository(db),
	}
	taskStore := cfg.taskDB(h.taskRepo)

	h.tasks = NewTaskService(taskStore, h.categoryRepo, cfg.policy, time.UTC, log)
	h.tasks.SetClock(clock)
	h.routines = NewRoutineService(h.routineRepo, taskStore, h.categoryRepo, h.userRepo, cfg.overflow, time.UTC, log)
	h.routines.SetClock(clock)
	h.carry = NewCarryOverService(taskStore, NewMemorySessions(), time.UTC, log)
	h.carry.SetClock(clock)
	h.categories = NewCategoryService(h.categoryRepo, log)
	h.wishes = NewWishService(h.wishRepo, h.tasks, log)
	h.profiles = NewProfileService(h.userRepo, log)
	h.view = NewDayView(h.carry, h.routines, taskStore, cfg.policy, time.UTC, log)
	h.view.SetClock(clock)
	return h
}

func (h *harness) today() model.Date {
	return model.DateOf(testNow)
}

func (h *harness) seedTask(t *testing.T, task model.Task) model.Task {
	t.Helper()
	if task.UserID == "" {
		task.UserID = "u1"
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if err := h.taskRepo.Create(context.Background(), &task); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return task
}

func (h *harness) seedRoutine(t *testing.T, r model.Routine) model.Routine {
	t.Helper()
	if r.UserID == "" {
		r.UserID = "u1"
	}
	if r.Priority == "" {
		r.Priority = model.PriorityMedium
	}
	r.IsActive = true
	if err := h.routineRepo.Create(context.Background(), &r); err != nil {
		t.Fatalf("Create routine failed: %v", err)
	}
	return r
}

func (h *harness) day(t *testing.T, userID string, date model.Date) []model.Task {
	t.Helper()
	tasks, err := h.taskRepo.ListByDate(context.Background(), userID, date)
	if err != nil {
		t.Fatalf("ListByDate failed: %v", err)
	}
	return tasks
}

func strPtr(s string) *string { return &s }

func titles(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Title
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// bothPolicies runs fn once per priority band mode.
func bothPolicies(t *testing.T, fn func(t *testing.T, p ordering.Policy)) {
	for _, p := range []ordering.Policy{
		{Bands: ordering.BandsRoutine, Tiebreak: ordering.TiebreakPosition},
		{Bands: ordering.BandsFlat, Tiebreak: ordering.TiebreakPosition},
		{Bands: ordering.BandsRoutine, Tiebreak: ordering.TiebreakCreatedAt},
		{Bands: ordering.BandsFlat, Tiebreak: ordering.TiebreakCreatedAt},
	} {
		p := p
		t.Run(p.Bands.String()+"/"+p.Tiebreak.String(), func(t *testing.T) {
			t.Parallel()
			fn(t, p)
		})
	}
}
