package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"routine-planner/internal/metrics"
	"routine-planner/internal/model"
	"routine-planner/internal/ordering"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title      string
	Memo       string
	Priority   string
	CategoryID *string
	Date       model.Date
}

// TaskPatch lists the fields to change; nil means unchanged.
type TaskPatch struct {
	Title         *string
	Memo          *string
	Priority      *string
	CategoryID    *string
	ClearCategory bool
	Date          *model.Date
	IsCompleted   *bool
}

// TaskService wraps task-related business logic.
type TaskService struct {
	tasks      TaskStore
	categories CategoryStore
	policy     ordering.Policy
	loc        *time.Location
	now        Clock
	logger     *zap.Logger
}

func NewTaskService(tasks TaskStore, categories CategoryStore, policy ordering.Policy, loc *time.Location, logger *zap.Logger) *TaskService {
	return &TaskService{
		tasks:      tasks,
		categories: categories,
		policy:     policy,
		loc:        loc,
		now:        time.Now,
		logger:     logger,
	}
}

// SetClock replaces the time source.
func (s *TaskService) SetClock(now Clock) {
	s.now = now
}

// Today is the current calendar day in the configured location.
func (s *TaskService) Today() model.Date {
	return model.Today(s.now(), s.loc)
}

func (s *TaskService) CreateTask(ctx context.Context, userID string, input TaskInput) (*model.Task, error) {
	return s.create(ctx, userID, input, "manual")
}

func (s *TaskService) create(ctx context.Context, userID string, input TaskInput, source string) (*model.Task, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	priority, err := model.ParsePriority(input.Priority)
	if err != nil {
		return nil, ErrInvalidPriority
	}
	date := input.Date
	if date == "" {
		date = s.Today()
	}
	if !date.Valid() {
		return nil, ErrInvalidDate
	}
	categoryID := input.CategoryID
	if categoryID == nil {
		def, err := s.categories.EnsureDefault(ctx, userID)
		if err != nil {
			return nil, err
		}
		categoryID = &def.ID
	} else if err := s.checkCategory(ctx, userID, categoryID); err != nil {
		return nil, err
	}

	existing, err := s.tasks.ListByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	task := model.Task{
		UserID:     userID,
		CategoryID: categoryID,
		Title:      title,
		Memo:       strings.TrimSpace(input.Memo),
		Priority:   priority,
		TaskDate:   date,
		SortOrder:  nextPosition(existing, priority),
	}
	if err := s.tasks.Create(ctx, &task); err != nil {
		return nil, err
	}

	metrics.IncrementTaskGeneration(source)
	s.logger.Info("task created",
		zap.String("user_id", userID),
		zap.String("task_id", task.ID),
		zap.String("date", date.String()),
		zap.String("source", source),
	)
	return &task, nil
}

// nextPosition puts a new task after the others of its priority, or after
// everything when it is the first of its priority.
func nextPosition(existing []model.Task, priority model.Priority) int {
	maxSame, maxAll := -1, -1
	for _, t := range existing {
		if t.SortOrder > maxAll {
			maxAll = t.SortOrder
		}
		if t.Priority == priority && t.SortOrder > maxSame {
			maxSame = t.SortOrder
		}
	}
	if maxSame >= 0 {
		return maxSame + 1
	}
	return maxAll + 1
}

func (s *TaskService) checkCategory(ctx context.Context, userID string, categoryID *string) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categories.GetByID(ctx, userID, *categoryID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUnknownCategory
		}
		return err
	}
	return nil
}

func (s *TaskService) GetTask(ctx context.Context, userID, taskID string) (*model.Task, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.tasks.FindByID(ctx, userID, taskID)
}

// UpdateTask validates the patch and applies it as one partial update.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID string, patch TaskPatch) (*model.Task, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	fields := make(map[string]interface{})
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		fields["title"] = title
	}
	if patch.Memo != nil {
		fields["memo"] = strings.TrimSpace(*patch.Memo)
	}
	if patch.Priority != nil {
		priority, err := model.ParsePriority(*patch.Priority)
		if err != nil {
			return nil, ErrInvalidPriority
		}
		fields["priority"] = priority
	}
	switch {
	case patch.ClearCategory:
		fields["category_id"] = nil
	case patch.CategoryID != nil:
		if err := s.checkCategory(ctx, userID, patch.CategoryID); err != nil {
			return nil, err
		}
		fields["category_id"] = *patch.CategoryID
	}
	if patch.Date != nil {
		if !patch.Date.Valid() {
			return nil, ErrInvalidDate
		}
		fields["task_date"] = *patch.Date
	}
	if patch.IsCompleted != nil {
		fields["is_completed"] = *patch.IsCompleted
	}
	if len(fields) == 0 {
		return nil, ErrEmptyPatch
	}

	task, err := s.tasks.Update(ctx, userID, taskID, fields)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("task updated", zap.String("user_id", userID), zap.String("task_id", taskID), zap.Int("fields", len(fields)))
	return task, nil
}

// ToggleComplete flips the completion flag.
func (s *TaskService) ToggleComplete(ctx context.Context, userID, taskID string) (*model.Task, error) {
	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	done := !task.IsCompleted
	return s.UpdateTask(ctx, userID, taskID, TaskPatch{IsCompleted: &done})
}

// MoveToTomorrow moves the task to the day after its current date.
func (s *TaskService) MoveToTomorrow(ctx context.Context, userID, taskID string) (*model.Task, error) {
	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	next := task.TaskDate.AddDays(1)
	return s.UpdateTask(ctx, userID, taskID, TaskPatch{Date: &next})
}

// DeleteTask removes a task completely.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if err := s.tasks.Delete(ctx, userID, taskID); err != nil {
		return err
	}
	s.logger.Info("task deleted", zap.String("user_id", userID), zap.String("task_id", taskID))
	return nil
}

// ListByDate returns the day's tasks in display order.
func (s *TaskService) ListByDate(ctx context.Context, userID string, date model.Date) ([]model.Task, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	tasks, err := s.tasks.ListByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	return ordering.Sort(tasks, s.policy), nil
}

// Search runs a filtered search over all of the user's tasks.
func (s *TaskService) Search(ctx context.Context, userID string, filter model.TaskFilter) ([]model.Task, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	switch filter.Status {
	case "", model.StatusAll, model.StatusCompleted, model.StatusIncomplete:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, filter.Status)
	}
	return s.tasks.Search(ctx, userID, filter)
}
