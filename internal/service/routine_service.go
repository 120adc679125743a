package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"routine-planner/internal/metrics"
	"routine-planner/internal/model"
)

// RoutineInput carries the editable fields of a routine.
type RoutineInput struct {
	Title      string
	Memo       string
	Priority   string
	CategoryID *string
	Frequency  model.Frequency
	Weekdays   model.WeekdaySet
	DayOfMonth int
	// Time is "HH:MM"; empty means the routine has no fixed time.
	Time string
}

// RoutineService manages routines and materializes them into tasks.
type RoutineService struct {
	routines   RoutineStore
	tasks      TaskStore
	categories CategoryStore
	users      UserStore
	overflow   model.MonthOverflow
	loc        *time.Location
	now        Clock
	logger     *zap.Logger
}

func NewRoutineService(routines RoutineStore, tasks TaskStore, categories CategoryStore, users UserStore, overflow model.MonthOverflow, loc *time.Location, logger *zap.Logger) *RoutineService {
	if overflow == "" {
		overflow = model.OverflowClamp
	}
	return &RoutineService{
		routines:   routines,
		tasks:      tasks,
		categories: categories,
		users:      users,
		overflow:   overflow,
		loc:        loc,
		now:        time.Now,
		logger:     logger,
	}
}

func (s *RoutineService) SetClock(now Clock) {
	s.now = now
}

// Materialize makes sure every active routine due on date has exactly one
// task on that date and returns how many tasks it created.
func (s *RoutineService) Materialize(ctx context.Context, userID string, date model.Date) (int, error) {
	if userID == "" {
		return 0, nil
	}
	if !date.Valid() {
		return 0, ErrInvalidDate
	}
	routines, err := s.routines.ListActive(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(routines) == 0 {
		return 0, nil
	}
	existing, err := s.tasks.ListByDate(ctx, userID, date)
	if err != nil {
		return 0, err
	}

	present := make(map[string]struct{}, len(existing))
	next := 0
	for _, t := range existing {
		if t.RoutineID != nil {
			present[*t.RoutineID] = struct{}{}
		}
		if t.SortOrder >= next {
			next = t.SortOrder + 1
		}
	}

	created := 0
	for i := range routines {
		r := &routines[i]
		if !r.DueOn(date, s.overflow) {
			continue
		}
		if _, ok := present[r.ID]; ok {
			continue
		}
		routineID := r.ID
		task := model.Task{
			UserID:     userID,
			CategoryID: r.CategoryID,
			RoutineID:  &routineID,
			Title:      r.Title,
			Memo:       r.Memo,
			Priority:   r.Priority,
			TaskDate:   date,
			SortOrder:  next,
		}
		if err := s.tasks.Create(ctx, &task); err != nil {
			if errors.Is(err, ErrDuplicate) {
				// another request materialized it first
				present[r.ID] = struct{}{}
				continue
			}
			return created, err
		}
		present[r.ID] = struct{}{}
		next++
		created++
		metrics.IncrementTaskGeneration("routine")
	}

	if created > 0 {
		s.logger.Info("routines materialized",
			zap.String("user_id", userID),
			zap.String("date", date.String()),
			zap.Int("count", created),
		)
	}
	return created, nil
}

// MaterializeAll runs Materialize for every known user. A failing user is
// logged and skipped.
func (s *RoutineService) MaterializeAll(ctx context.Context, date model.Date) (int, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, u := range users {
		n, err := s.Materialize(ctx, u.ID, date)
		if err != nil {
			s.logger.Warn("materialize failed", zap.String("user_id", u.ID), zap.Error(err))
			continue
		}
		total += n
	}
	return total, nil
}

// Today is the current day in the configured location.
func (s *RoutineService) Today() model.Date {
	return model.Today(s.now(), s.loc)
}

func (s *RoutineService) build(ctx context.Context, userID string, in RoutineInput, r *model.Routine) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return ErrEmptyTitle
	}
	priority, err := model.ParsePriority(in.Priority)
	if err != nil {
		return ErrInvalidPriority
	}
	if in.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, userID, *in.CategoryID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrUnknownCategory
			}
			return err
		}
	}

	r.Title = title
	r.Memo = strings.TrimSpace(in.Memo)
	r.Priority = priority
	r.CategoryID = in.CategoryID
	r.Frequency = in.Frequency
	r.Weekdays = 0
	r.DayOfMonth = 0
	switch in.Frequency {
	case model.FrequencyWeekly:
		r.Weekdays = in.Weekdays
	case model.FrequencyMonthly:
		r.DayOfMonth = in.DayOfMonth
	}
	r.Time = strings.TrimSpace(in.Time)
	r.HasTime = r.Time != ""

	if err := r.ValidateRecurrence(); err != nil {
		if errors.Is(err, model.ErrRoutineTime) {
			return ErrInvalidTime
		}
		return invalidRecurrence(err)
	}
	return nil
}

// Create validates and stores a new active routine.
func (s *RoutineService) Create(ctx context.Context, userID string, in RoutineInput) (*model.Routine, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	routine := model.Routine{UserID: userID, IsActive: true}
	if err := s.build(ctx, userID, in, &routine); err != nil {
		return nil, err
	}
	if err := s.routines.Create(ctx, &routine); err != nil {
		return nil, err
	}
	s.logger.Info("routine created",
		zap.String("user_id", userID),
		zap.String("routine_id", routine.ID),
		zap.String("frequency", string(routine.Frequency)),
	)
	return &routine, nil
}

// Update replaces the routine's fields. Tasks already generated keep their
// copied values.
func (s *RoutineService) Update(ctx context.Context, userID, routineID string, in RoutineInput) (*model.Routine, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	routine, err := s.routines.FindByID(ctx, userID, routineID)
	if err != nil {
		return nil, err
	}
	if err := s.build(ctx, userID, in, routine); err != nil {
		return nil, err
	}
	if err := s.routines.Save(ctx, routine); err != nil {
		return nil, err
	}
	return routine, nil
}

// SetActive turns materialization on or off without touching existing tasks.
func (s *RoutineService) SetActive(ctx context.Context, userID, routineID string, active bool) (*model.Routine, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	routine, err := s.routines.FindByID(ctx, userID, routineID)
	if err != nil {
		return nil, err
	}
	routine.IsActive = active
	if err := s.routines.Save(ctx, routine); err != nil {
		return nil, err
	}
	s.logger.Info("routine toggled", zap.String("routine_id", routineID), zap.Bool("active", active))
	return routine, nil
}

func (s *RoutineService) Get(ctx context.Context, userID, routineID string) (*model.Routine, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.routines.FindByID(ctx, userID, routineID)
}

func (s *RoutineService) List(ctx context.Context, userID string) ([]model.Routine, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.routines.ListByUser(ctx, userID)
}

func (s *RoutineService) Delete(ctx context.Context, userID, routineID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if err := s.routines.Delete(ctx, userID, routineID); err != nil {
		return err
	}
	s.logger.Info("routine deleted", zap.String("user_id", userID), zap.String("routine_id", routineID))
	return nil
}
