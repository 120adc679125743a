package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"routine-planner/internal/model"
	"routine-planner/internal/ordering"
)

// Day is one date's tasks in display order.
type Day struct {
	Date    model.Date   `json:"date"`
	IsToday bool         `json:"is_today"`
	Tasks   []model.Task `json:"tasks"`
}

// DayView runs the open-a-date pipeline: carry-over (today only, once per
// session), materialization, fetch and sort.
type DayView struct {
	carry    *CarryOverService
	routines *RoutineService
	tasks    TaskStore
	policy   ordering.Policy
	loc      *time.Location
	now      Clock
	logger   *zap.Logger

	mu          sync.Mutex
	generations map[string]uint64
}

func NewDayView(carry *CarryOverService, routines *RoutineService, tasks TaskStore, policy ordering.Policy, loc *time.Location, logger *zap.Logger) *DayView {
	return &DayView{
		carry:       carry,
		routines:    routines,
		tasks:       tasks,
		policy:      policy,
		loc:         loc,
		now:         time.Now,
		logger:      logger,
		generations: make(map[string]uint64),
	}
}

func (v *DayView) SetClock(now Clock) {
	v.now = now
}

func (v *DayView) Today() model.Date {
	return model.Today(v.now(), v.loc)
}

// begin starts a new view for the user and invalidates any in flight.
func (v *DayView) begin(userID string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generations[userID]++
	return v.generations[userID]
}

func (v *DayView) current(userID string, gen uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.generations[userID] == gen
}

// Open loads date for the user. If the user opened another view before this
// one finished, ErrStaleView is returned and the result must be dropped.
func (v *DayView) Open(ctx context.Context, userID string, date model.Date) (*Day, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if !date.Valid() {
		return nil, ErrInvalidDate
	}
	gen := v.begin(userID)
	today := v.Today()

	if date == today {
		if _, err := v.carry.RunOnce(ctx, userID, date); err != nil {
			v.logger.Warn("carry-over failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	if _, err := v.routines.Materialize(ctx, userID, date); err != nil {
		v.logger.Warn("materialize failed",
			zap.String("user_id", userID),
			zap.String("date", date.String()),
			zap.Error(err),
		)
	}

	tasks, err := v.tasks.ListByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if !v.current(userID, gen) {
		return nil, ErrStaleView
	}
	return &Day{
		Date:    date,
		IsToday: date == today,
		Tasks:   ordering.Sort(tasks, v.policy),
	}, nil
}

// Week loads the Monday-based week containing date, materializing each day.
// Carry-over only runs from the day view.
func (v *DayView) Week(ctx context.Context, userID string, date model.Date) ([]Day, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if !date.Valid() {
		return nil, ErrInvalidDate
	}
	gen := v.begin(userID)
	today := v.Today()
	start := date.WeekStart()
	end := start.AddDays(6)

	for d := start; !end.Before(d); d = d.AddDays(1) {
		if _, err := v.routines.Materialize(ctx, userID, d); err != nil {
			v.logger.Warn("materialize failed",
				zap.String("user_id", userID),
				zap.String("date", d.String()),
				zap.Error(err),
			)
		}
	}

	tasks, err := v.tasks.ListRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	if !v.current(userID, gen) {
		return nil, ErrStaleView
	}

	byDate := make(map[model.Date][]model.Task, 7)
	for _, t := range tasks {
		byDate[t.TaskDate] = append(byDate[t.TaskDate], t)
	}
	week := make([]Day, 0, 7)
	for d := start; !end.Before(d); d = d.AddDays(1) {
		week = append(week, Day{
			Date:    d,
			IsToday: d == today,
			Tasks:   ordering.Sort(byDate[d], v.policy),
		})
	}
	return week, nil
}
