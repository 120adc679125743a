package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"routine-planner/internal/metrics"
	"routine-planner/internal/model"
)

// CarryOverService moves stale incomplete tasks to today.
type CarryOverService struct {
	tasks    TaskStore
	sessions SessionTracker
	loc      *time.Location
	now      Clock
	logger   *zap.Logger
}

func NewCarryOverService(tasks TaskStore, sessions SessionTracker, loc *time.Location, logger *zap.Logger) *CarryOverService {
	if sessions == nil {
		sessions = NewMemorySessions()
	}
	return &CarryOverService{
		tasks:    tasks,
		sessions: sessions,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *CarryOverService) SetClock(now Clock) {
	s.now = now
}

// Run reassigns every incomplete, non-routine task dated before today to
// today. It does nothing unless displayed is today.
func (s *CarryOverService) Run(ctx context.Context, userID string, displayed model.Date) (int, error) {
	if userID == "" {
		return 0, nil
	}
	now := s.now()
	today := model.Today(now, s.loc)
	if displayed != today {
		return 0, nil
	}

	moved, err := s.tasks.ReassignStale(ctx, userID, today, now)
	if err != nil {
		return 0, err
	}
	if len(moved) > 0 {
		metrics.AddCarriedOver(len(moved))
		s.logger.Info("tasks carried over",
			zap.String("user_id", userID),
			zap.String("date", today.String()),
			zap.Int("count", len(moved)),
		)
	}
	return len(moved), nil
}

// RunOnce is Run behind the per-day session gate.
func (s *CarryOverService) RunOnce(ctx context.Context, userID string, displayed model.Date) (int, error) {
	if userID == "" {
		return 0, nil
	}
	today := model.Today(s.now(), s.loc)
	if displayed != today {
		return 0, nil
	}
	first, err := s.sessions.Acquire(ctx, userID, today)
	if err != nil {
		return 0, err
	}
	if !first {
		return 0, nil
	}

	n, err := s.Run(ctx, userID, displayed)
	if err != nil {
		if relErr := s.sessions.Release(ctx, userID, today); relErr != nil {
			s.logger.Warn("release session mark", zap.String("user_id", userID), zap.Error(relErr))
		}
		return 0, err
	}
	return n, nil
}
