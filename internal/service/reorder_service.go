package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"routine-planner/internal/metrics"
	"routine-planner/internal/model"
	"routine-planner/internal/ordering"
)

// ReorderService persists a manual order of one day's tasks.
type ReorderService struct {
	tasks  TaskStore
	policy ordering.Policy
	resync bool
	logger *zap.Logger
}

// NewReorderService builds the committer. With resync the first failed write
// stops the commit and the day is reloaded from the store; otherwise every
// failure is logged and the remaining writes still happen.
func NewReorderService(tasks TaskStore, policy ordering.Policy, resync bool, logger *zap.Logger) *ReorderService {
	return &ReorderService{
		tasks:  tasks,
		policy: policy.WithTiebreak(ordering.TiebreakPosition),
		resync: resync,
		logger: logger,
	}
}

// Commit gives each listed task a position equal to its index in orderedIDs
// and returns the day's tasks as they should now be displayed. orderedIDs must
// list every task of the user on that date exactly once.
func (s *ReorderService) Commit(ctx context.Context, userID string, date model.Date, orderedIDs []string) ([]model.Task, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if !date.Valid() {
		return nil, ErrInvalidDate
	}
	day, err := s.tasks.ListByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(day))
	for i := range day {
		index[day[i].ID] = i
	}
	seen := make(map[string]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, ok := index[id]; !ok {
			return nil, fmt.Errorf("%w: task %s is not on %s", ErrInvalidOrder, id, date)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: task %s listed twice", ErrInvalidOrder, id)
		}
		seen[id] = struct{}{}
	}
	if len(orderedIDs) != len(day) {
		return nil, fmt.Errorf("%w: got %d of %d tasks on %s", ErrInvalidOrder, len(orderedIDs), len(day), date)
	}

	// optimistic local state
	local := make([]model.Task, len(day))
	copy(local, day)
	for pos, id := range orderedIDs {
		local[index[id]].SortOrder = pos
	}

	var errs []error
	for pos, id := range orderedIDs {
		if err := s.tasks.UpdateSortOrder(ctx, userID, id, pos); err != nil {
			metrics.IncrementReorderFailure()
			if s.resync {
				s.logger.Warn("reorder aborted, reloading day",
					zap.String("user_id", userID),
					zap.String("task_id", id),
					zap.Error(err),
				)
				fresh, ferr := s.tasks.ListByDate(ctx, userID, date)
				if ferr != nil {
					return nil, errors.Join(err, ferr)
				}
				return ordering.Sort(fresh, s.policy), err
			}
			s.logger.Warn("reorder write failed",
				zap.String("user_id", userID),
				zap.String("task_id", id),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}

	s.logger.Debug("order committed",
		zap.String("user_id", userID),
		zap.String("date", date.String()),
		zap.Int("count", len(orderedIDs)),
	)
	return ordering.Sort(local, s.policy), errors.Join(errs...)
}
