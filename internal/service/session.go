package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"routine-planner/internal/model"
)

// SessionTracker remembers which users already carried over on a given day.
type SessionTracker interface {
	// Acquire marks (user, day) and reports whether this call was first.
	Acquire(ctx context.Context, userID string, day model.Date) (bool, error)
	// Release forgets the mark so the next open tries again.
	Release(ctx context.Context, userID string, day model.Date) error
}

// MemorySessions keeps marks in process memory.
type MemorySessions struct {
	mu   sync.Mutex
	seen map[string]model.Date
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{seen: make(map[string]model.Date)}
}

func (m *MemorySessions) Acquire(_ context.Context, userID string, day model.Date) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[userID] == day {
		return false, nil
	}
	m.seen[userID] = day
	return true, nil
}

func (m *MemorySessions) Release(_ context.Context, userID string, day model.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[userID] == day {
		delete(m.seen, userID)
	}
	return nil
}

const sessionTTL = 36 * time.Hour

// RedisSessions shares marks between processes with SETNX.
type RedisSessions struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisSessions(client *redis.Client, logger *zap.Logger) *RedisSessions {
	return &RedisSessions{client: client, logger: logger}
}

func sessionKey(userID string, day model.Date) string {
	return fmt.Sprintf("carryover:%s:%s", userID, day)
}

// Acquire lets the run through when redis is unavailable; carry-over is
// idempotent, so a repeated run only costs a query.
func (r *RedisSessions) Acquire(ctx context.Context, userID string, day model.Date) (bool, error) {
	ok, err := r.client.SetNX(ctx, sessionKey(userID, day), "1", sessionTTL).Result()
	if err != nil {
		r.logger.Warn("session mark failed, allowing carry-over",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return true, nil
	}
	return ok, nil
}

func (r *RedisSessions) Release(ctx context.Context, userID string, day model.Date) error {
	if err := r.client.Del(ctx, sessionKey(userID, day)).Err(); err != nil {
		return fmt.Errorf("release session mark: %w", err)
	}
	return nil
}
