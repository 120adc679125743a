package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"routine-planner/internal/model"
)

func TestSessionKey(t *testing.T) {
	t.Parallel()

	if got := sessionKey("u1", "2024-06-03"); got != "carryover:u1:2024-06-03" {
		t.Errorf("Expected carryover:u1:2024-06-03, got %s", got)
	}
}

func TestMemorySessionsOncePerDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemorySessions()
	day := model.Date("2024-06-03")

	first, _ := s.Acquire(ctx, "u1", day)
	second, _ := s.Acquire(ctx, "u1", day)
	other, _ := s.Acquire(ctx, "u2", day)
	next, _ := s.Acquire(ctx, "u1", day.AddDays(1))
	if !first || second || !other || !next {
		t.Errorf("Expected true,false,true,true, got %v,%v,%v,%v", first, second, other, next)
	}

	if err := s.Release(ctx, "u1", day.AddDays(1)); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	again, _ := s.Acquire(ctx, "u1", day.AddDays(1))
	if !again {
		t.Error("Expected acquire after release to succeed")
	}
}

func TestRedisSessionsFailOpen(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })
	s := NewRedisSessions(client, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ok, err := s.Acquire(ctx, "u1", "2024-06-03")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !ok {
		t.Error("Expected carry-over to be allowed when redis is down")
	}
	if err := s.Release(ctx, "u1", "2024-06-03"); err == nil {
		t.Error("Expected release to report the redis error")
	}
}
