package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"routine-planner/internal/auth"
	"routine-planner/internal/config"
	"routine-planner/internal/model"
	"routine-planner/internal/ordering"
	"routine-planner/internal/service"
)

func newTestApp(t *testing.T, secret string) *app {
	t.Helper()
	cfg := config.Config{
		DatabaseURL:    ":memory:",
		JWTSecret:      secret,
		MonthOverflow:  string(model.OverflowClamp),
		ReorderFailure: "resync",
		Location:       time.UTC,
		Policy:         ordering.DefaultPolicy,
	}
	a, err := newApp(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestRunMaterialize(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a := newTestApp(t, "")

	user, err := a.profiles.FromEmail(ctx, "ann@example.com")
	if err != nil {
		t.Fatalf("FromEmail failed: %v", err)
	}
	if _, err := a.routines.Create(ctx, user.ID, service.RoutineInput{Title: "Зарядка", Frequency: model.FrequencyDaily}); err != nil {
		t.Fatalf("Create routine failed: %v", err)
	}

	var out bytes.Buffer
	if err := runMaterialize(ctx, a, &out, "", "2024-06-03"); err != nil {
		t.Fatalf("runMaterialize failed: %v", err)
	}
	if !strings.Contains(out.String(), "created 1 routine task(s) for 2024-06-03") {
		t.Errorf("Expected one created task, got %q", out.String())
	}

	out.Reset()
	if err := runMaterialize(ctx, a, &out, user.ID, "2024-06-03"); err != nil {
		t.Fatalf("runMaterialize failed: %v", err)
	}
	if !strings.Contains(out.String(), "created 0 routine task(s)") {
		t.Errorf("Expected second run to create nothing, got %q", out.String())
	}

	if err := runMaterialize(ctx, a, &out, "", "03.06.2024"); err == nil {
		t.Error("Expected error for malformed date")
	}
}

func TestRunCarryOver(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a := newTestApp(t, "")

	user, err := a.profiles.FromEmail(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("FromEmail failed: %v", err)
	}
	today := a.days.Today()
	if _, err := a.tasks.CreateTask(ctx, user.ID, service.TaskInput{Title: "Старое", Date: today.AddDays(-2)}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	var out bytes.Buffer
	if err := runCarryOver(ctx, a, &out, user.ID, today.AddDays(-1).String()); err != nil {
		t.Fatalf("runCarryOver failed: %v", err)
	}
	if !strings.Contains(out.String(), "nothing to carry over") {
		t.Errorf("Expected past date to be refused, got %q", out.String())
	}

	out.Reset()
	if err := runCarryOver(ctx, a, &out, user.ID, ""); err != nil {
		t.Fatalf("runCarryOver failed: %v", err)
	}
	if !strings.Contains(out.String(), "moved 1 task(s)") {
		t.Errorf("Expected one moved task, got %q", out.String())
	}

	tasks, err := a.tasks.ListByDate(ctx, user.ID, today)
	if err != nil {
		t.Fatalf("ListByDate failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Старое" {
		t.Errorf("Expected the stale task on today, got %+v", tasks)
	}
}

func TestRunToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a := newTestApp(t, "cli-secret")

	var out bytes.Buffer
	if err := runToken(ctx, a, &out, "Ann@Example.com"); err != nil {
		t.Fatalf("runToken failed: %v", err)
	}
	userID, err := auth.ParseJWT(strings.TrimSpace(out.String()), "cli-secret")
	if err != nil {
		t.Fatalf("ParseJWT failed: %v", err)
	}
	user, err := a.profiles.FromEmail(ctx, "ann@example.com")
	if err != nil {
		t.Fatalf("FromEmail failed: %v", err)
	}
	if userID != user.ID {
		t.Errorf("Expected token for %s, got %s", user.ID, userID)
	}
}

func TestRunTokenNeedsSecret(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, "")

	var out bytes.Buffer
	if err := runToken(context.Background(), a, &out, "ann@example.com"); err == nil {
		t.Error("Expected error without a JWT secret")
	}
}
