package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"

	"routine-planner/internal/model"
	"routine-planner/internal/ordering"
)

// Notifier delivers a formatted summary to a user.
type Notifier interface {
	Notify(ctx context.Context, user model.User, text string) error
}

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	users      UserStore
	tasks      TaskStore
	categories CategoryStore
	carry      *CarryOverService
	routines   *RoutineService
	policy     ordering.Policy
	loc        *time.Location
	logger     *zap.Logger
}

func NewReminderService(users UserStore, tasks TaskStore, categories CategoryStore, carry *CarryOverService, routines *RoutineService, policy ordering.Policy, loc *time.Location, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		users:      users,
		tasks:      tasks,
		categories: categories,
		carry:      carry,
		routines:   routines,
		policy:     policy,
		loc:        loc,
		logger:     logger,
	}
}

// SendDue sends today's summary to every user whose notification time is the
// current minute. It returns how many summaries were sent.
func (s *ReminderService) SendDue(ctx context.Context, now time.Time, notifier Notifier) (int, error) {
	local := now.In(s.loc)
	users, err := s.users.ListByNotificationTime(ctx, local.Format("15:04"))
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, user := range users {
		text, err := s.DailySummary(ctx, user, local)
		if err != nil {
			s.logger.Warn("build summary", zap.String("user_id", user.ID), zap.Error(err))
			continue
		}
		if err := notifier.Notify(ctx, user, text); err != nil {
			s.logger.Warn("send summary", zap.String("user_id", user.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

// DailySummary prepares today's tasks for the user in display order.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	today := model.Today(now, s.loc)
	if _, err := s.carry.RunOnce(ctx, user.ID, today); err != nil {
		s.logger.Warn("carry-over failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	if _, err := s.routines.Materialize(ctx, user.ID, today); err != nil {
		s.logger.Warn("materialize failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	tasks, err := s.tasks.ListByDate(ctx, user.ID, today)
	if err != nil {
		return "", err
	}
	categories, err := s.categories.ListByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}
	catNames := make(map[string]string, len(categories))
	for _, cat := range categories {
		catNames[cat.ID] = cat.Name
	}

	var pending, done []model.Task
	for _, task := range ordering.Sort(tasks, s.policy) {
		if task.IsCompleted {
			done = append(done, task)
		} else {
			pending = append(pending, task)
		}
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>План на день</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", today.Time(s.loc).Format("02.01.2006")))

	builder.WriteString("🔥 <b>Задачи</b>\n")
	if len(pending) == 0 {
		builder.WriteString("— на сегодня задач нет\n")
	} else {
		for _, task := range pending {
			builder.WriteString(formatTask(task, catNames))
		}
	}
	if len(done) > 0 {
		builder.WriteString(fmt.Sprintf("\n✅ Выполнено: %d из %d\n", len(done), len(tasks)))
	}

	return strings.TrimSpace(builder.String()), nil
}

// PriorityIcon marks a priority in chat messages.
func PriorityIcon(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "🔴"
	case model.PriorityMedium:
		return "🟡"
	case model.PriorityLow:
		return "🟢"
	default:
		return "⚪"
	}
}

func formatTask(task model.Task, catNames map[string]string) string {
	var sb strings.Builder

	icon := PriorityIcon(task.Priority)
	if task.FromRoutine() {
		icon = "♻️" + icon
	}
	title := html.EscapeString(strings.TrimSpace(task.Title))
	sb.WriteString(fmt.Sprintf("%s %s", icon, title))

	if task.CategoryID != nil {
		if name, ok := catNames[*task.CategoryID]; ok {
			trimmed := strings.TrimSpace(name)
			if trimmed != "" {
				sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(trimmed)))
			}
		}
	}

	if memo := strings.TrimSpace(task.Memo); memo != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(memo)))
	}

	sb.WriteByte('\n')
	return sb.String()
}
