package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// jobTimeout bounds one run of a scheduled job.
const jobTimeout = 50 * time.Second

// SchedulerService wraps cron-based jobs.
type SchedulerService struct {
	cron   *cron.Cron
	logger *zap.Logger
}

func NewSchedulerService(loc *time.Location, logger *zap.Logger) *SchedulerService {
	return &SchedulerService{
		cron:   cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		logger: logger,
	}
}

// ScheduleDaily registers a daily job at the given HH:MM time string.
func (s *SchedulerService) ScheduleDaily(timeStr string, job func()) (cron.EntryID, error) {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

// ScheduleEveryMinute registers a job at second zero of every minute.
func (s *SchedulerService) ScheduleEveryMinute(job func()) (cron.EntryID, error) {
	return s.cron.AddFunc("0 * * * * *", job)
}

// ScheduleReminders sends due daily summaries every minute.
func (s *SchedulerService) ScheduleReminders(reminders *ReminderService, notifier Notifier) error {
	_, err := s.ScheduleEveryMinute(func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		sent, err := reminders.SendDue(ctx, time.Now(), notifier)
		if err != nil {
			s.logger.Error("reminder job failed", zap.Error(err))
			return
		}
		if sent > 0 {
			s.logger.Info("reminders sent", zap.Int("count", sent))
		}
	})
	return err
}

// ScheduleMaterialize generates every user's routine tasks for the new day.
func (s *SchedulerService) ScheduleMaterialize(routines *RoutineService, at string) error {
	_, err := s.ScheduleDaily(at, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*jobTimeout)
		defer cancel()
		date := routines.Today()
		n, err := routines.MaterializeAll(ctx, date)
		if err != nil {
			s.logger.Error("nightly materialize failed", zap.Error(err))
			return
		}
		s.logger.Info("nightly materialize done", zap.String("date", date.String()), zap.Int("created", n))
	})
	return err
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
