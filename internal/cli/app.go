package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"routine-planner/internal/config"
	"routine-planner/internal/repository"
	"routine-planner/internal/service"
)

// app holds the wired storage and services shared by every command.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	db     *gorm.DB
	redis  *redis.Client

	users *repository.UserRepository

	carry      *service.CarryOverService
	tasks      *service.TaskService
	routines   *service.RoutineService
	reorder    *service.ReorderService
	categories *service.CategoryService
	wishes     *service.WishService
	profiles   *service.ProfileService
	reminders  *service.ReminderService
	days       *service.DayView
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	db, err := repository.NewDB(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, db: db}

	var sessions service.SessionTracker = service.NewMemorySessions()
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := a.redis.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unavailable, carry-over marks will not be shared", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
		sessions = service.NewRedisSessions(a.redis, logger.Named("sessions"))
	}

	a.users = repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	routineRepo := repository.NewRoutineRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	wishRepo := repository.NewWishRepository(db)

	loc := cfg.Location
	a.carry = service.NewCarryOverService(taskRepo, sessions, loc, logger.Named("carryover"))
	a.tasks = service.NewTaskService(taskRepo, categoryRepo, cfg.Policy, loc, logger.Named("tasks"))
	a.routines = service.NewRoutineService(routineRepo, taskRepo, categoryRepo, a.users, cfg.Overflow(), loc, logger.Named("routines"))
	a.reorder = service.NewReorderService(taskRepo, cfg.Policy, cfg.ResyncOnReorderFailure(), logger.Named("reorder"))
	a.categories = service.NewCategoryService(categoryRepo, logger.Named("categories"))
	a.wishes = service.NewWishService(wishRepo, a.tasks, logger.Named("wishes"))
	a.profiles = service.NewProfileService(a.users, logger.Named("profiles"))
	a.reminders = service.NewReminderService(a.users, taskRepo, categoryRepo, a.carry, a.routines, cfg.Policy, loc, logger.Named("reminders"))
	a.days = service.NewDayView(a.carry, a.routines, taskRepo, cfg.Policy, loc, logger.Named("days"))

	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.logger.Warn("close db", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
