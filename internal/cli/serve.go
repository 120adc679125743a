package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"routine-planner/internal/bot"
	"routine-planner/internal/httpserver"
	"routine-planner/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot, the HTTP API and the scheduled jobs",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.TelegramToken == "" && a.cfg.HTTPAddr == "" {
		return errors.New("nothing to serve: set TELEGRAM_TOKEN and/or HTTP_ADDR")
	}

	scheduler := service.NewSchedulerService(a.cfg.Location, a.logger.Named("scheduler"))
	if err := scheduler.ScheduleMaterialize(a.routines, a.cfg.MaterializeAt); err != nil {
		return fmt.Errorf("schedule materialize: %w", err)
	}

	var server *httpserver.Server
	if a.cfg.HTTPAddr != "" {
		sqlDB, err := a.db.DB()
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		h := httpserver.NewHandler(a.days, a.tasks, a.reorder, a.routines, a.categories, a.wishes, a.profiles, a.logger.Named("http"))
		router := httpserver.NewRouter(h, a.cfg.JWTSecret, sqlDB, a.logger.Named("http"))
		server = httpserver.NewServer(a.cfg.HTTPAddr, router, a.logger.Named("http"))
		server.Start()
	}

	var telegramBot *bot.Bot
	if a.cfg.TelegramToken != "" {
		telegramBot, err = bot.New(a.cfg.TelegramToken, bot.Services{
			Days:       a.days,
			Tasks:      a.tasks,
			Reorder:    a.reorder,
			Routines:   a.routines,
			Categories: a.categories,
			Wishes:     a.wishes,
			Profiles:   a.profiles,
			Reminders:  a.reminders,
		}, a.cfg.Location, a.logger.Named("bot"))
		if err != nil {
			return fmt.Errorf("bot: %w", err)
		}
		if err := scheduler.ScheduleReminders(a.reminders, telegramBot); err != nil {
			return fmt.Errorf("schedule reminders: %w", err)
		}
	}

	scheduler.Start()
	defer scheduler.Stop()

	a.logger.Info("planner started",
		zap.Bool("bot", telegramBot != nil),
		zap.String("http_addr", a.cfg.HTTPAddr),
		zap.String("timezone", a.cfg.Location.String()),
	)

	if telegramBot != nil {
		if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("bot stopped with error", zap.Error(err))
		}
	} else {
		<-ctx.Done()
	}

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http shutdown", zap.Error(err))
		}
	}
	a.logger.Info("shutdown complete")
	return nil
}
