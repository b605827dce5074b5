package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"workout-reminder/internal/bot"
	"workout-reminder/internal/config"
	"workout-reminder/internal/repository"
	"workout-reminder/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		logger = logger.Level(level)
	}

	db, err := repository.NewDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("db")
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	taskRepo := repository.NewTaskRepository(db)

	client, err := bot.NewClient(cfg.Telegram.BotToken, cfg.Reminders.TimeoutMinutes, cfg.Reminders.SnoozeMinutes, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram client")
	}

	planner := service.NewPlanner(cfg.Rotation, cfg.Reminders.Times)
	lifecycle := service.NewLifecycleService(taskRepo, cfg.Catalog, client, cfg.Telegram.Users, cfg.TimeoutWindow(), cfg.SnoozeWindow(), logger)
	sweeper := service.NewSweeperService(taskRepo, logger)
	reports := service.NewReportService(taskRepo, planner)

	telegramBot := bot.New(client, lifecycle, reports, planner, &cfg, logger)

	scheduler := service.NewSchedulerService(cfg.Location)
	if err := registerTriggers(ctx, scheduler, &cfg, lifecycle, sweeper, telegramBot, logger); err != nil {
		logger.Fatal().Err(err).Msg("schedule triggers")
	}
	scheduler.Start()
	defer scheduler.Stop()

	logger.Info().Msg("workout reminder bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("bot stopped with error")
	}
	logger.Info().Msg("shutdown complete")
}

// registerTriggers wires the recurring jobs: one reminder dispatch per
// rotation occurrence, the minute timeout sweep and the weekly report.
func registerTriggers(ctx context.Context, scheduler *service.SchedulerService, cfg *config.Config, lifecycle *service.LifecycleService, sweeper *service.SweeperService, telegramBot *bot.Bot, logger zerolog.Logger) error {
	for day, times := range cfg.Rotation {
		for timeStr, slotID := range times {
			if _, err := scheduler.ScheduleWeekly(day, timeStr, func() {
				jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
				defer cancel()
				now := time.Now().In(cfg.Location)
				if err := lifecycle.DispatchDueReminders(jobCtx, timeStr, slotID, now); err != nil {
					logger.Error().Err(err).Str("time", timeStr).Str("slot", slotID).Msg("dispatch reminders")
				}
			}); err != nil {
				return err
			}
		}
	}

	if _, err := scheduler.ScheduleInterval(time.Minute, func() {
		jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if _, err := sweeper.Sweep(jobCtx, time.Now().In(cfg.Location)); err != nil {
			logger.Error().Err(err).Msg("timeout sweep")
		}
	}); err != nil {
		return err
	}

	if cfg.WeeklyReport.Time != "" {
		if _, err := scheduler.ScheduleWeekly(cfg.WeeklyReport.DayOfWeek, cfg.WeeklyReport.Time, func() {
			jobCtx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()
			if err := telegramBot.SendWeeklyReports(jobCtx); err != nil {
				logger.Error().Err(err).Msg("weekly reports")
			}
		}); err != nil {
			return err
		}
	}

	return nil
}
