package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/bot"
	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/config"
	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/repository"
	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/schedule"
	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.Open(cfg)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	reminderRepo := repository.NewReminderRepository(db)

	clock := schedule.SystemClock{}
	scheduler := schedule.NewScheduler(clock, logger)

	taskSvc := service.NewTaskService(taskRepo, clock, logger)
	summarySvc := service.NewSummaryService(taskRepo)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}

	dispatcher := bot.NewTelegramDispatcher(api)
	reminderSvc := service.NewReminderService(
		scheduler, reminderRepo, taskRepo, dispatcher, clock, logger,
	)

	telegramBot := bot.New(api, userRepo, taskSvc, reminderSvc, summarySvc, clock, logger)

	go scheduler.Start(ctx)

	if err := reminderSvc.Restore(ctx); err != nil {
		log.Fatalf("restore reminders: %v", err)
	}

	cronSvc := service.NewCronService(cfg.Location)
	if _, err := cronSvc.ScheduleInterval(cfg.SweepInterval, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := taskSvc.SweepOverdue(jobCtx); err != nil {
			logger.Error("overdue sweep", "error", err)
		}
	}); err != nil {
		log.Fatalf("schedule sweep: %v", err)
	}
	if cfg.SummaryTime != "" {
		if _, err := cronSvc.ScheduleDaily(cfg.SummaryTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if err := telegramBot.BroadcastSummaries(jobCtx); err != nil {
				logger.Error("summary broadcast", "error", err)
			}
		}); err != nil {
			log.Fatalf("schedule summary: %v", err)
		}
	}
	cronSvc.Start()
	defer cronSvc.Stop()

	logger.Info("course bot started", "backend", cfg.StorageBackend)
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	logger.Info("shutdown complete")
}
