package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"taskbot/internal/auth"
	"taskbot/internal/bot"
	"taskbot/internal/config"
	"taskbot/internal/logger"
	"taskbot/internal/metrics"
	"taskbot/internal/repository"
	"taskbot/internal/service"
)

const firingTimeout = 10 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	boot := logger.New(logger.Options{})
	cfg, err := config.Load(ctx)
	if err != nil {
		boot.Fatal().Err(err).Msg("config")
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	db, err := repository.NewDB(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("db")
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, m, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	taskSvc := service.NewTaskService(taskRepo, cfg.ReminderLocation)
	guard := auth.NewGuard(cfg.MyUsername)
	dispatcher := service.NewDispatcher(taskSvc, userRepo, guard, log, m)

	api, err := bot.NewAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal().Err(err).Msg("bot")
	}
	log.Info().Str("account", api.Self.UserName).Msg("bot authorized")

	outbox := bot.NewOutbox(api, cfg.SendRatePerSec, log, m)
	reminderSvc := service.NewReminderService(taskSvc, userRepo, guard.Operator(), outbox, log, m)
	telegramBot := bot.New(api, dispatcher, outbox, log)

	scheduler := service.NewSchedulerService(cfg.ReminderLocation, log)
	entry, err := scheduler.ScheduleDaily(cfg.ReminderHour, cfg.ReminderMinute, firingTimeout, reminderSvc.Fire)
	if err != nil {
		log.Fatal().Err(err).Msg("schedule reminder")
	}
	scheduler.Start()
	defer scheduler.Stop()
	log.Info().Time("next_reminder", scheduler.Next(entry)).Str("operator", cfg.MyUsername).Msg("task bot started")

	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("bot stopped with error")
	}
	log.Info().Msg("shutdown complete")
}

func serveMetrics(addr string, m *metrics.Metrics, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server")
		}
	}()
	return srv
}
