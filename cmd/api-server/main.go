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

	"github.com/cureveda/schedule-service/internal/api"
	"github.com/cureveda/schedule-service/internal/config"
	"github.com/cureveda/schedule-service/internal/db"
	"github.com/cureveda/schedule-service/internal/notify"
	"github.com/cureveda/schedule-service/internal/redisclient"
	"github.com/cureveda/schedule-service/internal/schedule"
)

const version = "0.3.0"

func main() {
	stderrLogger := zerolog.New(os.Stderr)
	cfg, err := config.Load()
	if err != nil {
		stderrLogger.Fatal().Err(err).Msg("config load error")
	}

	logger := newLogger(cfg.Env)
	logger.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Str("version", version).
		Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	logger.Info().Msg("connected to Postgres")

	if err := db.RunMigrations(rootCtx, pgPool, cfg.MigrationsDir); err != nil {
		logger.Fatal().Err(err).Msg("migration error")
	}
	logger.Info().Msg("migrations applied")

	rdb, err := redisclient.New(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing redis")
		}
	}()
	logger.Info().Msg("connected to Redis")

	appointments := schedule.NewPgAppointmentStore(pgPool, cfg.AdapterTimeout)
	slots := schedule.NewPgSlotStore(pgPool, cfg.AdapterTimeout)
	publisher := notify.NewPublisher(rdb, logger)

	agenda := schedule.NewAgenda(appointments, slots, logger)
	lifecycle := schedule.NewLifecycle(appointments, publisher, logger)
	planner := schedule.NewPlanner(slots, publisher, logger)

	router := api.NewRouter(api.RouterConfig{
		Agenda:       agenda,
		Lifecycle:    lifecycle,
		Planner:      planner,
		Appointments: appointments,
		PgPool:       pgPool,
		Redis:        rdb,
		Env:          cfg.Env,
		Version:      version,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	<-rootCtx.Done()
	logger.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
}

func newLogger(env string) zerolog.Logger {
	if env == "dev" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
