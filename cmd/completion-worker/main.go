// The completion worker sweeps accepted and postponed appointments whose
// final time has passed by more than the grace period and marks them
// completed. Nothing in the doctor-facing flow produces the completed
// status, so without the sweep old appointments would sit actionable
// forever.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/cureveda/schedule-service/internal/config"
	"github.com/cureveda/schedule-service/internal/db"
	"github.com/cureveda/schedule-service/internal/notify"
	"github.com/cureveda/schedule-service/internal/redisclient"
	"github.com/cureveda/schedule-service/internal/schedule"
)

func main() {
	stderrLogger := zerolog.New(os.Stderr)
	cfg, err := config.Load()
	if err != nil {
		stderrLogger.Fatal().Err(err).Msg("config load error")
	}

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Str("component", "completion-worker").Logger()
	logger.Info().Str("env", cfg.Env).Dur("interval", cfg.WorkerInterval).
		Dur("grace", cfg.CompletionGrace).Msg("completion-worker starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()

	rdb, err := redisclient.New(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection error")
	}
	defer rdb.Close()

	appointments := schedule.NewPgAppointmentStore(pgPool, cfg.AdapterTimeout)
	publisher := notify.NewPublisher(rdb, logger)

	runOnce(rootCtx, appointments, publisher, cfg.CompletionGrace, logger)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			logger.Info().Msg("shutdown signal received, stopping completion worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, appointments, publisher, cfg.CompletionGrace, logger)
		}
	}
}

func runOnce(ctx context.Context, appointments schedule.AppointmentStore, notifier schedule.Notifier, grace time.Duration, logger zerolog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	cutoff := start.Add(-grace)

	elapsed, err := appointments.ListElapsed(runCtx, cutoff)
	if err != nil {
		logger.Error().Err(err).Msg("list elapsed appointments")
		return
	}

	completed := 0
	for i := range elapsed {
		status := schedule.StatusCompleted
		updated, err := appointments.Update(runCtx, elapsed[i].ID, schedule.AppointmentPatch{Status: &status})
		if err != nil {
			logger.Error().Err(err).Str("appointment_id", elapsed[i].ID.String()).
				Msg("complete appointment")
			continue
		}
		notifier.AppointmentChanged(runCtx, notify.OpUpdate, updated)
		completed++
	}

	logger.Info().Int("candidates", len(elapsed)).Int("completed", completed).
		Dur("took", time.Since(start)).Msg("completion sweep finished")
}
