// agenda-watch follows one doctor's agenda from a terminal: it prints
// the merged schedule for a date, subscribes to the change feed, and
// reprints whenever a relevant mutation lands. It is the development
// stand-in for the mobile schedule screen.
package main

import (
	"context"
	"fmt"
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

	doctorID := os.Getenv("DOCTOR_ID")
	if doctorID == "" {
		stderrLogger.Fatal().Msg("DOCTOR_ID is required")
	}
	date := os.Getenv("AGENDA_DATE")
	if date == "" {
		date = time.Now().Format(schedule.DateLayout)
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

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
	slots := schedule.NewPgSlotStore(pgPool, cfg.AdapterTimeout)
	agenda := schedule.NewAgenda(appointments, slots, logger)

	render := func() {
		ctx, cancel := context.WithTimeout(rootCtx, 15*time.Second)
		defer cancel()

		items, err := agenda.BuildAgenda(ctx, doctorID, date)
		if err != nil {
			logger.Error().Err(err).Msg("build agenda")
			return
		}

		fmt.Printf("\n=== Agenda for %s on %s (%s) ===\n", doctorID, date, time.Now().Format(time.TimeOnly))
		if len(items) == 0 {
			fmt.Println("  (empty schedule)")
			return
		}
		for _, it := range items {
			fmt.Printf("  %-13s  %-40s  [%s]\n", it.DisplayTime, it.Title, it.Status)
		}
	}

	render()

	listener := notify.NewListener(rdb, doctorID, cfg.ChangeDebounce, render, logger)
	if err := listener.Start(rootCtx); err != nil {
		logger.Fatal().Err(err).Msg("change listener start error")
	}
	defer listener.Close()

	logger.Info().Str("doctor_id", doctorID).Str("date", date).Msg("watching for schedule changes")
	<-rootCtx.Done()
}
