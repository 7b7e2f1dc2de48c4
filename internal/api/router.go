package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cureveda/schedule-service/internal/schedule"
)

type RouterConfig struct {
	Agenda       *schedule.Agenda
	Lifecycle    *schedule.Lifecycle
	Planner      *schedule.Planner
	Appointments schedule.AppointmentStore
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Env          string
	Version      string
	Logger       zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(AccessLogMiddleware(cfg.Logger))

	// Health endpoints need the raw connections; skip them when the
	// router is assembled without (tests).
	if cfg.PgPool != nil && cfg.Redis != nil {
		health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
		r.Get("/health/live", health.Liveness)
		r.Get("/health/ready", health.Readiness)
	}

	// Doctor-facing schedule surface
	r.Get("/doctors/{doctorID}/agenda", agendaHandler(cfg.Agenda))
	r.Get("/doctors/{doctorID}/appointments", listAppointmentsHandler(cfg.Appointments))
	r.Get("/doctors/{doctorID}/slots", listSlotsHandler(cfg.Planner))
	r.Post("/doctors/{doctorID}/slots", createSlotHandler(cfg.Planner))
	r.Delete("/slots/{id}", deleteSlotHandler(cfg.Planner))

	// Appointment lifecycle
	r.Post("/appointments", createAppointmentHandler(cfg.Lifecycle))
	r.Post("/appointments/{id}/accept", transitionHandler(cfg.Lifecycle, schedule.ActionAccept))
	r.Post("/appointments/{id}/reject", transitionHandler(cfg.Lifecycle, schedule.ActionReject))
	r.Post("/appointments/{id}/postpone", transitionHandler(cfg.Lifecycle, schedule.ActionPostpone))

	return r
}
