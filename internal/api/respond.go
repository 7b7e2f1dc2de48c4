package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cureveda/schedule-service/internal/schedule"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// writeScheduleError maps the domain error taxonomy onto HTTP codes.
func writeScheduleError(w http.ResponseWriter, err error) {
	var ve *schedule.ValidationError
	var ce *schedule.ConflictError
	var ive *schedule.InvariantViolationError
	var te *schedule.TransportError

	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, "validation_failed", ve.Error())
	case errors.Is(err, schedule.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, schedule.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "slot_not_found", err.Error())
	case errors.As(err, &ce):
		writeError(w, http.StatusConflict, "slot_conflict", ce.Error())
	case errors.Is(err, schedule.ErrTerminalStatus):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.As(err, &ive):
		writeError(w, http.StatusConflict, "invariant_violation", ive.Error())
	case errors.As(err, &te) && te.Timeout:
		writeError(w, http.StatusGatewayTimeout, "store_timeout", te.Error())
	case errors.As(err, &te):
		writeError(w, http.StatusBadGateway, "store_unavailable", te.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
