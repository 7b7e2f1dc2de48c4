package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cureveda/schedule-service/internal/schedule"
)

func agendaHandler(agenda *schedule.Agenda) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID := chi.URLParam(r, "doctorID")
		date := r.URL.Query().Get("date")
		if date == "" {
			writeError(w, http.StatusBadRequest, "missing_date", "date query parameter is required")
			return
		}

		items, err := agenda.BuildAgenda(r.Context(), doctorID, date)
		if err != nil {
			writeScheduleError(w, err)
			return
		}

		resp := AgendaResponse{
			DoctorID: doctorID,
			Date:     date,
			Items:    make([]AgendaItemResponse, 0, len(items)),
		}
		for _, it := range items {
			resp.Items = append(resp.Items, AgendaItemResponse{
				ID:          it.ID,
				Type:        string(it.Type),
				DisplayTime: it.DisplayTime,
				Title:       it.Title,
				Status:      it.Status,
				SortKey:     it.SortKey,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func listAppointmentsHandler(store schedule.AppointmentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID := chi.URLParam(r, "doctorID")

		var filter schedule.AppointmentFilter
		if s := r.URL.Query().Get("status"); s != "" {
			status := schedule.AppointmentStatus(s)
			filter.Status = &status
		}
		if s := r.URL.Query().Get("from"); s != "" {
			from, err := time.Parse(time.RFC3339, s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_from", "from must be RFC3339")
				return
			}
			filter.From = &from
		}
		if s := r.URL.Query().Get("to"); s != "" {
			to, err := time.Parse(time.RFC3339, s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_to", "to must be RFC3339")
				return
			}
			filter.To = &to
		}

		appts, err := store.ListByDoctor(r.Context(), doctorID, filter)
		if err != nil {
			writeScheduleError(w, err)
			return
		}

		resp := make([]AppointmentResponse, 0, len(appts))
		for i := range appts {
			resp = append(resp, toAppointmentResponse(&appts[i]))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func createAppointmentHandler(lifecycle *schedule.Lifecycle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		requestedTime, err := time.Parse(time.RFC3339, req.RequestedTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_requested_time", "requested_time must be RFC3339")
			return
		}

		appt, err := lifecycle.Request(r.Context(), req.DoctorID, req.PatientID, requestedTime, req.Notes)
		if err != nil {
			writeScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func transitionHandler(lifecycle *schedule.Lifecycle, action schedule.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var newTime string
		if action == schedule.ActionPostpone {
			var req PostponeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
				return
			}
			newTime = req.NewTime
		}

		appt, err := lifecycle.Transition(r.Context(), id, action, newTime)
		if err != nil {
			writeScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func listSlotsHandler(planner *schedule.Planner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID := chi.URLParam(r, "doctorID")
		date := r.URL.Query().Get("date")

		slots, err := planner.ListSlots(r.Context(), doctorID, date)
		if err != nil {
			writeScheduleError(w, err)
			return
		}

		resp := make([]SlotResponse, 0, len(slots))
		for i := range slots {
			resp = append(resp, toSlotResponse(&slots[i]))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func createSlotHandler(planner *schedule.Planner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID := chi.URLParam(r, "doctorID")

		var req CreateSlotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		sl, err := planner.AddSlot(r.Context(), doctorID, req.Date, req.StartTime, req.EndTime, req.Description)
		if err != nil {
			writeScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toSlotResponse(sl))
	}
}

func deleteSlotHandler(planner *schedule.Planner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_slot_id", "id must be a valid UUID")
			return
		}

		if err := planner.RemoveSlot(r.Context(), id); err != nil {
			writeScheduleError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
