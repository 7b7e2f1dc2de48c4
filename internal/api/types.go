package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/cureveda/schedule-service/internal/schedule"
)

type CreateAppointmentRequest struct {
	DoctorID      string `json:"doctor_id"`
	PatientID     string `json:"patient_id"`
	RequestedTime string `json:"requested_time"` // RFC3339
	Notes         string `json:"notes,omitempty"`
}

type PostponeRequest struct {
	NewTime string `json:"new_time"` // YYYY-MM-DD HH:MM
}

type CreateSlotRequest struct {
	Date        string `json:"date"`       // YYYY-MM-DD
	StartTime   string `json:"start_time"` // HH:MM
	EndTime     string `json:"end_time"`   // HH:MM
	Description string `json:"description,omitempty"`
}

type AppointmentResponse struct {
	ID            uuid.UUID  `json:"id"`
	DoctorID      string     `json:"doctor_id"`
	PatientID     string     `json:"patient_id"`
	RequestedTime *time.Time `json:"requested_time,omitempty"`
	FinalTime     *time.Time `json:"final_time,omitempty"`
	Status        string     `json:"status"`
	Notes         *string    `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toAppointmentResponse(a *schedule.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:            a.ID,
		DoctorID:      a.DoctorID,
		PatientID:     a.PatientID,
		RequestedTime: a.RequestedTime,
		FinalTime:     a.FinalTime,
		Status:        string(a.Status),
		Notes:         a.Notes,
		CreatedAt:     a.CreatedAt,
	}
}

type SlotResponse struct {
	ID          uuid.UUID `json:"id"`
	DoctorID    string    `json:"doctor_id"`
	Date        string    `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Description *string   `json:"description,omitempty"`
	Status      string    `json:"status"`
}

func toSlotResponse(sl *schedule.ManualScheduleSlot) SlotResponse {
	return SlotResponse{
		ID:          sl.ID,
		DoctorID:    sl.DoctorID,
		Date:        sl.Date,
		StartTime:   sl.StartTime,
		EndTime:     sl.EndTime,
		Description: sl.Description,
		Status:      sl.Status,
	}
}

type AgendaItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	DisplayTime string    `json:"display_time"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	SortKey     time.Time `json:"sort_key"`
}

type AgendaResponse struct {
	DoctorID string               `json:"doctor_id"`
	Date     string               `json:"date"`
	Items    []AgendaItemResponse `json:"items"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
