package schedule

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusAccepted  AppointmentStatus = "accepted"
	StatusRejected  AppointmentStatus = "rejected"
	StatusPostponed AppointmentStatus = "postponed"
	StatusCompleted AppointmentStatus = "completed"
)

// Terminal reports whether no further lifecycle action applies.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// RequiresFinalTime reports whether an appointment in this status must
// carry a concrete final time.
func (s AppointmentStatus) RequiresFinalTime() bool {
	return s == StatusAccepted || s == StatusPostponed
}

const SlotStatusAvailable = "available"

// Appointment is a patient-originated consultation request. DoctorID and
// PatientID are opaque keys owned by the external identity provider.
type Appointment struct {
	ID            uuid.UUID
	DoctorID      string
	PatientID     string
	RequestedTime *time.Time
	FinalTime     *time.Time
	Status        AppointmentStatus
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EffectiveTime is the time used to place the appointment on an agenda:
// the doctor-confirmed final time when set, the patient-requested time
// otherwise. ok is false when neither is present.
func (a *Appointment) EffectiveTime() (t time.Time, ok bool) {
	if a.FinalTime != nil {
		return *a.FinalTime, true
	}
	if a.RequestedTime != nil {
		return *a.RequestedTime, true
	}
	return time.Time{}, false
}

// ManualScheduleSlot is a doctor-declared availability window for a single
// day. Date is YYYY-MM-DD, StartTime/EndTime are HH:MM local wall clock.
type ManualScheduleSlot struct {
	ID          uuid.UUID
	DoctorID    string
	Date        string
	StartTime   string
	EndTime     string
	Description *string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type AgendaItemType string

const (
	ItemManual      AgendaItemType = "manual"
	ItemAppointment AgendaItemType = "appointment"
)

// AgendaItem is the merged projection of one schedule entry. It is derived
// on every BuildAgenda call and never persisted.
type AgendaItem struct {
	ID          uuid.UUID
	Type        AgendaItemType
	DisplayTime string
	Title       string
	Status      string
	SortKey     time.Time

	// Exactly one of these holds the source record.
	Slot        *ManualScheduleSlot
	Appointment *Appointment
}
