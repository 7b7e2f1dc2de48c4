package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Action is a doctor-side lifecycle action on an appointment request.
type Action string

const (
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionPostpone Action = "postpone"
)

// Notifier receives a callback after every successful mutation so a
// change feed can fan the event out. Implementations must not block.
type Notifier interface {
	AppointmentChanged(ctx context.Context, op string, a *Appointment)
	SlotChanged(ctx context.Context, op string, sl *ManualScheduleSlot)
}

// NopNotifier discards all change callbacks.
type NopNotifier struct{}

func (NopNotifier) AppointmentChanged(context.Context, string, *Appointment) {}
func (NopNotifier) SlotChanged(context.Context, string, *ManualScheduleSlot) {}

// Lifecycle applies appointment state transitions. Each transition is a
// single partial update; callers re-run the merge engine afterwards to
// refresh any agenda view.
type Lifecycle struct {
	appointments AppointmentStore
	notifier     Notifier
	log          zerolog.Logger
	now          func() time.Time
}

func NewLifecycle(appointments AppointmentStore, notifier Notifier, log zerolog.Logger) *Lifecycle {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Lifecycle{
		appointments: appointments,
		notifier:     notifier,
		log:          log.With().Str("component", "lifecycle").Logger(),
		now:          time.Now,
	}
}

// Request records a new patient-originated appointment in pending state.
func (l *Lifecycle) Request(ctx context.Context, doctorID, patientID string, requestedTime time.Time, notes string) (*Appointment, error) {
	if doctorID == "" || patientID == "" {
		return nil, &ValidationError{Field: "doctor_id/patient_id", Reason: "required"}
	}
	if requestedTime.IsZero() {
		return nil, &ValidationError{Field: "requested_time", Reason: "required"}
	}

	appt, err := l.appointments.Create(ctx, doctorID, patientID, requestedTime, notes)
	if err != nil {
		return nil, fmt.Errorf("create appointment request: %w", err)
	}

	l.log.Info().Str("appointment_id", appt.ID.String()).Str("doctor_id", doctorID).
		Time("requested_time", requestedTime).Msg("appointment requested")
	l.notifier.AppointmentChanged(ctx, "insert", appt)

	return appt, nil
}

// Transition applies accept, reject, or postpone to an appointment.
//
// Accept settles the final time through the fallback chain
// finalTime -> requestedTime -> now, so an accepted appointment can
// never lack one. Postpone requires newTime in YYYY-MM-DD HH:MM form
// and fails with a ValidationError, mutating nothing, otherwise.
// Rejected and completed are terminal; repeating an action on an
// accepted or postponed appointment replaces the previous decision.
func (l *Lifecycle) Transition(ctx context.Context, id uuid.UUID, action Action, newTime string) (*Appointment, error) {
	// Parse before touching the store so a bad postpone costs no round trip.
	var postponeTo time.Time
	if action == ActionPostpone {
		t, err := ParsePostponeTime(newTime)
		if err != nil {
			return nil, err
		}
		postponeTo = t
	}

	appt, err := l.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status.Terminal() {
		return nil, ErrTerminalStatus
	}

	var patch AppointmentPatch
	switch action {
	case ActionAccept:
		status := StatusAccepted
		final := l.settleFinalTime(appt)
		patch = AppointmentPatch{Status: &status, FinalTime: &final}
	case ActionReject:
		status := StatusRejected
		patch = AppointmentPatch{Status: &status}
	case ActionPostpone:
		status := StatusPostponed
		patch = AppointmentPatch{Status: &status, FinalTime: &postponeTo}
	default:
		return nil, &ValidationError{Field: "action", Reason: "must be accept, reject, or postpone"}
	}

	updated, err := l.appointments.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("apply %s: %w", action, err)
	}

	l.log.Info().Str("appointment_id", id.String()).Str("action", string(action)).
		Str("status", string(updated.Status)).Msg("appointment transitioned")
	l.notifier.AppointmentChanged(ctx, "update", updated)

	return updated, nil
}

func (l *Lifecycle) settleFinalTime(a *Appointment) time.Time {
	if a.FinalTime != nil {
		return *a.FinalTime
	}
	if a.RequestedTime != nil {
		return *a.RequestedTime
	}
	return l.now()
}
