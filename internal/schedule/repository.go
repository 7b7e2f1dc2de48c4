package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AppointmentFilter narrows ListByDoctor. The time range applies to the
// patient-requested time; status matches exactly when set.
type AppointmentFilter struct {
	Status *AppointmentStatus
	From   *time.Time
	To     *time.Time
}

// AppointmentPatch is a partial update. Status and FinalTime are applied
// only when non-nil; there is no way to clear a final time once set,
// which keeps the accepted/postponed invariant one-directional.
type AppointmentPatch struct {
	Status    *AppointmentStatus
	FinalTime *time.Time
}

// AppointmentStore abstracts the appointment collection.
type AppointmentStore interface {
	ListByDoctor(ctx context.Context, doctorID string, f AppointmentFilter) ([]Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Create(ctx context.Context, doctorID, patientID string, requestedTime time.Time, notes string) (*Appointment, error)

	// Update applies the patch and returns the updated row. It must
	// reject, with an InvariantViolationError, any patch that would
	// leave the appointment accepted or postponed with no final time.
	Update(ctx context.Context, id uuid.UUID, patch AppointmentPatch) (*Appointment, error)

	// ListElapsed returns accepted and postponed appointments whose
	// final time is before the given instant. Used by the completion
	// worker.
	ListElapsed(ctx context.Context, before time.Time) ([]Appointment, error)
}

// SlotStore abstracts the doctor's self-declared availability slots.
type SlotStore interface {
	// ListByDoctorAndDate returns the doctor's slots for one day,
	// ordered by start time ascending.
	ListByDoctorAndDate(ctx context.Context, doctorID, date string) ([]ManualScheduleSlot, error)
	Create(ctx context.Context, doctorID, date, startTime, endTime, description string) (*ManualScheduleSlot, error)

	// Delete removes a slot and returns the removed row, so the change
	// feed can name the owning doctor. A missing id reports
	// ErrSlotNotFound; a repeated delete is observable but harmless.
	Delete(ctx context.Context, id uuid.UUID) (*ManualScheduleSlot, error)
}
