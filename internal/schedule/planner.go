package schedule

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Planner manages the doctor's manual availability slots. Slot edits in
// the source client are delete-plus-recreate, so there is no update path.
type Planner struct {
	slots    SlotStore
	notifier Notifier
	log      zerolog.Logger
}

func NewPlanner(slots SlotStore, notifier Notifier, log zerolog.Logger) *Planner {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Planner{
		slots:    slots,
		notifier: notifier,
		log:      log.With().Str("component", "planner").Logger(),
	}
}

// AddSlot validates and records one availability window. Validation runs
// before the adapter call so format errors never cost a round trip.
// Overlap between slots is not checked; the doctor manages overlaps.
func (p *Planner) AddSlot(ctx context.Context, doctorID, date, startTime, endTime, description string) (*ManualScheduleSlot, error) {
	if doctorID == "" {
		return nil, &ValidationError{Field: "doctor_id", Reason: "required"}
	}
	if !ValidDate(date) {
		return nil, &ValidationError{Field: "date", Reason: "must be a real YYYY-MM-DD date"}
	}
	if !ValidSlotRange(startTime, endTime) {
		return nil, &ValidationError{Field: "time range", Reason: "end must be after start, both HH:MM"}
	}

	sl, err := p.slots.Create(ctx, doctorID, date, startTime, endTime, description)
	if err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}

	p.log.Info().Str("slot_id", sl.ID.String()).Str("doctor_id", doctorID).
		Str("date", date).Str("window", startTime+"-"+endTime).Msg("slot added")
	p.notifier.SlotChanged(ctx, "insert", sl)

	return sl, nil
}

// RemoveSlot deletes a slot by id. The deleted row comes back from the
// store so the change event carries the owning doctor; a listener can
// only route an event it can attribute. Deleting an already-removed
// slot reports ErrSlotNotFound rather than failing loudly.
func (p *Planner) RemoveSlot(ctx context.Context, id uuid.UUID) error {
	sl, err := p.slots.Delete(ctx, id)
	if err != nil {
		return err
	}

	p.log.Info().Str("slot_id", sl.ID.String()).Str("doctor_id", sl.DoctorID).Msg("slot removed")
	p.notifier.SlotChanged(ctx, "delete", sl)

	return nil
}

// ListSlots returns the doctor's slots for one date, ordered by start time.
func (p *Planner) ListSlots(ctx context.Context, doctorID, date string) ([]ManualScheduleSlot, error) {
	if !ValidDate(date) {
		return nil, &ValidationError{Field: "date", Reason: "must be a real YYYY-MM-DD date"}
	}
	return p.slots.ListByDoctorAndDate(ctx, doctorID, date)
}
