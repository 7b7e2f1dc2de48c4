package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Agenda merges the doctor's manually declared slots and accepted
// appointments into one time-ordered view for a single calendar date.
type Agenda struct {
	appointments AppointmentStore
	slots        SlotStore
	log          zerolog.Logger
}

func NewAgenda(appointments AppointmentStore, slots SlotStore, log zerolog.Logger) *Agenda {
	return &Agenda{
		appointments: appointments,
		slots:        slots,
		log:          log.With().Str("component", "agenda").Logger(),
	}
}

// BuildAgenda fetches both sources fresh and returns the merged agenda
// for the given YYYY-MM-DD date, sorted ascending by effective time.
// Manual slots precede appointments at equal times. If either fetch
// fails the whole call fails; a partial agenda would misrepresent the
// doctor's availability.
//
// Only accepted appointments are merged. The appointment fetch is not
// date-filtered at the store: the final-vs-requested time selection
// happens client-side, so the date comparison has to as well.
func (a *Agenda) BuildAgenda(ctx context.Context, doctorID, date string) ([]AgendaItem, error) {
	if !ValidDate(date) {
		return nil, &ValidationError{Field: "date", Reason: "must be a real YYYY-MM-DD date"}
	}

	manualSlots, err := a.slots.ListByDoctorAndDate(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("fetch manual slots: %w", err)
	}

	accepted := StatusAccepted
	appts, err := a.appointments.ListByDoctor(ctx, doctorID, AppointmentFilter{Status: &accepted})
	if err != nil {
		return nil, fmt.Errorf("fetch accepted appointments: %w", err)
	}

	items := make([]AgendaItem, 0, len(manualSlots)+len(appts))

	for i := range manualSlots {
		sl := manualSlots[i]
		sortKey, err := CombineDateClock(sl.Date, sl.StartTime)
		if err != nil {
			// A malformed stored row should not sink the whole agenda.
			a.log.Warn().Str("slot_id", sl.ID.String()).Str("start_time", sl.StartTime).
				Msg("skipping slot with unparseable start time")
			continue
		}
		items = append(items, AgendaItem{
			ID:          sl.ID,
			Type:        ItemManual,
			DisplayTime: sl.StartTime + " - " + sl.EndTime,
			Title:       "Scheduled Time",
			Status:      sl.Status,
			SortKey:     sortKey,
			Slot:        &sl,
		})
	}

	for i := range appts {
		appt := appts[i]
		effective, ok := appt.EffectiveTime()
		if !ok {
			continue
		}
		if effective.In(time.Local).Format(DateLayout) != date {
			continue
		}
		items = append(items, AgendaItem{
			ID:          appt.ID,
			Type:        ItemAppointment,
			DisplayTime: effective.In(time.Local).Format(ClockLayout),
			Title:       "Appointment: " + appt.PatientID,
			Status:      string(appt.Status),
			SortKey:     effective,
			Appointment: &appt,
		})
	}

	// Slots were appended before appointments, so a stable sort keeps
	// them first on equal times.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SortKey.Before(items[j].SortKey)
	})

	return items, nil
}
