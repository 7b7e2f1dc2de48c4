package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDoctor  = "dr.sharma@cureveda.example"
	testPatient = "patient.rao@cureveda.example"
	testDate    = "2025-09-25"
)

func localTime(date, clock string) time.Time {
	t, err := CombineDateClock(date, clock)
	if err != nil {
		panic(err)
	}
	return t
}

func acceptedAppointment(doctorID, patientID string, finalTime time.Time) Appointment {
	requested := finalTime
	return Appointment{
		ID:            uuid.New(),
		DoctorID:      doctorID,
		PatientID:     patientID,
		RequestedTime: &requested,
		FinalTime:     &finalTime,
		Status:        StatusAccepted,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

func mustAddSlot(t *testing.T, slots *fakeSlotStore, doctorID, date, start, end string) ManualScheduleSlot {
	t.Helper()
	sl, err := slots.Create(context.Background(), doctorID, date, start, end, "")
	require.NoError(t, err)
	return *sl
}

func TestBuildAgendaOrdersByEffectiveTime(t *testing.T) {
	appts := newFakeAppointmentStore()
	slots := newFakeSlotStore()
	agenda := NewAgenda(appts, slots, zerolog.Nop())

	mustAddSlot(t, slots, testDoctor, testDate, "10:00", "11:00")
	mustAddSlot(t, slots, testDoctor, testDate, "08:00", "09:00")
	appts.put(acceptedAppointment(testDoctor, "a@p", localTime(testDate, "09:30")))
	appts.put(acceptedAppointment(testDoctor, "b@p", localTime(testDate, "07:30")))

	items, err := agenda.BuildAgenda(context.Background(), testDoctor, testDate)
	require.NoError(t, err)
	require.Len(t, items, 4)

	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].SortKey.Before(items[i-1].SortKey),
			"items out of order at %d: %v after %v", i, items[i].SortKey, items[i-1].SortKey)
	}

	assert.Equal(t, "Appointment: b@p", items[0].Title)
	assert.Equal(t, "08:00 - 09:00", items[1].DisplayTime)
	assert.Equal(t, "Appointment: a@p", items[2].Title)
	assert.Equal(t, "10:00 - 11:00", items[3].DisplayTime)
}

func TestBuildAgendaManualSlotWinsTies(t *testing.T) {
	appts := newFakeAppointmentStore()
	slots := newFakeSlotStore()
	agenda := NewAgenda(appts, slots, zerolog.Nop())

	appts.put(acceptedAppointment(testDoctor, testPatient, localTime(testDate, "09:00")))
	mustAddSlot(t, slots, testDoctor, testDate, "09:00", "10:00")

	items, err := agenda.BuildAgenda(context.Background(), testDoctor, testDate)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, ItemManual, items[0].Type)
	assert.Equal(t, ItemAppointment, items[1].Type)
}

func TestBuildAgendaFiltersByDate(t *testing.T) {
	appts := newFakeAppointmentStore()
	slots := newFakeSlotStore()
	agenda := NewAgenda(appts, slots, zerolog.Nop())

	appts.put(acceptedAppointment(testDoctor, testPatient, localTime("2025-09-21", "10:00")))

	items, err := agenda.BuildAgenda(context.Background(), testDoctor, "2025-09-22")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBuildAgendaIgnoresOtherDoctorsAndStatuses(t *testing.T) {
	appts := newFakeAppointmentStore()
	slots := newFakeSlotStore()
	agenda := NewAgenda(appts, slots, zerolog.Nop())

	appts.put(acceptedAppointment("someone.else@cureveda.example", testPatient, localTime(testDate, "09:00")))

	pending := acceptedAppointment(testDoctor, testPatient, localTime(testDate, "10:00"))
	pending.Status = StatusPending
	pending.FinalTime = nil
	appts.put(pending)

	rejected := acceptedAppointment(testDoctor, testPatient, localTime(testDate, "11:00"))
	rejected.Status = StatusRejected
	appts.put(rejected)

	items, err := agenda.BuildAgenda(context.Background(), testDoctor, testDate)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBuildAgendaUsesRequestedTimeWhenFinalMissing(t *testing.T) {
	appts := newFakeAppointmentStore()
	slots := newFakeSlotStore()
	agenda := NewAgenda(appts, slots, zerolog.Nop())

	requested := localTime(testDate, "14:00")
	appts.put(Appointment{
		ID:            uuid.New(),
		DoctorID:      testDoctor,
		PatientID:     testPatient,
		RequestedTime: &requested,
		Status:        StatusAccepted,
	})

	items, err := agenda.BuildAgenda(context.Background(), testDoctor, testDate)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, requested, items[0].SortKey)
	assert.Equal(t, "14:00", items[0].DisplayTime)
}

func TestBuildAgendaRejectsBadDate(t *testing.T) {
	agenda := NewAgenda(newFakeAppointmentStore(), newFakeSlotStore(), zerolog.Nop())

	var ve *ValidationError
	_, err := agenda.BuildAgenda(context.Background(), testDoctor, "2025-02-30")
	require.ErrorAs(t, err, &ve)
}

func TestBuildAgendaFailsWholeOnFetchError(t *testing.T) {
	appts := newFakeAppointmentStore()
	slots := newFakeSlotStore()
	slots.listErr = &TransportError{Op: "list schedule slots", Timeout: true, Err: context.DeadlineExceeded}
	agenda := NewAgenda(appts, slots, zerolog.Nop())

	items, err := agenda.BuildAgenda(context.Background(), testDoctor, testDate)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.True(t, te.Timeout)
	assert.Nil(t, items, "no partial agenda on failure")
}

func TestScheduleEndToEnd(t *testing.T) {
	appts := newFakeAppointmentStore()
	slots := newFakeSlotStore()

	agenda := NewAgenda(appts, slots, zerolog.Nop())
	lifecycle := NewLifecycle(appts, nil, zerolog.Nop())
	planner := NewPlanner(slots, nil, zerolog.Nop())

	ctx := context.Background()

	_, err := planner.AddSlot(ctx, testDoctor, testDate, "09:00", "10:00", "Clinic hours")
	require.NoError(t, err)

	appt, err := lifecycle.Request(ctx, testDoctor, testPatient, localTime(testDate, "11:00"), "first visit")
	require.NoError(t, err)

	// Pending requests stay off the agenda.
	items, err := agenda.BuildAgenda(ctx, testDoctor, testDate)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Scheduled Time", items[0].Title)

	_, err = lifecycle.Transition(ctx, appt.ID, ActionAccept, "")
	require.NoError(t, err)

	items, err = agenda.BuildAgenda(ctx, testDoctor, testDate)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Scheduled Time", items[0].Title)
	assert.Equal(t, "09:00 - 10:00", items[0].DisplayTime)
	assert.Equal(t, "Appointment: "+testPatient, items[1].Title)
	assert.Equal(t, "11:00", items[1].DisplayTime)
}

func TestRemoveSlotIsIdempotentlyObservable(t *testing.T) {
	appts := newFakeAppointmentStore()
	slots := newFakeSlotStore()

	agenda := NewAgenda(appts, slots, zerolog.Nop())
	planner := NewPlanner(slots, nil, zerolog.Nop())

	ctx := context.Background()

	sl, err := planner.AddSlot(ctx, testDoctor, testDate, "09:00", "10:00", "")
	require.NoError(t, err)

	require.NoError(t, planner.RemoveSlot(ctx, sl.ID))
	assert.ErrorIs(t, planner.RemoveSlot(ctx, sl.ID), ErrSlotNotFound)

	items, err := agenda.BuildAgenda(ctx, testDoctor, testDate)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRemoveSlotEventNamesOwningDoctor(t *testing.T) {
	slots := newFakeSlotStore()
	notifier := &recordingNotifier{}
	planner := NewPlanner(slots, notifier, zerolog.Nop())

	ctx := context.Background()

	sl, err := planner.AddSlot(ctx, testDoctor, testDate, "09:00", "10:00", "")
	require.NoError(t, err)
	require.NoError(t, planner.RemoveSlot(ctx, sl.ID))

	require.Len(t, notifier.slots, 2)
	assert.Equal(t, "insert:"+sl.ID.String()+":"+testDoctor, notifier.slots[0])
	assert.Equal(t, "delete:"+sl.ID.String()+":"+testDoctor, notifier.slots[1],
		"delete event must carry the owning doctor for listener routing")
}

func TestBuildAgendaSkipsUnparseableStoredSlot(t *testing.T) {
	appts := newFakeAppointmentStore()
	slots := newFakeSlotStore()
	agenda := NewAgenda(appts, slots, zerolog.Nop())

	good := mustAddSlot(t, slots, testDoctor, testDate, "10:00", "11:00")

	// Written straight into the store, past Create's validation, the way
	// a row hand-edited in the database would arrive.
	slots.put(ManualScheduleSlot{
		ID:        uuid.New(),
		DoctorID:  testDoctor,
		Date:      testDate,
		StartTime: "morning",
		EndTime:   "10:00",
		Status:    SlotStatusAvailable,
	})

	items, err := agenda.BuildAgenda(context.Background(), testDoctor, testDate)
	require.NoError(t, err, "one bad row must not sink the agenda")
	require.Len(t, items, 1)
	assert.Equal(t, good.ID, items[0].ID)
}

func TestAddSlotDuplicateWindowConflicts(t *testing.T) {
	planner := NewPlanner(newFakeSlotStore(), nil, zerolog.Nop())
	ctx := context.Background()

	_, err := planner.AddSlot(ctx, testDoctor, testDate, "09:00", "10:00", "")
	require.NoError(t, err)

	var ce *ConflictError
	_, err = planner.AddSlot(ctx, testDoctor, testDate, "09:00", "10:00", "")
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, testDoctor, ce.DoctorID)
}

func TestAddSlotValidatesBeforeStore(t *testing.T) {
	planner := NewPlanner(newFakeSlotStore(), nil, zerolog.Nop())
	ctx := context.Background()

	var ve *ValidationError

	_, err := planner.AddSlot(ctx, testDoctor, "2025-02-30", "09:00", "10:00", "")
	require.ErrorAs(t, err, &ve)

	_, err = planner.AddSlot(ctx, testDoctor, testDate, "10:00", "09:00", "")
	require.ErrorAs(t, err, &ve)

	_, err = planner.AddSlot(ctx, testDoctor, testDate, "09:00", "09:00", "")
	require.ErrorAs(t, err, &ve)
}
