package schedule

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// In-memory stores mirroring the Postgres adapters' semantics, including
// the final-time invariant and duplicate-slot detection.

type fakeAppointmentStore struct {
	mu          sync.Mutex
	byID        map[uuid.UUID]Appointment
	order       []uuid.UUID
	listErr     error
	updateCalls int
}

func newFakeAppointmentStore() *fakeAppointmentStore {
	return &fakeAppointmentStore{byID: make(map[uuid.UUID]Appointment)}
}

func (f *fakeAppointmentStore) put(a Appointment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[a.ID]; !ok {
		f.order = append(f.order, a.ID)
	}
	f.byID[a.ID] = a
}

func (f *fakeAppointmentStore) ListByDoctor(_ context.Context, doctorID string, filter AppointmentFilter) ([]Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []Appointment
	for _, id := range f.order {
		a := f.byID[id]
		if a.DoctorID != doctorID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.From != nil && (a.RequestedTime == nil || a.RequestedTime.Before(*filter.From)) {
			continue
		}
		if filter.To != nil && (a.RequestedTime == nil || !a.RequestedTime.Before(*filter.To)) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAppointmentStore) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (f *fakeAppointmentStore) Create(_ context.Context, doctorID, patientID string, requestedTime time.Time, notes string) (*Appointment, error) {
	now := time.Now()
	a := Appointment{
		ID:            uuid.New(),
		DoctorID:      doctorID,
		PatientID:     patientID,
		RequestedTime: &requestedTime,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if notes != "" {
		a.Notes = &notes
	}
	f.put(a)
	return &a, nil
}

func (f *fakeAppointmentStore) Update(_ context.Context, id uuid.UUID, patch AppointmentPatch) (*Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++

	a, ok := f.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}

	status := a.Status
	if patch.Status != nil {
		status = *patch.Status
	}
	final := a.FinalTime
	if patch.FinalTime != nil {
		final = patch.FinalTime
	}
	if status.RequiresFinalTime() && final == nil {
		return nil, &InvariantViolationError{
			AppointmentID: id.String(),
			Reason:        "status " + string(status) + " requires a final time",
		}
	}

	a.Status = status
	a.FinalTime = final
	a.UpdatedAt = time.Now()
	f.byID[id] = a
	return &a, nil
}

func (f *fakeAppointmentStore) ListElapsed(_ context.Context, before time.Time) ([]Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Appointment
	for _, id := range f.order {
		a := f.byID[id]
		if a.Status.RequiresFinalTime() && a.FinalTime != nil && a.FinalTime.Before(before) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeSlotStore struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]ManualScheduleSlot
	listErr error
}

func newFakeSlotStore() *fakeSlotStore {
	return &fakeSlotStore{byID: make(map[uuid.UUID]ManualScheduleSlot)}
}

// put stores a slot directly, bypassing Create's format validation.
func (f *fakeSlotStore) put(sl ManualScheduleSlot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[sl.ID] = sl
}

func (f *fakeSlotStore) ListByDoctorAndDate(_ context.Context, doctorID, date string) ([]ManualScheduleSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []ManualScheduleSlot
	for _, sl := range f.byID {
		if sl.DoctorID == doctorID && sl.Date == date {
			out = append(out, sl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (f *fakeSlotStore) Create(_ context.Context, doctorID, date, startTime, endTime, description string) (*ManualScheduleSlot, error) {
	if !ValidDate(date) {
		return nil, &ValidationError{Field: "date", Reason: "must be a real YYYY-MM-DD date"}
	}
	if !ValidSlotRange(startTime, endTime) {
		return nil, &ValidationError{Field: "time range", Reason: "end must be after start, both HH:MM"}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sl := range f.byID {
		if sl.DoctorID == doctorID && sl.Date == date && sl.StartTime == startTime && sl.EndTime == endTime {
			return nil, &ConflictError{DoctorID: doctorID, Date: date, StartTime: startTime, EndTime: endTime}
		}
	}

	now := time.Now()
	sl := ManualScheduleSlot{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
		Status:    SlotStatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if description != "" {
		sl.Description = &description
	}
	f.byID[sl.ID] = sl
	return &sl, nil
}

func (f *fakeSlotStore) Delete(_ context.Context, id uuid.UUID) (*ManualScheduleSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sl, ok := f.byID[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	delete(f.byID, id)
	return &sl, nil
}

// recordingNotifier captures change callbacks for assertions.
type recordingNotifier struct {
	mu           sync.Mutex
	appointments []string
	slots        []string
}

func (n *recordingNotifier) AppointmentChanged(_ context.Context, op string, a *Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.appointments = append(n.appointments, op+":"+a.ID.String())
}

func (n *recordingNotifier) SlotChanged(_ context.Context, op string, sl *ManualScheduleSlot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.slots = append(n.slots, op+":"+sl.ID.String()+":"+sl.DoctorID)
}
