package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentColumns = `id, doctor_id, patient_id, requested_time, final_time, status, notes, created_at, updated_at`

// PgAppointmentStore is the Postgres-backed appointment adapter.
type PgAppointmentStore struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPgAppointmentStore(pool *pgxpool.Pool, timeout time.Duration) *PgAppointmentStore {
	return &PgAppointmentStore{pool: pool, timeout: timeout}
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.RequestedTime,
		&a.FinalTime,
		&a.Status,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func (s *PgAppointmentStore) ListByDoctor(ctx context.Context, doctorID string, f AppointmentFilter) ([]Appointment, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE doctor_id = $1
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::timestamptz IS NULL OR requested_time >= $3)
		  AND ($4::timestamptz IS NULL OR requested_time < $4)
		ORDER BY created_at ASC
	`

	var status *string
	if f.Status != nil {
		v := string(*f.Status)
		status = &v
	}

	rows, err := s.pool.Query(ctx, query, doctorID, status, f.From, f.To)
	if err != nil {
		return nil, wrapTransport("list appointments", err)
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, wrapTransport("list appointments", err)
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapTransport("list appointments", err)
	}

	return result, nil
}

func (s *PgAppointmentStore) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	row := s.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)

	a, err := scanAppointment(row)
	if err != nil {
		return nil, wrapTransport("get appointment", err)
	}
	return a, nil
}

func (s *PgAppointmentStore) Create(ctx context.Context, doctorID, patientID string, requestedTime time.Time, notes string) (*Appointment, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	id := uuid.New()

	var notesVal *string
	if notes != "" {
		notesVal = &notes
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, doctor_id, patient_id, requested_time, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'pending', $5, now(), now())
		RETURNING `+appointmentColumns+`
	`, id, doctorID, patientID, requestedTime, notesVal)

	a, err := scanAppointment(row)
	if err != nil {
		return nil, wrapTransport("create appointment", err)
	}
	return a, nil
}

// Update applies a partial patch. The resulting row is checked against
// the final-time invariant before the statement runs: accepted and
// postponed appointments must always carry a final time. The read-then-
// update pair is not transactional; concurrent writers are last-write-
// wins at the store level.
func (s *PgAppointmentStore) Update(ctx context.Context, id uuid.UUID, patch AppointmentPatch) (*Appointment, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resultingStatus := current.Status
	if patch.Status != nil {
		resultingStatus = *patch.Status
	}
	resultingFinal := current.FinalTime
	if patch.FinalTime != nil {
		resultingFinal = patch.FinalTime
	}
	if resultingStatus.RequiresFinalTime() && resultingFinal == nil {
		return nil, &InvariantViolationError{
			AppointmentID: id.String(),
			Reason:        "status " + string(resultingStatus) + " requires a final time",
		}
	}

	var statusVal *string
	if patch.Status != nil {
		v := string(*patch.Status)
		statusVal = &v
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status     = COALESCE($2, status),
		    final_time = COALESCE($3, final_time),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, statusVal, patch.FinalTime)

	a, err := scanAppointment(row)
	if err != nil {
		return nil, wrapTransport("update appointment", err)
	}
	return a, nil
}

func (s *PgAppointmentStore) ListElapsed(ctx context.Context, before time.Time) ([]Appointment, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status IN ('accepted', 'postponed')
		  AND final_time IS NOT NULL
		  AND final_time < $1
	`, before)
	if err != nil {
		return nil, wrapTransport("list elapsed appointments", err)
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, wrapTransport("list elapsed appointments", err)
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapTransport("list elapsed appointments", err)
	}

	return result, nil
}
