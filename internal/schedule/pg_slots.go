package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const slotColumns = `id, doctor_id, date, start_time, end_time, description, status, created_at, updated_at`

// PgSlotStore is the Postgres-backed manual-slot adapter.
type PgSlotStore struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPgSlotStore(pool *pgxpool.Pool, timeout time.Duration) *PgSlotStore {
	return &PgSlotStore{pool: pool, timeout: timeout}
}

func scanSlot(row pgx.Row) (*ManualScheduleSlot, error) {
	var sl ManualScheduleSlot

	err := row.Scan(
		&sl.ID,
		&sl.DoctorID,
		&sl.Date,
		&sl.StartTime,
		&sl.EndTime,
		&sl.Description,
		&sl.Status,
		&sl.CreatedAt,
		&sl.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	return &sl, nil
}

func (s *PgSlotStore) ListByDoctorAndDate(ctx context.Context, doctorID, date string) ([]ManualScheduleSlot, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT `+slotColumns+`
		FROM schedule_slots
		WHERE doctor_id = $1 AND date = $2
		ORDER BY start_time ASC
	`, doctorID, date)
	if err != nil {
		return nil, wrapTransport("list schedule slots", err)
	}
	defer rows.Close()

	var result []ManualScheduleSlot
	for rows.Next() {
		sl, err := scanSlot(rows)
		if err != nil {
			return nil, wrapTransport("list schedule slots", err)
		}
		result = append(result, *sl)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapTransport("list schedule slots", err)
	}

	return result, nil
}

// Create inserts a new slot. Basic format checks are repeated here so
// the adapter is never the path through which an invalid range reaches
// the store, regardless of what the caller validated.
func (s *PgSlotStore) Create(ctx context.Context, doctorID, date, startTime, endTime, description string) (*ManualScheduleSlot, error) {
	if !ValidDate(date) {
		return nil, &ValidationError{Field: "date", Reason: "must be a real YYYY-MM-DD date"}
	}
	if !ValidSlotRange(startTime, endTime) {
		return nil, &ValidationError{Field: "time range", Reason: "end must be after start, both HH:MM"}
	}

	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	id := uuid.New()

	var desc *string
	if description != "" {
		desc = &description
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO schedule_slots (id, doctor_id, date, start_time, end_time, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING `+slotColumns+`
	`, id, doctorID, date, startTime, endTime, desc, SlotStatusAvailable)

	sl, err := scanSlot(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &ConflictError{
				DoctorID:  doctorID,
				Date:      date,
				StartTime: startTime,
				EndTime:   endTime,
			}
		}
		return nil, wrapTransport("create schedule slot", err)
	}
	return sl, nil
}

// Delete removes the slot and returns the deleted row so the caller can
// publish a change event naming the owning doctor.
func (s *PgSlotStore) Delete(ctx context.Context, id uuid.UUID) (*ManualScheduleSlot, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	row := s.pool.QueryRow(ctx, `
		DELETE FROM schedule_slots
		WHERE id = $1
		RETURNING `+slotColumns+`
	`, id)

	sl, err := scanSlot(row)
	if err != nil {
		return nil, wrapTransport("delete schedule slot", err)
	}
	return sl, nil
}
