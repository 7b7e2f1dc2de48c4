package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// defaultAdapterTimeout bounds every store round trip when the caller
// did not configure one, so a hung connection surfaces as a
// TransportError instead of blocking forever.
const defaultAdapterTimeout = 10 * time.Second

func opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultAdapterTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// wrapTransport classifies a driver error: deadline expiry becomes a
// timeout TransportError, anything else a plain one. Sentinel and typed
// domain errors pass through untouched.
func wrapTransport(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAppointmentNotFound) || errors.Is(err, ErrSlotNotFound) {
		return err
	}
	var ce *ConflictError
	var ive *InvariantViolationError
	if errors.As(err, &ce) || errors.As(err, &ive) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Op: op, Timeout: true, Err: err}
	}
	return &TransportError{Op: op, Err: err}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
