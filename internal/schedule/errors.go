package schedule

import (
	"errors"
	"fmt"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrSlotNotFound        = errors.New("schedule slot not found")

	// ErrTerminalStatus is returned when a lifecycle action targets an
	// appointment that is already rejected or completed.
	ErrTerminalStatus = errors.New("appointment is in a terminal status")
)

// ValidationError reports malformed input caught before any store call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError reports a store-enforced uniqueness violation, currently
// only duplicate manual slots for the same doctor/date/time window.
type ConflictError struct {
	DoctorID  string
	Date      string
	StartTime string
	EndTime   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot %s %s-%s already exists for doctor %s",
		e.Date, e.StartTime, e.EndTime, e.DoctorID)
}

// TransportError wraps network, timeout, and unexpected store failures.
// Timeout is set when the adapter's per-call deadline elapsed.
type TransportError struct {
	Op      string
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: store call timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: store call failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// InvariantViolationError reports a mutation that would leave an
// accepted or postponed appointment without a final time.
type InvariantViolationError struct {
	AppointmentID string
	Reason        string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("appointment %s: %s", e.AppointmentID, e.Reason)
}
