package schedule

import (
	"time"
)

// Wall-clock layouts used throughout the service. All times are local;
// the practice runs in a single timezone.
const (
	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04"
	PostponeLayout = "2006-01-02 15:04"
)

// ValidDate reports whether s is a YYYY-MM-DD string naming a real
// calendar date. time.Parse already rejects out-of-range days such as
// 2025-02-30.
func ValidDate(s string) bool {
	_, err := time.ParseInLocation(DateLayout, s, time.Local)
	return err == nil
}

// parseClock parses a strict two-digit HH:MM time. time.Parse alone
// accepts single-digit hours like "8:30", so the shape is checked first.
func parseClock(s string) (time.Time, bool) {
	if len(s) != 5 || s[2] != ':' {
		return time.Time{}, false
	}
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ValidClock reports whether s is a HH:MM 24-hour time.
func ValidClock(s string) bool {
	_, ok := parseClock(s)
	return ok
}

// ValidSlotRange reports whether start and end form a usable slot:
// both HH:MM and end strictly after start on the same nominal day.
// Overnight and zero-length slots are not supported.
func ValidSlotRange(start, end string) bool {
	st, ok := parseClock(start)
	if !ok {
		return false
	}
	et, ok := parseClock(end)
	if !ok {
		return false
	}
	return et.After(st)
}

// CombineDateClock builds the sort key for a manual slot from its date
// and start time.
func CombineDateClock(date, clock string) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, time.Local)
}

// ParsePostponeTime parses the doctor-supplied new time for a postpone
// action. The empty string and unparseable values fail with a
// ValidationError before any store round trip.
func ParsePostponeTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, &ValidationError{Field: "new_time", Reason: "required for postpone"}
	}
	t, err := time.ParseInLocation(PostponeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "new_time", Reason: "must be YYYY-MM-DD HH:MM"}
	}
	return t, nil
}
