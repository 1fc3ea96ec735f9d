package domain

import (
	"fmt"
	"time"
)

// Window is the half-open range [Start, End) of order creation times that are
// eligible for a disbursement.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow returns the window closed by the UTC day of reference. The
// reference day itself is never included: orders of the day in progress wait
// for the next run.
func NewWindow(reference time.Time, frequency Frequency) (Window, error) {
	day := StartOfDay(reference)

	switch frequency {
	case FrequencyDaily:
		return Window{Start: day.AddDate(0, 0, -1), End: day}, nil
	case FrequencyWeekly:
		return Window{Start: day.AddDate(0, 0, -7), End: day}, nil
	default:
		return Window{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, frequency)
	}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthBounds returns [first day of month, first day of next month) in UTC.
func MonthBounds(month, year int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: got %d", ErrInvalidMonth, month)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

// PreviousMonth returns the month and year preceding t.
func PreviousMonth(t time.Time) (int, int) {
	first := time.Date(t.UTC().Year(), t.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := first.AddDate(0, -1, 0)
	return int(prev.Month()), prev.Year()
}
