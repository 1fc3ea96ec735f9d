package domain

import (
	"fmt"
	"strings"
	"time"
)

// Frequency is how often a merchant is paid out.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// ParseFrequency normalizes a stored or user-supplied frequency value.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFrequency, s)
	}
	return f, nil
}

// Valid reports whether f is a supported frequency.
func (f Frequency) Valid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}

// Merchant is the disbursement view of a merchant.
type Merchant struct {
	ID                     string
	Reference              string
	Email                  string
	Frequency              Frequency
	LiveOn                 time.Time
	MinimumMonthlyFeeCents int64
}

// WeeklyPayDay is the weekday a weekly merchant is paid on: the weekday it
// went live.
func (m *Merchant) WeeklyPayDay() time.Weekday {
	return m.LiveOn.UTC().Weekday()
}
