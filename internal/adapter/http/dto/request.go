package dto

import (
	"fmt"
	"time"

	"github.com/iho/gopayout/internal/domain"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// RunDisbursementsRequest represents a request to run the disbursement batch.
type RunDisbursementsRequest struct {
	// Date is the reference day. Empty means now.
	Date string `json:"date,omitempty"`
}

// ReferenceDate parses Date. ok is false when no date was given.
func (r *RunDisbursementsRequest) ReferenceDate() (date time.Time, ok bool, err error) {
	if r.Date == "" {
		return time.Time{}, false, nil
	}
	date, err = time.Parse(DateLayout, r.Date)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return date, true, nil
}

// RunMonthlyFeesRequest represents a request to run the monthly minimum fee
// check. Zero month and year mean the previous calendar month.
type RunMonthlyFeesRequest struct {
	Month int `json:"month,omitempty"`
	Year  int `json:"year,omitempty"`
}

// Previous reports whether the previous calendar month was requested.
func (r *RunMonthlyFeesRequest) Previous() bool {
	return r.Month == 0 && r.Year == 0
}

// Validate checks month and year.
func (r *RunMonthlyFeesRequest) Validate() error {
	if r.Previous() {
		return nil
	}
	if r.Month < 1 || r.Month > 12 {
		return domain.ErrInvalidMonth
	}
	if r.Year <= 0 {
		return fmt.Errorf("year must be positive, got %d", r.Year)
	}
	return nil
}
