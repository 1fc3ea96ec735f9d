package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency of every amount handled by the engine.
const Currency = "EUR"

// YearlyStats summarizes disbursement activity for one calendar year.
type YearlyStats struct {
	Year                  int   `json:"year"`
	DisbursementCount     int64 `json:"disbursement_count"`
	DisbursedAmountCents  int64 `json:"disbursed_amount_cents"`
	OrderFeesCents        int64 `json:"order_fees_cents"`
	MonthlyFeeCount       int64 `json:"monthly_fee_count"`
	MonthlyFeeAmountCents int64 `json:"monthly_fee_amount_cents"`
}

// DateRange is an inclusive range of UTC days.
type DateRange struct {
	Min time.Time
	Max time.Time
}

// Days returns every UTC day from Min to Max inclusive.
func (r DateRange) Days() []time.Time {
	var days []time.Time
	for d := StartOfDay(r.Min); !d.After(StartOfDay(r.Max)); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// CentsToDecimal converts minor units to a major-unit decimal.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatCents renders minor units as "12.34 €".
func FormatCents(cents int64) string {
	return CentsToDecimal(cents).StringFixed(2) + " €"
}
