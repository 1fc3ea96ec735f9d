package domain

import "time"

// MonthlyFeeAdjustment tops up a merchant's fees to the contractual minimum
// for one calendar month.
type MonthlyFeeAdjustment struct {
	CreatedAt   time.Time
	ID          string
	MerchantID  string
	AmountCents int64
	Month       int
	Year        int
}

// MonthlyFeeDeficit returns how much is missing to reach the minimum, or 0.
func MonthlyFeeDeficit(minimumCents, collectedCents int64) int64 {
	if d := minimumCents - collectedCents; d > 0 {
		return d
	}
	return 0
}
