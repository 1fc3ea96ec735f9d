package domain

import "time"

// Order is a merchant order waiting to be paid out.
type Order struct {
	CreatedAt           time.Time
	ID                  string
	MerchantReference   string
	DisbursementID      *string
	AmountCents         int64
	PendingDisbursement bool
}

// SumAmounts returns the total of the order amounts.
func SumAmounts(orders []*Order) int64 {
	var total int64
	for _, o := range orders {
		total += o.AmountCents
	}
	return total
}
