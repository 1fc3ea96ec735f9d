package domain

import "github.com/shopspring/decimal"

// FeeTier is a rate applied to order amounts at or above MinCents.
type FeeTier struct {
	MinCents int64
	Rate     decimal.Decimal
}

// DefaultFeeTiers is the regressive schedule, ordered by MinCents descending.
var DefaultFeeTiers = []FeeTier{
	{MinCents: 30000, Rate: decimal.RequireFromString("0.0085")},
	{MinCents: 5000, Rate: decimal.RequireFromString("0.0095")},
	{MinCents: 0, Rate: decimal.RequireFromString("0.01")},
}

// FeeCalculator computes processing fees for orders.
type FeeCalculator struct {
	tiers []FeeTier
}

// NewFeeCalculator creates a FeeCalculator with the default tiers.
func NewFeeCalculator() *FeeCalculator {
	return &FeeCalculator{tiers: DefaultFeeTiers}
}

// RateFor returns the rate applied to an amount in minor units.
func (c *FeeCalculator) RateFor(amountCents int64) decimal.Decimal {
	for _, tier := range c.tiers {
		if amountCents >= tier.MinCents {
			return tier.Rate
		}
	}
	// below the lowest bound (negative amounts)
	return c.tiers[len(c.tiers)-1].Rate
}

// FeeFor returns the fee of a single order, rounded half-up to a whole cent.
func (c *FeeCalculator) FeeFor(amountCents int64) int64 {
	fee := decimal.NewFromInt(amountCents).Mul(c.RateFor(amountCents))
	return fee.Round(0).IntPart()
}

// TotalFee sums the per-order fees. Each order is charged on its own amount.
func (c *FeeCalculator) TotalFee(orders []*Order) int64 {
	var total int64
	for _, o := range orders {
		total += c.FeeFor(o.AmountCents)
	}
	return total
}
