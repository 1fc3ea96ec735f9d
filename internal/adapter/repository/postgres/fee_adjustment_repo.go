package postgres

import (
	"context"

	"github.com/iho/gopayout/internal/domain"
	"github.com/iho/gopayout/internal/infrastructure/postgres/generated"
	"github.com/iho/gopayout/internal/usecase"
)

// FeeAdjustmentRepository implements usecase.FeeAdjustmentRepository.
type FeeAdjustmentRepository struct {
	queries *generated.Queries
}

// NewFeeAdjustmentRepository creates a new FeeAdjustmentRepository.
func NewFeeAdjustmentRepository(db generated.DBTX) *FeeAdjustmentRepository {
	return &FeeAdjustmentRepository{queries: generated.New(db)}
}

// Exists reports whether the merchant already has an adjustment for the month.
func (r *FeeAdjustmentRepository) Exists(ctx context.Context, merchantID string, month, year int) (bool, error) {
	return r.queries.MonthlyFeeAdjustmentExists(ctx, generated.MonthlyFeeAdjustmentExistsParams{
		MerchantID: merchantID,
		Month:      int32(month),
		Year:       int32(year),
	})
}

// Create inserts the adjustment. The unique (merchant_id, month, year) index
// turns a duplicate into a no-op, reported as false.
func (r *FeeAdjustmentRepository) Create(ctx context.Context, tx usecase.Transaction, adjustment *domain.MonthlyFeeAdjustment) (bool, error) {
	inserted, err := queriesFor(tx).CreateMonthlyFeeAdjustment(ctx, generated.CreateMonthlyFeeAdjustmentParams{
		ID:          adjustment.ID,
		MerchantID:  adjustment.MerchantID,
		AmountCents: adjustment.AmountCents,
		Month:       int32(adjustment.Month),
		Year:        int32(adjustment.Year),
		CreatedAt:   timeToPgTimestamptz(adjustment.CreatedAt),
	})
	if err != nil {
		return false, err
	}

	return inserted == 1, nil
}

// YearlyTotals aggregates the adjustments of year.
func (r *FeeAdjustmentRepository) YearlyTotals(ctx context.Context, year int) (int64, int64, error) {
	row, err := r.queries.GetMonthlyFeeAdjustmentTotalsForYear(ctx, int32(year))
	if err != nil {
		return 0, 0, err
	}
	return row.AdjustmentCount, row.AmountCents, nil
}
