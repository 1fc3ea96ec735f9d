package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/gopayout/internal/domain"
	"github.com/iho/gopayout/internal/infrastructure/postgres/generated"
	"github.com/iho/gopayout/internal/usecase"
)

// DisbursementRepository implements usecase.DisbursementRepository.
type DisbursementRepository struct {
	queries *generated.Queries
}

// NewDisbursementRepository creates a new DisbursementRepository.
func NewDisbursementRepository(db generated.DBTX) *DisbursementRepository {
	return &DisbursementRepository{queries: generated.New(db)}
}

// Create inserts the disbursement and settles its orders within tx. It fails
// with domain.ErrOrderAlreadyDisbursed if any order was settled meanwhile.
func (r *DisbursementRepository) Create(ctx context.Context, tx usecase.Transaction, disbursement *domain.Disbursement) error {
	queries := queriesFor(tx)

	err := queries.CreateDisbursement(ctx, generated.CreateDisbursementParams{
		ID:              disbursement.ID,
		MerchantID:      disbursement.MerchantID,
		AmountCents:     disbursement.AmountCents,
		FeesAmountCents: disbursement.FeesAmountCents,
		DisbursedAt:     timeToPgTimestamptz(disbursement.DisbursedAt),
		CreatedAt:       timeToPgTimestamptz(disbursement.CreatedAt),
	})
	if err != nil {
		return err
	}

	ids := disbursement.OrderIDs()
	settled, err := queries.MarkOrdersDisbursed(ctx, generated.MarkOrdersDisbursedParams{
		DisbursementID: disbursement.ID,
		OrderIds:       ids,
	})
	if err != nil {
		return err
	}
	if settled != int64(len(ids)) {
		return fmt.Errorf("%w: settled %d of %d orders", domain.ErrOrderAlreadyDisbursed, settled, len(ids))
	}

	disbursementID := disbursement.ID
	for _, o := range disbursement.Orders {
		o.PendingDisbursement = false
		o.DisbursementID = &disbursementID
	}

	return nil
}

// GetByID retrieves a disbursement with its orders.
func (r *DisbursementRepository) GetByID(ctx context.Context, id string) (*domain.Disbursement, error) {
	row, err := r.queries.GetDisbursementByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDisbursementNotFound
		}
		return nil, err
	}

	orders, err := r.queries.ListOrdersByDisbursement(ctx, &row.ID)
	if err != nil {
		return nil, err
	}

	return &domain.Disbursement{
		ID:              row.ID,
		MerchantID:      row.MerchantID,
		AmountCents:     row.AmountCents,
		FeesAmountCents: row.FeesAmountCents,
		Orders:          rowsToOrders(orders),
		DisbursedAt:     row.DisbursedAt.Time,
		CreatedAt:       row.CreatedAt.Time,
	}, nil
}

// TotalFeesForMonth sums the fees of the merchant's disbursements disbursed
// in the UTC calendar month.
func (r *DisbursementRepository) TotalFeesForMonth(ctx context.Context, merchantID string, month, year int) (int64, bool, error) {
	start, end, err := domain.MonthBounds(month, year)
	if err != nil {
		return 0, false, err
	}

	row, err := r.queries.SumMerchantFeesForPeriod(ctx, generated.SumMerchantFeesForPeriodParams{
		MerchantID:  merchantID,
		PeriodStart: timeToPgTimestamptz(start),
		PeriodEnd:   timeToPgTimestamptz(end),
	})
	if err != nil {
		return 0, false, err
	}

	return row.FeesAmountCents, row.DisbursementCount > 0, nil
}

// PendingOrdersDateRange returns the creation range of the pending orders.
func (r *DisbursementRepository) PendingOrdersDateRange(ctx context.Context) (*domain.DateRange, error) {
	row, err := r.queries.GetPendingOrdersDateRange(ctx)
	if err != nil {
		return nil, err
	}
	return pgRange(row.MinCreatedAt, row.MaxCreatedAt), nil
}

// DisbursedDateRange returns the range of disbursed_at over all disbursements.
func (r *DisbursementRepository) DisbursedDateRange(ctx context.Context) (*domain.DateRange, error) {
	row, err := r.queries.GetDisbursedDateRange(ctx)
	if err != nil {
		return nil, err
	}
	return pgRange(row.MinDisbursedAt, row.MaxDisbursedAt), nil
}

// YearlyTotals aggregates the disbursements disbursed in year.
func (r *DisbursementRepository) YearlyTotals(ctx context.Context, year int) (int64, int64, int64, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)

	row, err := r.queries.GetDisbursementTotalsForPeriod(ctx, generated.GetDisbursementTotalsForPeriodParams{
		PeriodStart: timeToPgTimestamptz(start),
		PeriodEnd:   timeToPgTimestamptz(start.AddDate(1, 0, 0)),
	})
	if err != nil {
		return 0, 0, 0, err
	}

	return row.DisbursementCount, row.AmountCents, row.FeesAmountCents, nil
}
