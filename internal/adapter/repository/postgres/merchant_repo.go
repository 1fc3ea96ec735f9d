package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/gopayout/internal/domain"
	"github.com/iho/gopayout/internal/infrastructure/postgres/generated"
)

// MerchantRepository implements usecase.MerchantRepository.
type MerchantRepository struct {
	queries *generated.Queries
}

// NewMerchantRepository creates a new MerchantRepository.
func NewMerchantRepository(db generated.DBTX) *MerchantRepository {
	return &MerchantRepository{queries: generated.New(db)}
}

// GetByID retrieves a merchant by ID.
func (r *MerchantRepository) GetByID(ctx context.Context, id string) (*domain.Merchant, error) {
	row, err := r.queries.GetMerchantByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMerchantNotFound
		}
		return nil, err
	}

	return rowToMerchant(row), nil
}

// ListEligible returns one page of the merchants due a disbursement on
// reference, ordered by ID.
func (r *MerchantRepository) ListEligible(ctx context.Context, reference time.Time, afterID string, limit int) ([]*domain.Merchant, error) {
	rows, err := r.queries.ListEligibleMerchants(ctx, generated.ListEligibleMerchantsParams{
		ReferenceDate: timeToPgDate(reference),
		AfterID:       afterID,
		RowLimit:      int32(limit),
	})
	if err != nil {
		return nil, err
	}

	return rowsToMerchants(rows), nil
}

// List returns one page of all merchants, ordered by ID.
func (r *MerchantRepository) List(ctx context.Context, afterID string, limit int) ([]*domain.Merchant, error) {
	rows, err := r.queries.ListMerchants(ctx, generated.ListMerchantsParams{
		AfterID:  afterID,
		RowLimit: int32(limit),
	})
	if err != nil {
		return nil, err
	}

	return rowsToMerchants(rows), nil
}

func rowsToMerchants(rows []generated.Merchant) []*domain.Merchant {
	merchants := make([]*domain.Merchant, 0, len(rows))
	for _, row := range rows {
		merchants = append(merchants, rowToMerchant(row))
	}
	return merchants
}

func rowToMerchant(row generated.Merchant) *domain.Merchant {
	// Unknown values are kept verbatim so the run reports them per merchant.
	frequency, err := domain.ParseFrequency(row.DisbursementFrequency)
	if err != nil {
		frequency = domain.Frequency(row.DisbursementFrequency)
	}

	return &domain.Merchant{
		ID:                     row.ID,
		Reference:              row.Reference,
		Email:                  row.Email,
		Frequency:              frequency,
		LiveOn:                 row.LiveOn.Time,
		MinimumMonthlyFeeCents: row.MinimumMonthlyFeeCents,
	}
}
