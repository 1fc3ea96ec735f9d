package postgres

import (
	"context"

	"github.com/iho/gopayout/internal/domain"
	"github.com/iho/gopayout/internal/infrastructure/postgres/generated"
	"github.com/iho/gopayout/internal/usecase"
)

// OrderRepository implements usecase.OrderRepository.
type OrderRepository struct{}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

// FindPending locks and returns the merchant's pending orders created inside
// window, oldest first.
func (r *OrderRepository) FindPending(ctx context.Context, tx usecase.Transaction, merchantReference string, window domain.Window) ([]*domain.Order, error) {
	rows, err := queriesFor(tx).FindPendingOrdersForUpdate(ctx, generated.FindPendingOrdersForUpdateParams{
		MerchantReference: merchantReference,
		WindowStart:       timeToPgTimestamptz(window.Start),
		WindowEnd:         timeToPgTimestamptz(window.End),
	})
	if err != nil {
		return nil, err
	}

	return rowsToOrders(rows), nil
}

func rowsToOrders(rows []generated.Order) []*domain.Order {
	orders := make([]*domain.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, &domain.Order{
			ID:                  row.ID,
			MerchantReference:   row.MerchantReference,
			AmountCents:         row.AmountCents,
			PendingDisbursement: row.PendingDisbursement,
			DisbursementID:      row.DisbursementID,
			CreatedAt:           row.CreatedAt.Time,
		})
	}
	return orders
}
