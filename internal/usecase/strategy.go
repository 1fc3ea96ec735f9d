package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/gopayout/internal/domain"
)

// Strategy computes and persists one merchant's disbursement for a reference
// date. Implementations differ only in which orders they pick up.
type Strategy interface {
	FetchOrders(ctx context.Context, tx Transaction) ([]*domain.Order, error)
	// ComputeAndCreate returns a nil disbursement and nil error when there is
	// nothing to pay out.
	ComputeAndCreate(ctx context.Context, tx Transaction) (*domain.Disbursement, error)
}

// StrategyDeps are the collaborators shared by every strategy.
type StrategyDeps struct {
	Orders        OrderRepository
	Disbursements DisbursementRepository
	Outbox        OutboxRepository
	IDGen         IDGenerator
	Fees          *domain.FeeCalculator
	// DisbursedAt stamps new disbursements. Defaults to the wall clock.
	DisbursedAt func() time.Time
}

// NewStrategy selects the strategy matching the merchant's frequency.
func NewStrategy(frequency domain.Frequency, merchant *domain.Merchant, reference time.Time, deps StrategyDeps) (Strategy, error) {
	if deps.Fees == nil {
		deps.Fees = domain.NewFeeCalculator()
	}
	if deps.DisbursedAt == nil {
		deps.DisbursedAt = func() time.Time { return time.Now().UTC() }
	}

	base := strategy{merchant: merchant, reference: reference, deps: deps}

	switch frequency {
	case domain.FrequencyDaily:
		return &DailyStrategy{strategy: base}, nil
	case domain.FrequencyWeekly:
		return &WeeklyStrategy{strategy: base}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidFrequency, frequency)
	}
}

type strategy struct {
	merchant  *domain.Merchant
	reference time.Time
	deps      StrategyDeps
}

func (s *strategy) findPending(ctx context.Context, tx Transaction, frequency domain.Frequency) ([]*domain.Order, error) {
	window, err := domain.NewWindow(s.reference, frequency)
	if err != nil {
		return nil, err
	}

	orders, err := s.deps.Orders.FindPending(ctx, tx, s.merchant.Reference, window)
	if err != nil {
		return nil, fmt.Errorf("find pending orders: %w", err)
	}

	return orders, nil
}

func (s *strategy) create(ctx context.Context, tx Transaction, orders []*domain.Order) (*domain.Disbursement, error) {
	if len(orders) == 0 {
		return nil, nil
	}

	attrs := domain.DisbursementAttributes{
		MerchantID:      s.merchant.ID,
		AmountCents:     domain.SumAmounts(orders),
		FeesAmountCents: s.deps.Fees.TotalFee(orders),
		Orders:          orders,
		DisbursedAt:     s.deps.DisbursedAt(),
	}

	if err := attrs.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	disbursement := &domain.Disbursement{
		ID:              s.deps.IDGen.Generate(),
		MerchantID:      attrs.MerchantID,
		AmountCents:     attrs.AmountCents,
		FeesAmountCents: attrs.FeesAmountCents,
		Orders:          attrs.Orders,
		DisbursedAt:     attrs.DisbursedAt,
		CreatedAt:       now,
	}

	if err := s.deps.Disbursements.Create(ctx, tx, disbursement); err != nil {
		return nil, fmt.Errorf("create disbursement: %w", err)
	}

	if s.deps.Outbox != nil {
		event := domain.NewDisbursementCreatedEvent(s.deps.IDGen.Generate(), disbursement, now)
		if err := s.deps.Outbox.Create(ctx, tx, event); err != nil {
			return nil, fmt.Errorf("create outbox event: %w", err)
		}
	}

	return disbursement, nil
}

// DailyStrategy pays out the previous day's orders on every run.
type DailyStrategy struct {
	strategy
}

// FetchOrders returns the pending orders of the previous UTC day.
func (s *DailyStrategy) FetchOrders(ctx context.Context, tx Transaction) ([]*domain.Order, error) {
	return s.findPending(ctx, tx, domain.FrequencyDaily)
}

// ComputeAndCreate implements Strategy.
func (s *DailyStrategy) ComputeAndCreate(ctx context.Context, tx Transaction) (*domain.Disbursement, error) {
	orders, err := s.FetchOrders(ctx, tx)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, tx, orders)
}

// WeeklyStrategy pays out the last seven days of orders, once a week, on the
// weekday the merchant went live.
type WeeklyStrategy struct {
	strategy
}

// FetchOrders returns nothing, without querying, unless reference falls on
// the merchant's pay day.
func (s *WeeklyStrategy) FetchOrders(ctx context.Context, tx Transaction) ([]*domain.Order, error) {
	if s.reference.UTC().Weekday() != s.merchant.WeeklyPayDay() {
		return nil, nil
	}
	return s.findPending(ctx, tx, domain.FrequencyWeekly)
}

// ComputeAndCreate implements Strategy.
func (s *WeeklyStrategy) ComputeAndCreate(ctx context.Context, tx Transaction) (*domain.Disbursement, error) {
	orders, err := s.FetchOrders(ctx, tx)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, tx, orders)
}
