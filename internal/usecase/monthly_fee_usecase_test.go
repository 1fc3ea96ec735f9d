package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/gopayout/internal/domain"
	"github.com/iho/gopayout/internal/usecase"
	"github.com/iho/gopayout/internal/usecase/mocks"
)

type monthlyFeeMocks struct {
	txManager     *mocks.MockTransactionManager
	tx            *mocks.MockTransaction
	merchants     *mocks.MockMerchantRepository
	disbursements *mocks.MockDisbursementRepository
	adjustments   *mocks.MockFeeAdjustmentRepository
	outbox        *mocks.MockOutboxRepository
	idGen         *mocks.MockIDGenerator
	stats         usecase.StatsInvalidator
}

func newMonthlyFeeMocks(ctrl *gomock.Controller) *monthlyFeeMocks {
	return &monthlyFeeMocks{
		txManager:     mocks.NewMockTransactionManager(ctrl),
		tx:            mocks.NewMockTransaction(ctrl),
		merchants:     mocks.NewMockMerchantRepository(ctrl),
		disbursements: mocks.NewMockDisbursementRepository(ctrl),
		adjustments:   mocks.NewMockFeeAdjustmentRepository(ctrl),
		outbox:        mocks.NewMockOutboxRepository(ctrl),
		idGen:         mocks.NewMockIDGenerator(ctrl),
	}
}

func (m *monthlyFeeMocks) useCase() *usecase.MonthlyFeeUseCase {
	return usecase.NewMonthlyFeeUseCase(usecase.MonthlyFeeConfig{
		TxManager:     m.txManager,
		Merchants:     m.merchants,
		Disbursements: m.disbursements,
		Adjustments:   m.adjustments,
		Outbox:        m.outbox,
		IDGen:         m.idGen,
		Stats:         m.stats,
		Logger:        zerolog.Nop(),
		BatchSize:     10,
	})
}

func (m *monthlyFeeMocks) expectCreated() {
	m.idGen.EXPECT().Generate().Return("adj-1")
	m.idGen.EXPECT().Generate().Return("ev-1")
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.adjustments.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(true, nil)
	m.outbox.EXPECT().
		Create(gomock.Any(), m.tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ usecase.Transaction, ev *domain.OutboxEvent) error {
			if ev.EventType != domain.EventTypeMonthlyFeeAdjusted {
				return errors.New("unexpected event type " + ev.EventType)
			}
			return nil
		})
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
}

func TestMonthlyFeeUseCase_Process(t *testing.T) {
	merchant := &domain.Merchant{ID: "m-1", Reference: "acme", MinimumMonthlyFeeCents: 2900}

	tests := []struct {
		name       string
		setup      func(m *monthlyFeeMocks)
		wantAmount int64 // 0 means no adjustment
	}{
		{
			name: "fees below minimum",
			setup: func(m *monthlyFeeMocks) {
				m.adjustments.EXPECT().Exists(gomock.Any(), "m-1", 1, 2023).Return(false, nil)
				m.disbursements.EXPECT().TotalFeesForMonth(gomock.Any(), "m-1", 1, 2023).Return(int64(1500), true, nil)
				m.expectCreated()
			},
			wantAmount: 1400,
		},
		{
			name: "no disbursements charges the full minimum",
			setup: func(m *monthlyFeeMocks) {
				m.adjustments.EXPECT().Exists(gomock.Any(), "m-1", 1, 2023).Return(false, nil)
				m.disbursements.EXPECT().TotalFeesForMonth(gomock.Any(), "m-1", 1, 2023).Return(int64(0), false, nil)
				m.expectCreated()
			},
			wantAmount: 2900,
		},
		{
			name: "fees reach minimum",
			setup: func(m *monthlyFeeMocks) {
				m.adjustments.EXPECT().Exists(gomock.Any(), "m-1", 1, 2023).Return(false, nil)
				m.disbursements.EXPECT().TotalFeesForMonth(gomock.Any(), "m-1", 1, 2023).Return(int64(3000), true, nil)
			},
		},
		{
			name: "adjustment already exists",
			setup: func(m *monthlyFeeMocks) {
				m.adjustments.EXPECT().Exists(gomock.Any(), "m-1", 1, 2023).Return(true, nil)
			},
		},
		{
			name: "concurrent insert wins",
			setup: func(m *monthlyFeeMocks) {
				m.adjustments.EXPECT().Exists(gomock.Any(), "m-1", 1, 2023).Return(false, nil)
				m.disbursements.EXPECT().TotalFeesForMonth(gomock.Any(), "m-1", 1, 2023).Return(int64(100), true, nil)
				m.idGen.EXPECT().Generate().Return("adj-1")
				m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
				m.adjustments.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(false, nil)
				m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := newMonthlyFeeMocks(ctrl)
			tt.setup(m)

			adj, err := m.useCase().Process(context.Background(), merchant, 1, 2023)
			require.NoError(t, err)

			if tt.wantAmount == 0 {
				assert.Nil(t, adj)
				return
			}
			require.NotNil(t, adj)
			assert.Equal(t, tt.wantAmount, adj.AmountCents)
			assert.Equal(t, "m-1", adj.MerchantID)
			assert.Equal(t, 1, adj.Month)
			assert.Equal(t, 2023, adj.Year)
		})
	}
}

func TestMonthlyFeeUseCase_Process_InvalidMonth(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newMonthlyFeeMocks(ctrl)

	_, err := m.useCase().Process(context.Background(), &domain.Merchant{ID: "m-1"}, 13, 2023)
	require.ErrorIs(t, err, domain.ErrInvalidMonth)
}

func TestMonthlyFeeUseCase_ProcessMonth(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newMonthlyFeeMocks(ctrl)
	ctx := context.Background()

	merchants := []*domain.Merchant{
		{ID: "m-1", Reference: "one", LiveOn: day(2022, 6, 1), MinimumMonthlyFeeCents: 2900},
		{ID: "m-2", Reference: "two", LiveOn: day(2022, 6, 1), MinimumMonthlyFeeCents: 2900},
		// goes live after January, never charged for it
		{ID: "m-3", Reference: "three", LiveOn: day(2023, 2, 1), MinimumMonthlyFeeCents: 2900},
	}

	m.merchants.EXPECT().List(ctx, "", 10).Return(merchants, nil)

	m.adjustments.EXPECT().Exists(gomock.Any(), "m-1", 1, 2023).Return(false, nil)
	m.disbursements.EXPECT().TotalFeesForMonth(gomock.Any(), "m-1", 1, 2023).Return(int64(1500), true, nil)
	m.expectCreated()

	m.adjustments.EXPECT().Exists(gomock.Any(), "m-2", 1, 2023).Return(false, errors.New("timeout"))

	result, err := m.useCase().ProcessMonth(ctx, 1, 2023)
	require.NoError(t, err)

	require.Len(t, result.Created, 1)
	assert.Equal(t, int64(1400), result.Created[0].AmountCents)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "m-2", result.Failed[0].MerchantID)
}

func TestMonthlyFeeUseCase_ProcessPreviousMonth(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newMonthlyFeeMocks(ctrl)
	ctx := context.Background()

	m.merchants.EXPECT().List(ctx, "", 10).Return(nil, nil)

	result, err := m.useCase().ProcessPreviousMonth(ctx, day(2023, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 12, result.Month)
	assert.Equal(t, 2022, result.Year)
}

func TestMonthlyFeeUseCase_ProcessMonth_InvalidatesStatsOfTheYear(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newMonthlyFeeMocks(ctrl)
	stats := mocks.NewMockStatsInvalidator(ctrl)
	m.stats = stats
	ctx := context.Background()

	m.merchants.EXPECT().List(ctx, "", 10).Return([]*domain.Merchant{
		{ID: "m-1", Reference: "one", LiveOn: day(2022, 6, 1), MinimumMonthlyFeeCents: 2900},
	}, nil)
	m.adjustments.EXPECT().Exists(gomock.Any(), "m-1", 12, 2022).Return(false, nil)
	m.disbursements.EXPECT().TotalFeesForMonth(gomock.Any(), "m-1", 12, 2022).Return(int64(0), false, nil)
	m.expectCreated()

	stats.EXPECT().Invalidate(ctx, 2022)

	result, err := m.useCase().ProcessMonth(ctx, 12, 2022)
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	assert.Equal(t, int64(2900), result.Created[0].AmountCents)
}

func TestMonthlyFeeUseCase_ProcessMonth_NoAdjustmentKeepsStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newMonthlyFeeMocks(ctrl)
	m.stats = mocks.NewMockStatsInvalidator(ctrl)
	ctx := context.Background()

	m.merchants.EXPECT().List(ctx, "", 10).Return([]*domain.Merchant{
		{ID: "m-1", Reference: "one", LiveOn: day(2022, 6, 1), MinimumMonthlyFeeCents: 2900},
	}, nil)
	m.adjustments.EXPECT().Exists(gomock.Any(), "m-1", 12, 2022).Return(true, nil)

	result, err := m.useCase().ProcessMonth(ctx, 12, 2022)
	require.NoError(t, err)
	assert.Empty(t, result.Created)
	assert.Equal(t, 1, result.Skipped)
}
