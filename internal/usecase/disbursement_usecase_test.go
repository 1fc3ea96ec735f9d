package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/gopayout/internal/domain"
	"github.com/iho/gopayout/internal/usecase"
	"github.com/iho/gopayout/internal/usecase/mocks"
)

type disbursementMocks struct {
	strategyMocks
	txManager *mocks.MockTransactionManager
	merchants *mocks.MockMerchantRepository
	recorder  *mocks.MockRecorder
	stats     usecase.StatsInvalidator
}

func newDisbursementMocks(ctrl *gomock.Controller) *disbursementMocks {
	return &disbursementMocks{
		strategyMocks: *newStrategyMocks(ctrl),
		txManager:     mocks.NewMockTransactionManager(ctrl),
		merchants:     mocks.NewMockMerchantRepository(ctrl),
		recorder:      mocks.NewMockRecorder(ctrl),
	}
}

func (m *disbursementMocks) useCase(batchSize int) *usecase.DisbursementUseCase {
	return usecase.NewDisbursementUseCase(usecase.DisbursementConfig{
		TxManager:     m.txManager,
		Merchants:     m.merchants,
		Orders:        m.orders,
		Disbursements: m.disbursements,
		Outbox:        m.outbox,
		IDGen:         m.idGen,
		Recorder:      m.recorder,
		Stats:         m.stats,
		Logger:        zerolog.Nop(),
		BatchSize:     batchSize,
	})
}

func TestDisbursementUseCase_Run_IsolatesMerchantFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newDisbursementMocks(ctrl)
	ctx := context.Background()
	reference := day(2023, 2, 10)

	failing := &domain.Merchant{ID: "m-a", Reference: "alpha", Frequency: domain.FrequencyDaily}
	healthy := &domain.Merchant{ID: "m-b", Reference: "bravo", Frequency: domain.FrequencyDaily}

	m.merchants.EXPECT().ListEligible(ctx, reference, "", 10).Return([]*domain.Merchant{failing, healthy}, nil)

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil).Times(2)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil).Times(2)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil).Times(1)

	m.orders.EXPECT().FindPending(gomock.Any(), m.tx, "alpha", gomock.Any()).Return(nil, errors.New("lock timeout"))
	m.orders.EXPECT().FindPending(gomock.Any(), m.tx, "bravo", gomock.Any()).Return([]*domain.Order{
		{ID: "o-1", MerchantReference: "bravo", AmountCents: 10000},
	}, nil)
	m.idGen.EXPECT().Generate().Return("id").Times(2)
	m.disbursements.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.outbox.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)

	m.recorder.EXPECT().DisbursementCreated(gomock.Any())
	m.recorder.EXPECT().MerchantFailed(usecase.JobDisbursements, usecase.FailureStorage)
	m.recorder.EXPECT().BatchCompleted(usecase.JobDisbursements, gomock.Any(), 1, 1)

	result, err := m.useCase(10).Run(ctx, reference.Add(5*time.Hour))
	require.NoError(t, err)

	require.Len(t, result.Successful, 1)
	assert.Equal(t, "m-b", result.Successful[0].MerchantID)
	assert.Equal(t, int64(95), result.Successful[0].FeesAmountCents)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, "m-a", result.Failed[0].MerchantID)
	assert.Equal(t, "alpha", result.Failed[0].Reference)
	assert.Equal(t, reference, result.ReferenceDate)
}

func TestDisbursementUseCase_Run_InvalidFrequency(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newDisbursementMocks(ctrl)
	ctx := context.Background()
	reference := day(2023, 2, 10)

	m.merchants.EXPECT().ListEligible(ctx, reference, "", 10).Return([]*domain.Merchant{
		{ID: "m-x", Reference: "xray", Frequency: domain.Frequency("monthly")},
	}, nil)
	m.recorder.EXPECT().MerchantFailed(usecase.JobDisbursements, usecase.FailureInvalidFrequency)
	m.recorder.EXPECT().BatchCompleted(usecase.JobDisbursements, gomock.Any(), 0, 1)

	result, err := m.useCase(10).Run(ctx, reference)
	require.NoError(t, err)

	require.Len(t, result.Failed, 1)
	assert.ErrorIs(t, result.Failed[0].Err, domain.ErrInvalidFrequency)
	assert.Empty(t, result.Successful)
}

func TestDisbursementUseCase_Run_RecoversPanic(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newDisbursementMocks(ctrl)
	ctx := context.Background()
	reference := day(2023, 2, 10)

	m.merchants.EXPECT().ListEligible(ctx, reference, "", 10).Return([]*domain.Merchant{
		{ID: "m-a", Reference: "alpha", Frequency: domain.FrequencyDaily},
	}, nil)
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.orders.EXPECT().
		FindPending(gomock.Any(), m.tx, "alpha", gomock.Any()).
		DoAndReturn(func(context.Context, usecase.Transaction, string, domain.Window) ([]*domain.Order, error) {
			panic("boom")
		})
	m.recorder.EXPECT().MerchantFailed(usecase.JobDisbursements, usecase.FailurePanic)
	m.recorder.EXPECT().BatchCompleted(usecase.JobDisbursements, gomock.Any(), 0, 1)

	result, err := m.useCase(10).Run(ctx, reference)
	require.NoError(t, err)

	require.Len(t, result.Failed, 1)
	assert.ErrorIs(t, result.Failed[0].Err, usecase.ErrMerchantPanic)
}

func TestDisbursementUseCase_Run_Pages(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newDisbursementMocks(ctrl)
	ctx := context.Background()
	reference := day(2023, 2, 10)

	first := []*domain.Merchant{
		{ID: "m-1", Reference: "one", Frequency: domain.FrequencyDaily},
		{ID: "m-2", Reference: "two", Frequency: domain.FrequencyDaily},
	}
	second := []*domain.Merchant{
		{ID: "m-3", Reference: "three", Frequency: domain.FrequencyDaily},
	}

	gomock.InOrder(
		m.merchants.EXPECT().ListEligible(ctx, reference, "", 2).Return(first, nil),
		m.merchants.EXPECT().ListEligible(ctx, reference, "m-2", 2).Return(second, nil),
	)

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil).Times(3)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil).Times(3)
	m.orders.EXPECT().FindPending(gomock.Any(), m.tx, gomock.Any(), gomock.Any()).Return(nil, nil).Times(3)
	m.recorder.EXPECT().BatchCompleted(usecase.JobDisbursements, gomock.Any(), 0, 0)

	result, err := m.useCase(2).Run(ctx, reference)
	require.NoError(t, err)
	assert.Empty(t, result.Successful)
	assert.Empty(t, result.Failed)
}

func TestDisbursementUseCase_Run_PageFetchFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newDisbursementMocks(ctrl)
	ctx := context.Background()
	reference := day(2023, 2, 10)
	dbErr := errors.New("database unavailable")

	m.merchants.EXPECT().ListEligible(ctx, reference, "", 10).Return(nil, dbErr)

	result, err := m.useCase(10).Run(ctx, reference)
	require.ErrorIs(t, err, dbErr)
	require.NotNil(t, result)
	assert.Empty(t, result.Successful)
}

func TestDisbursementUseCase_RunHistorical_StampsReferenceDay(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newDisbursementMocks(ctrl)
	ctx := context.Background()
	reference := day(2022, 11, 30)

	m.merchants.EXPECT().ListEligible(ctx, reference, "", 10).Return([]*domain.Merchant{
		{ID: "m-1", Reference: "one", Frequency: domain.FrequencyDaily},
	}, nil)
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.orders.EXPECT().FindPending(gomock.Any(), m.tx, "one", gomock.Any()).Return([]*domain.Order{
		{ID: "o-1", MerchantReference: "one", AmountCents: 100},
	}, nil)
	m.idGen.EXPECT().Generate().Return("id").Times(2)
	m.disbursements.EXPECT().
		Create(gomock.Any(), m.tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ usecase.Transaction, d *domain.Disbursement) error {
			assert.Equal(t, reference, d.DisbursedAt)
			return nil
		})
	m.outbox.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.recorder.EXPECT().DisbursementCreated(gomock.Any())
	m.recorder.EXPECT().BatchCompleted(usecase.JobDisbursements, gomock.Any(), 1, 0)

	result, err := m.useCase(10).RunHistorical(ctx, reference)
	require.NoError(t, err)
	require.Len(t, result.Successful, 1)
	assert.Equal(t, reference, result.Successful[0].DisbursedAt)
}

func TestDisbursementUseCase_RunHistorical_InvalidatesStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newDisbursementMocks(ctrl)
	stats := mocks.NewMockStatsInvalidator(ctrl)
	m.stats = stats
	ctx := context.Background()
	reference := day(2022, 12, 31)

	m.merchants.EXPECT().ListEligible(ctx, reference, "", 10).Return([]*domain.Merchant{
		{ID: "m-1", Reference: "one", Frequency: domain.FrequencyDaily},
		{ID: "m-2", Reference: "two", Frequency: domain.FrequencyDaily},
	}, nil)
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil).Times(2)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil).Times(2)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil).Times(2)
	m.orders.EXPECT().FindPending(gomock.Any(), m.tx, gomock.Any(), gomock.Any()).Return([]*domain.Order{
		{ID: "o-1", AmountCents: 100},
	}, nil).Times(2)
	m.idGen.EXPECT().Generate().Return("id").Times(4)
	m.disbursements.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil).Times(2)
	m.outbox.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil).Times(2)
	m.recorder.EXPECT().DisbursementCreated(gomock.Any()).Times(2)
	m.recorder.EXPECT().BatchCompleted(usecase.JobDisbursements, gomock.Any(), 2, 0)

	// both disbursements are dated 2022: one invalidation for the year
	stats.EXPECT().Invalidate(ctx, 2022)

	result, err := m.useCase(10).RunHistorical(ctx, reference)
	require.NoError(t, err)
	assert.Len(t, result.Successful, 2)
}

func TestDisbursementUseCase_Run_NothingCreatedKeepsStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newDisbursementMocks(ctrl)
	m.stats = mocks.NewMockStatsInvalidator(ctrl)
	ctx := context.Background()
	reference := day(2023, 1, 2)

	m.merchants.EXPECT().ListEligible(ctx, reference, "", 10).Return(nil, nil)
	m.recorder.EXPECT().BatchCompleted(usecase.JobDisbursements, gomock.Any(), 0, 0)

	result, err := m.useCase(10).Run(ctx, reference)
	require.NoError(t, err)
	assert.Empty(t, result.Successful)
}

func TestDisbursementUseCase_Run_ValidationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newDisbursementMocks(ctrl)
	ctx := context.Background()
	reference := day(2023, 2, 10)

	m.merchants.EXPECT().ListEligible(ctx, reference, "", 10).Return([]*domain.Merchant{
		{ID: "m-1", Reference: "one", Frequency: domain.FrequencyDaily},
	}, nil)
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	// A refund-like negative order yields a negative amount.
	m.orders.EXPECT().FindPending(gomock.Any(), m.tx, "one", gomock.Any()).Return([]*domain.Order{
		{ID: "o-1", MerchantReference: "one", AmountCents: -500},
	}, nil)
	m.recorder.EXPECT().MerchantFailed(usecase.JobDisbursements, usecase.FailureValidation)
	m.recorder.EXPECT().BatchCompleted(usecase.JobDisbursements, gomock.Any(), 0, 1)

	result, err := m.useCase(10).Run(ctx, reference)
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)

	var verr *domain.ValidationError
	require.ErrorAs(t, result.Failed[0].Err, &verr)
	assert.ErrorIs(t, result.Failed[0].Err, domain.ErrValidation)
}
