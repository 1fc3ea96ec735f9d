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

type fakeHistoricalRunner struct {
	days   []time.Time
	failOn time.Time
}

func (f *fakeHistoricalRunner) RunHistorical(_ context.Context, reference time.Time) (*usecase.BatchResult, error) {
	f.days = append(f.days, reference)
	if reference.Equal(f.failOn) {
		return nil, errors.New("database unavailable")
	}
	return &usecase.BatchResult{
		ReferenceDate: reference,
		Successful:    []*domain.Disbursement{{ID: "d"}},
	}, nil
}

type fakeMonthRunner struct {
	months []string
}

func (f *fakeMonthRunner) ProcessMonth(_ context.Context, month, year int) (*usecase.MonthlyFeeResult, error) {
	f.months = append(f.months, time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01"))
	return &usecase.MonthlyFeeResult{
		Month:   month,
		Year:    year,
		Created: []*domain.MonthlyFeeAdjustment{{ID: "a"}, {ID: "b"}},
	}, nil
}

func TestBackfillUseCase_Disbursements(t *testing.T) {
	ctrl := gomock.NewController(t)
	disbursements := mocks.NewMockDisbursementRepository(ctrl)
	disbursements.EXPECT().PendingOrdersDateRange(gomock.Any()).Return(&domain.DateRange{
		Min: time.Date(2023, 1, 2, 13, 0, 0, 0, time.UTC),
		Max: time.Date(2023, 1, 4, 8, 0, 0, 0, time.UTC),
	}, nil)

	runner := &fakeHistoricalRunner{}
	uc := usecase.NewBackfillUseCase(disbursements, runner, &fakeMonthRunner{}, zerolog.Nop())

	result, err := uc.Disbursements(context.Background())
	require.NoError(t, err)

	// padded by one day on each side: Jan 1 .. Jan 5
	assert.Equal(t, []time.Time{day(2023, 1, 1), day(2023, 1, 2), day(2023, 1, 3), day(2023, 1, 4), day(2023, 1, 5)}, runner.days)
	assert.Equal(t, 5, result.Days)
	assert.Equal(t, 5, result.Successful)
	assert.Equal(t, day(2023, 1, 1), result.From)
	assert.Equal(t, day(2023, 1, 5), result.To)
}

func TestBackfillUseCase_Disbursements_NothingPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	disbursements := mocks.NewMockDisbursementRepository(ctrl)
	disbursements.EXPECT().PendingOrdersDateRange(gomock.Any()).Return(nil, nil)

	runner := &fakeHistoricalRunner{}
	uc := usecase.NewBackfillUseCase(disbursements, runner, &fakeMonthRunner{}, zerolog.Nop())

	result, err := uc.Disbursements(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Days)
	assert.Empty(t, runner.days)
}

func TestBackfillUseCase_Disbursements_AbortsOnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	disbursements := mocks.NewMockDisbursementRepository(ctrl)
	disbursements.EXPECT().PendingOrdersDateRange(gomock.Any()).Return(&domain.DateRange{
		Min: day(2023, 1, 2),
		Max: day(2023, 1, 10),
	}, nil)

	runner := &fakeHistoricalRunner{failOn: day(2023, 1, 3)}
	uc := usecase.NewBackfillUseCase(disbursements, runner, &fakeMonthRunner{}, zerolog.Nop())

	result, err := uc.Disbursements(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2023-01-03")
	assert.Len(t, runner.days, 3)
	assert.Equal(t, 2, result.Days)
}

func TestBackfillUseCase_MonthlyFees(t *testing.T) {
	ctrl := gomock.NewController(t)
	disbursements := mocks.NewMockDisbursementRepository(ctrl)
	disbursements.EXPECT().DisbursedDateRange(gomock.Any()).Return(&domain.DateRange{
		Min: time.Date(2022, 11, 15, 0, 0, 0, 0, time.UTC),
		Max: time.Date(2023, 2, 3, 0, 0, 0, 0, time.UTC),
	}, nil)

	monthly := &fakeMonthRunner{}
	uc := usecase.NewBackfillUseCase(disbursements, &fakeHistoricalRunner{}, monthly, zerolog.Nop())

	result, err := uc.MonthlyFees(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"2022-11", "2022-12", "2023-01", "2023-02"}, monthly.months)
	assert.Equal(t, 4, result.Months)
	assert.Equal(t, 8, result.Adjustments)
}

func TestBackfillUseCase_All(t *testing.T) {
	ctrl := gomock.NewController(t)
	disbursements := mocks.NewMockDisbursementRepository(ctrl)
	disbursements.EXPECT().PendingOrdersDateRange(gomock.Any()).Return(&domain.DateRange{
		Min: day(2023, 1, 2),
		Max: day(2023, 1, 2),
	}, nil)
	disbursements.EXPECT().DisbursedDateRange(gomock.Any()).Return(&domain.DateRange{
		Min: day(2023, 1, 1),
		Max: day(2023, 1, 3),
	}, nil)

	uc := usecase.NewBackfillUseCase(disbursements, &fakeHistoricalRunner{}, &fakeMonthRunner{}, zerolog.Nop())

	result, err := uc.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Days)
	assert.Equal(t, 1, result.Months)
	assert.Equal(t, 2, result.Adjustments)
}
