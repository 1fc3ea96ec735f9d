package handler

import (
	"context"
	"time"

	"github.com/iho/gopayout/internal/domain"
	"github.com/iho/gopayout/internal/usecase"
)

type disbursementServiceStub struct {
	runFn           func(ctx context.Context, reference time.Time) (*usecase.BatchResult, error)
	runHistoricalFn func(ctx context.Context, reference time.Time) (*usecase.BatchResult, error)
}

func (s *disbursementServiceStub) Run(ctx context.Context, reference time.Time) (*usecase.BatchResult, error) {
	return s.runFn(ctx, reference)
}

func (s *disbursementServiceStub) RunHistorical(ctx context.Context, reference time.Time) (*usecase.BatchResult, error) {
	return s.runHistoricalFn(ctx, reference)
}

type backfillServiceStub struct {
	calls []string
	err   error
}

func (s *backfillServiceStub) result(scope string) (*usecase.BackfillResult, error) {
	s.calls = append(s.calls, scope)
	if s.err != nil {
		return nil, s.err
	}
	return &usecase.BackfillResult{Days: 3, Successful: 5}, nil
}

func (s *backfillServiceStub) Disbursements(context.Context) (*usecase.BackfillResult, error) {
	return s.result("disbursements")
}

func (s *backfillServiceStub) MonthlyFees(context.Context) (*usecase.BackfillResult, error) {
	return s.result("monthly_fees")
}

func (s *backfillServiceStub) All(context.Context) (*usecase.BackfillResult, error) {
	return s.result("all")
}

type disbursementReaderStub map[string]*domain.Disbursement

func (s disbursementReaderStub) GetByID(_ context.Context, id string) (*domain.Disbursement, error) {
	d, ok := s[id]
	if !ok {
		return nil, domain.ErrDisbursementNotFound
	}
	return d, nil
}

type merchantReaderStub map[string]*domain.Merchant

func (s merchantReaderStub) GetByID(_ context.Context, id string) (*domain.Merchant, error) {
	m, ok := s[id]
	if !ok {
		return nil, domain.ErrMerchantNotFound
	}
	return m, nil
}

type monthlyFeeServiceStub struct {
	processMonthFn  func(ctx context.Context, month, year int) (*usecase.MonthlyFeeResult, error)
	previousMonthFn func(ctx context.Context, now time.Time) (*usecase.MonthlyFeeResult, error)
}

func (s *monthlyFeeServiceStub) ProcessMonth(ctx context.Context, month, year int) (*usecase.MonthlyFeeResult, error) {
	return s.processMonthFn(ctx, month, year)
}

func (s *monthlyFeeServiceStub) ProcessPreviousMonth(ctx context.Context, now time.Time) (*usecase.MonthlyFeeResult, error) {
	return s.previousMonthFn(ctx, now)
}

type statsServiceStub struct {
	from, to int
	err      error
}

func (s *statsServiceStub) Yearly(_ context.Context, from, to int) ([]domain.YearlyStats, error) {
	s.from, s.to = from, to
	if s.err != nil {
		return nil, s.err
	}
	var stats []domain.YearlyStats
	for y := from; y <= to; y++ {
		stats = append(stats, domain.YearlyStats{Year: y, DisbursementCount: 1, DisbursedAmountCents: 100})
	}
	return stats, nil
}

// directJobs runs every job without locking.
type directJobs struct {
	names []string
}

func (j *directJobs) Run(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	j.names = append(j.names, name)
	return fn(ctx)
}

// lockedJobs reports every job as already running.
type lockedJobs struct{}

func (lockedJobs) Run(context.Context, string, func(ctx context.Context) error) error {
	return usecase.ErrJobAlreadyRunning
}

type pingerStub struct {
	err error
}

func (p pingerStub) Ping(context.Context) error {
	return p.err
}
