package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iho/gopayout/internal/domain"
)

// ErrMerchantPanic wraps a panic recovered while processing one merchant.
var ErrMerchantPanic = errors.New("panic while processing merchant")

// MerchantFailure records why one merchant could not be processed.
type MerchantFailure struct {
	MerchantID string
	Reference  string
	Err        error
}

// BatchResult is the outcome of a disbursement run.
type BatchResult struct {
	ReferenceDate time.Time
	Successful    []*domain.Disbursement
	Failed        []MerchantFailure
}

// DisbursementConfig holds the dependencies of DisbursementUseCase.
type DisbursementConfig struct {
	TxManager     TransactionManager
	Merchants     MerchantRepository
	Orders        OrderRepository
	Disbursements DisbursementRepository
	Outbox        OutboxRepository
	IDGen         IDGenerator
	Retrier       Retrier
	Recorder      Recorder
	Stats         StatsInvalidator // optional
	Logger        zerolog.Logger
	BatchSize     int // eligible merchants fetched per page
	Workers       int // merchants processed concurrently
	TxTimeout     time.Duration
}

// DisbursementUseCase runs the disbursement batch over the eligible merchants.
type DisbursementUseCase struct {
	txManager     TransactionManager
	merchants     MerchantRepository
	orders        OrderRepository
	disbursements DisbursementRepository
	outbox        OutboxRepository
	idGen         IDGenerator
	retrier       Retrier
	recorder      Recorder
	stats         StatsInvalidator
	logger        zerolog.Logger
	fees          *domain.FeeCalculator
	batchSize     int
	workers       int
	txTimeout     time.Duration
}

// NewDisbursementUseCase creates a new DisbursementUseCase.
func NewDisbursementUseCase(cfg DisbursementConfig) *DisbursementUseCase {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultDisbursementBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = DefaultTransactionTimeout
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.Stats == nil {
		cfg.Stats = nopStatsInvalidator{}
	}

	return &DisbursementUseCase{
		txManager:     cfg.TxManager,
		merchants:     cfg.Merchants,
		orders:        cfg.Orders,
		disbursements: cfg.Disbursements,
		outbox:        cfg.Outbox,
		idGen:         cfg.IDGen,
		retrier:       cfg.Retrier,
		recorder:      cfg.Recorder,
		stats:         cfg.Stats,
		logger:        cfg.Logger,
		fees:          domain.NewFeeCalculator(),
		batchSize:     cfg.BatchSize,
		workers:       cfg.Workers,
		txTimeout:     cfg.TxTimeout,
	}
}

// Run disburses every eligible merchant for reference, stamping
// disbursements with the current time.
//
// Failures are isolated per merchant and reported in the result. An error is
// returned only when the eligible merchant population cannot be read; the
// result then holds whatever was committed before that point.
func (uc *DisbursementUseCase) Run(ctx context.Context, reference time.Time) (*BatchResult, error) {
	return uc.run(ctx, reference, nil)
}

// RunHistorical is Run for a past reference date: disbursements are stamped
// with the reference day so that monthly aggregates land in the right month.
func (uc *DisbursementUseCase) RunHistorical(ctx context.Context, reference time.Time) (*BatchResult, error) {
	day := domain.StartOfDay(reference)
	return uc.run(ctx, reference, func() time.Time { return day })
}

func (uc *DisbursementUseCase) run(ctx context.Context, reference time.Time, disbursedAt func() time.Time) (*BatchResult, error) {
	reference = domain.StartOfDay(reference)
	started := time.Now()

	log := uc.logger.With().Str("reference_date", reference.Format(time.DateOnly)).Logger()
	log.Info().Msg("disbursement run started")

	result := &BatchResult{ReferenceDate: reference}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(uc.workers)

	afterID := ""
	for {
		page, err := uc.eligiblePage(ctx, reference, afterID)
		if err != nil {
			_ = g.Wait()
			uc.invalidateStats(ctx, result.Successful)
			log.Error().Err(err).Msg("failed to fetch eligible merchants")
			return result, fmt.Errorf("fetch eligible merchants: %w", err)
		}

		for _, merchant := range page {
			g.Go(func() error {
				disbursement, err := uc.processMerchant(ctx, merchant, reference, disbursedAt)

				mu.Lock()
				defer mu.Unlock()

				if err != nil {
					result.Failed = append(result.Failed, MerchantFailure{
						MerchantID: merchant.ID,
						Reference:  merchant.Reference,
						Err:        err,
					})
					uc.recorder.MerchantFailed(JobDisbursements, failureReason(err))
					log.Error().
						Err(err).
						Str("merchant_id", merchant.ID).
						Str("merchant_reference", merchant.Reference).
						Msg("failed to create disbursement")
					return nil
				}

				if disbursement != nil {
					result.Successful = append(result.Successful, disbursement)
					uc.recorder.DisbursementCreated(disbursement)
				}
				return nil
			})
		}

		if len(page) < uc.batchSize {
			break
		}
		afterID = page[len(page)-1].ID
	}

	_ = g.Wait()
	uc.invalidateStats(ctx, result.Successful)

	elapsed := time.Since(started)
	uc.recorder.BatchCompleted(JobDisbursements, elapsed, len(result.Successful), len(result.Failed))
	log.Info().
		Int("successful", len(result.Successful)).
		Int("failed", len(result.Failed)).
		Dur("duration", elapsed).
		Msg("disbursement run finished")

	return result, nil
}

// invalidateStats drops cached statistics of every year disbursements are
// dated in.
func (uc *DisbursementUseCase) invalidateStats(ctx context.Context, disbursements []*domain.Disbursement) {
	var years []int
	for _, d := range disbursements {
		year := d.DisbursedAt.UTC().Year()
		if !slices.Contains(years, year) {
			years = append(years, year)
		}
	}
	if len(years) > 0 {
		uc.stats.Invalidate(ctx, years...)
	}
}

func (uc *DisbursementUseCase) eligiblePage(ctx context.Context, reference time.Time, afterID string) ([]*domain.Merchant, error) {
	var page []*domain.Merchant

	fetch := func() error {
		var err error
		page, err = uc.merchants.ListEligible(ctx, reference, afterID, uc.batchSize)
		return err
	}

	if uc.retrier == nil {
		return page, fetch()
	}
	return page, uc.retrier.Retry(ctx, fetch)
}

// processMerchant runs one merchant's strategy inside its own transaction.
// The transaction is rolled back on every path that does not commit.
func (uc *DisbursementUseCase) processMerchant(
	ctx context.Context,
	merchant *domain.Merchant,
	reference time.Time,
	disbursedAt func() time.Time,
) (disbursement *domain.Disbursement, err error) {
	defer func() {
		if r := recover(); r != nil {
			disbursement = nil
			err = fmt.Errorf("%w %s: %v", ErrMerchantPanic, merchant.ID, r)
		}
	}()

	strategy, err := NewStrategy(merchant.Frequency, merchant, reference, StrategyDeps{
		Orders:        uc.orders,
		Disbursements: uc.disbursements,
		Outbox:        uc.outbox,
		IDGen:         uc.idGen,
		Fees:          uc.fees,
		DisbursedAt:   disbursedAt,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	disbursement, err = strategy.ComputeAndCreate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if disbursement == nil {
		return nil, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return disbursement, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidFrequency), errors.Is(err, domain.ErrUnknownFrequency):
		return FailureInvalidFrequency
	case errors.Is(err, domain.ErrValidation):
		return FailureValidation
	case errors.Is(err, ErrMerchantPanic):
		return FailurePanic
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	default:
		return FailureStorage
	}
}
