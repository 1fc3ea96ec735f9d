package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gopayout/internal/domain"
)

// MonthlyFeeResult is the outcome of a monthly fee run over all merchants.
type MonthlyFeeResult struct {
	Month   int
	Year    int
	Created []*domain.MonthlyFeeAdjustment
	// Skipped counts merchants that needed no adjustment.
	Skipped int
	Failed  []MerchantFailure
}

// MonthlyFeeConfig holds the dependencies of MonthlyFeeUseCase.
type MonthlyFeeConfig struct {
	TxManager     TransactionManager
	Merchants     MerchantRepository
	Disbursements DisbursementRepository
	Adjustments   FeeAdjustmentRepository
	Outbox        OutboxRepository
	IDGen         IDGenerator
	Retrier       Retrier
	Recorder      Recorder
	Stats         StatsInvalidator // optional
	Logger        zerolog.Logger
	BatchSize     int
}

// MonthlyFeeUseCase tops up merchants whose fees fell short of their
// contractual monthly minimum.
type MonthlyFeeUseCase struct {
	txManager     TransactionManager
	merchants     MerchantRepository
	disbursements DisbursementRepository
	adjustments   FeeAdjustmentRepository
	outbox        OutboxRepository
	idGen         IDGenerator
	retrier       Retrier
	recorder      Recorder
	stats         StatsInvalidator
	logger        zerolog.Logger
	batchSize     int
}

// NewMonthlyFeeUseCase creates a new MonthlyFeeUseCase.
func NewMonthlyFeeUseCase(cfg MonthlyFeeConfig) *MonthlyFeeUseCase {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultMonthlyFeeBatchSize
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.Stats == nil {
		cfg.Stats = nopStatsInvalidator{}
	}

	return &MonthlyFeeUseCase{
		txManager:     cfg.TxManager,
		merchants:     cfg.Merchants,
		disbursements: cfg.Disbursements,
		adjustments:   cfg.Adjustments,
		outbox:        cfg.Outbox,
		idGen:         cfg.IDGen,
		retrier:       cfg.Retrier,
		recorder:      cfg.Recorder,
		stats:         cfg.Stats,
		logger:        cfg.Logger,
		batchSize:     cfg.BatchSize,
	}
}

// Process creates the merchant's adjustment for month/year when its collected
// fees are below the minimum. It returns nil when no adjustment is needed or
// one already exists, so it is safe to call repeatedly.
func (uc *MonthlyFeeUseCase) Process(ctx context.Context, merchant *domain.Merchant, month, year int) (*domain.MonthlyFeeAdjustment, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidMonth, month)
	}

	exists, err := uc.adjustments.Exists(ctx, merchant.ID, month, year)
	if err != nil {
		return nil, fmt.Errorf("check existing adjustment: %w", err)
	}
	if exists {
		return nil, nil
	}

	collected, found, err := uc.disbursements.TotalFeesForMonth(ctx, merchant.ID, month, year)
	if err != nil {
		return nil, fmt.Errorf("sum monthly fees: %w", err)
	}
	if !found {
		uc.logger.Debug().
			Str("merchant_id", merchant.ID).
			Int("month", month).
			Int("year", year).
			Msg("no disbursements in month, charging full minimum")
	}

	deficit := domain.MonthlyFeeDeficit(merchant.MinimumMonthlyFeeCents, collected)
	if deficit == 0 {
		return nil, nil
	}

	adjustment := &domain.MonthlyFeeAdjustment{
		ID:          uc.idGen.Generate(),
		MerchantID:  merchant.ID,
		AmountCents: deficit,
		Month:       month,
		Year:        year,
		CreatedAt:   time.Now().UTC(),
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	created, err := uc.adjustments.Create(ctx, tx, adjustment)
	if err != nil {
		return nil, fmt.Errorf("create adjustment: %w", err)
	}
	if !created {
		// A concurrent run got there first.
		return nil, nil
	}

	if uc.outbox != nil {
		event := domain.NewMonthlyFeeAdjustedEvent(uc.idGen.Generate(), adjustment, adjustment.CreatedAt)
		if err := uc.outbox.Create(ctx, tx, event); err != nil {
			return nil, fmt.Errorf("create outbox event: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	uc.recorder.AdjustmentCreated(adjustment)
	return adjustment, nil
}

// ProcessMonth runs Process for every merchant that was live by the end of
// the month. Merchant failures are collected, not returned.
func (uc *MonthlyFeeUseCase) ProcessMonth(ctx context.Context, month, year int) (*MonthlyFeeResult, error) {
	_, end, err := domain.MonthBounds(month, year)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	log := uc.logger.With().Int("month", month).Int("year", year).Logger()
	log.Info().Msg("monthly fee run started")

	result := &MonthlyFeeResult{Month: month, Year: year}

	afterID := ""
	for {
		page, err := uc.page(ctx, afterID)
		if err != nil {
			if len(result.Created) > 0 {
				uc.stats.Invalidate(ctx, year)
			}
			log.Error().Err(err).Msg("failed to list merchants")
			return result, fmt.Errorf("list merchants: %w", err)
		}

		for _, merchant := range page {
			if !merchant.LiveOn.Before(end) {
				result.Skipped++
				continue
			}

			adjustment, err := uc.Process(ctx, merchant, month, year)
			switch {
			case err != nil:
				result.Failed = append(result.Failed, MerchantFailure{
					MerchantID: merchant.ID,
					Reference:  merchant.Reference,
					Err:        err,
				})
				uc.recorder.MerchantFailed(JobMonthlyFees, failureReason(err))
				log.Error().
					Err(err).
					Str("merchant_id", merchant.ID).
					Str("merchant_reference", merchant.Reference).
					Msg("failed to process monthly fee")
			case adjustment == nil:
				result.Skipped++
			default:
				result.Created = append(result.Created, adjustment)
			}
		}

		if len(page) < uc.batchSize {
			break
		}
		afterID = page[len(page)-1].ID
	}

	if len(result.Created) > 0 {
		uc.stats.Invalidate(ctx, year)
	}

	elapsed := time.Since(started)
	uc.recorder.BatchCompleted(JobMonthlyFees, elapsed, len(result.Created), len(result.Failed))
	log.Info().
		Int("created", len(result.Created)).
		Int("skipped", result.Skipped).
		Int("failed", len(result.Failed)).
		Dur("duration", elapsed).
		Msg("monthly fee run finished")

	return result, nil
}

// ProcessPreviousMonth runs ProcessMonth for the calendar month before now.
func (uc *MonthlyFeeUseCase) ProcessPreviousMonth(ctx context.Context, now time.Time) (*MonthlyFeeResult, error) {
	month, year := domain.PreviousMonth(now)
	return uc.ProcessMonth(ctx, month, year)
}

func (uc *MonthlyFeeUseCase) page(ctx context.Context, afterID string) ([]*domain.Merchant, error) {
	var page []*domain.Merchant

	fetch := func() error {
		var err error
		page, err = uc.merchants.List(ctx, afterID, uc.batchSize)
		return err
	}

	if uc.retrier == nil {
		return page, fetch()
	}
	return page, uc.retrier.Retry(ctx, fetch)
}
