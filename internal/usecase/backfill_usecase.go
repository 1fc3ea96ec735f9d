package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gopayout/internal/domain"
)

// HistoricalRunner replays a disbursement run for a past day.
type HistoricalRunner interface {
	RunHistorical(ctx context.Context, reference time.Time) (*BatchResult, error)
}

// MonthRunner runs the monthly fee check for one month.
type MonthRunner interface {
	ProcessMonth(ctx context.Context, month, year int) (*MonthlyFeeResult, error)
}

// BackfillResult summarizes a backfill.
type BackfillResult struct {
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	Days        int       `json:"days"`
	Months      int       `json:"months"`
	Successful  int       `json:"successful"`
	Failed      int       `json:"failed"`
	Adjustments int       `json:"adjustments"`
}

// BackfillUseCase replays the batch jobs over historical data: one
// disbursement run per day that has pending orders, then one monthly fee
// run per month that has disbursements.
type BackfillUseCase struct {
	disbursements DisbursementRepository
	runner        HistoricalRunner
	monthly       MonthRunner
	logger        zerolog.Logger
}

// NewBackfillUseCase creates a new BackfillUseCase.
func NewBackfillUseCase(disbursements DisbursementRepository, runner HistoricalRunner, monthly MonthRunner, logger zerolog.Logger) *BackfillUseCase {
	return &BackfillUseCase{
		disbursements: disbursements,
		runner:        runner,
		monthly:       monthly,
		logger:        logger,
	}
}

// Disbursements runs RunHistorical for every day from the day before the
// oldest pending order to the day after the newest one. The padding makes
// sure the first and last windows are covered whatever the frequency.
// A failing day aborts the backfill.
func (uc *BackfillUseCase) Disbursements(ctx context.Context) (*BackfillResult, error) {
	rng, err := uc.disbursements.PendingOrdersDateRange(ctx)
	if err != nil {
		return nil, fmt.Errorf("pending orders date range: %w", err)
	}

	result := &BackfillResult{}
	if rng == nil {
		uc.logger.Info().Msg("no pending orders, nothing to backfill")
		return result, nil
	}

	padded := domain.DateRange{
		Min: domain.StartOfDay(rng.Min).AddDate(0, 0, -1),
		Max: domain.StartOfDay(rng.Max).AddDate(0, 0, 1),
	}
	result.From, result.To = padded.Min, padded.Max

	for _, day := range padded.Days() {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		batch, err := uc.runner.RunHistorical(ctx, day)
		if batch != nil {
			result.Successful += len(batch.Successful)
			result.Failed += len(batch.Failed)
		}
		if err != nil {
			return result, fmt.Errorf("backfill %s: %w", day.Format(time.DateOnly), err)
		}
		result.Days++
	}

	uc.logger.Info().
		Time("from", result.From).
		Time("to", result.To).
		Int("days", result.Days).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("disbursement backfill finished")

	return result, nil
}

// MonthlyFees runs ProcessMonth for every month between the first and the
// last disbursement.
func (uc *BackfillUseCase) MonthlyFees(ctx context.Context) (*BackfillResult, error) {
	rng, err := uc.disbursements.DisbursedDateRange(ctx)
	if err != nil {
		return nil, fmt.Errorf("disbursed date range: %w", err)
	}

	result := &BackfillResult{}
	if rng == nil {
		return result, nil
	}

	first := time.Date(rng.Min.UTC().Year(), rng.Min.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(rng.Max.UTC().Year(), rng.Max.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	result.From, result.To = first, last

	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		monthly, err := uc.monthly.ProcessMonth(ctx, int(m.Month()), m.Year())
		if monthly != nil {
			result.Adjustments += len(monthly.Created)
			result.Failed += len(monthly.Failed)
		}
		if err != nil {
			return result, fmt.Errorf("backfill %04d-%02d: %w", m.Year(), int(m.Month()), err)
		}
		result.Months++
	}

	uc.logger.Info().
		Int("months", result.Months).
		Int("adjustments", result.Adjustments).
		Int("failed", result.Failed).
		Msg("monthly fee backfill finished")

	return result, nil
}

// All backfills disbursements and then monthly fees.
func (uc *BackfillUseCase) All(ctx context.Context) (*BackfillResult, error) {
	result, err := uc.Disbursements(ctx)
	if err != nil {
		return result, err
	}

	fees, err := uc.MonthlyFees(ctx)
	if fees != nil {
		result.Months = fees.Months
		result.Adjustments = fees.Adjustments
		result.Failed += fees.Failed
	}
	return result, err
}
