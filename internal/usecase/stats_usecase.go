package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gopayout/internal/domain"
)

const (
	statsCacheKeyPrefix = "stats:yearly:"
	// maxStatsYears bounds the number of years one query may span.
	maxStatsYears = 100
)

// StatsUseCase reports yearly disbursement statistics.
type StatsUseCase struct {
	disbursements DisbursementRepository
	adjustments   FeeAdjustmentRepository
	cache         Cache
	cacheTTL      time.Duration
	logger        zerolog.Logger
	now           func() time.Time
}

// NewStatsUseCase creates a new StatsUseCase. cache may be nil.
func NewStatsUseCase(disbursements DisbursementRepository, adjustments FeeAdjustmentRepository, cache Cache, logger zerolog.Logger) *StatsUseCase {
	return &StatsUseCase{
		disbursements: disbursements,
		adjustments:   adjustments,
		cache:         cache,
		cacheTTL:      DefaultStatsCacheTTL,
		logger:        logger,
		now:           time.Now,
	}
}

// WithCacheTTL sets how long closed years stay cached.
func (uc *StatsUseCase) WithCacheTTL(ttl time.Duration) *StatsUseCase {
	if ttl > 0 {
		uc.cacheTTL = ttl
	}
	return uc
}

// WithClock replaces the clock deciding which years are closed.
func (uc *StatsUseCase) WithClock(now func() time.Time) *StatsUseCase {
	uc.now = now
	return uc
}

// Yearly returns one row per year from `from` to `to` inclusive.
// Closed years are served from the cache when possible.
func (uc *StatsUseCase) Yearly(ctx context.Context, from, to int) ([]domain.YearlyStats, error) {
	if from <= 0 || to < from || to-from >= maxStatsYears {
		return nil, fmt.Errorf("%w: %d..%d", domain.ErrInvalidYearRange, from, to)
	}

	now := uc.now().UTC()

	stats := make([]domain.YearlyStats, 0, to-from+1)
	for year := from; year <= to; year++ {
		closed := yearClosed(year, now)

		if closed {
			if cached, ok := uc.cached(ctx, year); ok {
				stats = append(stats, cached)
				continue
			}
		}

		row, err := uc.load(ctx, year)
		if err != nil {
			return nil, err
		}

		if closed {
			uc.store(ctx, row)
		}
		stats = append(stats, row)
	}

	return stats, nil
}

// Invalidate drops the cached rows of years. Writers call it after adding
// disbursements or adjustments dated in the past.
func (uc *StatsUseCase) Invalidate(ctx context.Context, years ...int) {
	if uc.cache == nil || len(years) == 0 {
		return
	}

	keys := make([]string, len(years))
	for i, year := range years {
		keys[i] = statsCacheKey(year)
	}
	if err := uc.cache.Delete(ctx, keys...); err != nil {
		uc.logger.Warn().Err(err).Ints("years", years).Msg("stats cache invalidation failed")
	}
}

// yearClosed reports whether no scheduled job writes into year any more.
// December's monthly fees are charged during January, so the previous year
// stays open until February.
func yearClosed(year int, now time.Time) bool {
	current := now.Year()
	if year == current-1 {
		return now.Month() > time.January
	}
	return year < current
}

func (uc *StatsUseCase) load(ctx context.Context, year int) (domain.YearlyStats, error) {
	count, amount, fees, err := uc.disbursements.YearlyTotals(ctx, year)
	if err != nil {
		return domain.YearlyStats{}, fmt.Errorf("disbursement totals for %d: %w", year, err)
	}

	adjCount, adjAmount, err := uc.adjustments.YearlyTotals(ctx, year)
	if err != nil {
		return domain.YearlyStats{}, fmt.Errorf("monthly fee totals for %d: %w", year, err)
	}

	return domain.YearlyStats{
		Year:                  year,
		DisbursementCount:     count,
		DisbursedAmountCents:  amount,
		OrderFeesCents:        fees,
		MonthlyFeeCount:       adjCount,
		MonthlyFeeAmountCents: adjAmount,
	}, nil
}

func (uc *StatsUseCase) cached(ctx context.Context, year int) (domain.YearlyStats, bool) {
	if uc.cache == nil {
		return domain.YearlyStats{}, false
	}

	data, err := uc.cache.Get(ctx, statsCacheKey(year))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			uc.logger.Warn().Err(err).Int("year", year).Msg("stats cache read failed")
		}
		return domain.YearlyStats{}, false
	}

	var row domain.YearlyStats
	if err := json.Unmarshal(data, &row); err != nil {
		uc.logger.Warn().Err(err).Int("year", year).Msg("stats cache entry is corrupt")
		return domain.YearlyStats{}, false
	}
	return row, true
}

func (uc *StatsUseCase) store(ctx context.Context, row domain.YearlyStats) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(row)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, statsCacheKey(row.Year), data, uc.cacheTTL); err != nil {
		uc.logger.Warn().Err(err).Int("year", row.Year).Msg("stats cache write failed")
	}
}

func statsCacheKey(year int) string {
	return statsCacheKeyPrefix + strconv.Itoa(year)
}
