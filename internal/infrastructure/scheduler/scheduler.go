// Package scheduler triggers the daily disbursement run and the monthly
// minimum fee run at fixed UTC times of day.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrInvalidTimeOfDay is returned for a clock value that is not HH:MM.
var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// TimeOfDay is a wall clock time in UTC.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) on(day time.Time) time.Time {
	y, m, d := day.UTC().Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, time.UTC)
}

// NextDaily returns the first occurrence of t strictly after from.
func (t TimeOfDay) NextDaily(from time.Time) time.Time {
	next := t.on(from)
	if !next.After(from) {
		next = t.on(from.UTC().AddDate(0, 0, 1))
	}
	return next
}

// NextMonthly returns the first occurrence of t on the first day of a month
// strictly after from.
func (t TimeOfDay) NextMonthly(from time.Time) time.Time {
	y, m, _ := from.UTC().Date()
	next := t.on(time.Date(y, m, 1, 0, 0, 0, 0, time.UTC))
	if !next.After(from) {
		next = t.on(time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC))
	}
	return next
}

// Job runs one scheduled trigger. now is the time the trigger was due.
type Job func(ctx context.Context, now time.Time) error

// Config for Scheduler.
type Config struct {
	DisbursementAt TimeOfDay
	MonthlyFeeAt   TimeOfDay
	Disbursements  Job
	MonthlyFees    Job
	Logger         zerolog.Logger
}

// Scheduler fires Disbursements every day and MonthlyFees on the first of
// every month. Jobs run sequentially; a trigger missed while a job is still
// running fires as soon as it returns.
type Scheduler struct {
	cfg   Config
	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// New creates a Scheduler.
func New(cfg Config) *Scheduler {
	return &Scheduler{
		cfg:   cfg,
		now:   time.Now,
		after: time.After,
	}
}

// Start blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	start := s.now()
	nextDaily := s.cfg.DisbursementAt.NextDaily(start)
	nextMonthly := s.cfg.MonthlyFeeAt.NextMonthly(start)

	s.cfg.Logger.Info().
		Time("next_disbursement_run", nextDaily).
		Time("next_monthly_fee_run", nextMonthly).
		Msg("scheduler started")

	for {
		due := nextDaily
		if nextMonthly.Before(due) {
			due = nextMonthly
		}

		select {
		case <-ctx.Done():
			s.cfg.Logger.Info().Msg("scheduler shutting down")
			return ctx.Err()
		case <-s.after(due.Sub(s.now())):
		}

		now := s.now()
		if !now.Before(nextMonthly) {
			s.run(ctx, "monthly_fees", s.cfg.MonthlyFees, nextMonthly)
			nextMonthly = s.cfg.MonthlyFeeAt.NextMonthly(nextMonthly)
		}
		if !now.Before(nextDaily) {
			s.run(ctx, "disbursements", s.cfg.Disbursements, nextDaily)
			nextDaily = s.cfg.DisbursementAt.NextDaily(nextDaily)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, name string, job Job, due time.Time) {
	if job == nil {
		return
	}

	log := s.cfg.Logger.With().Str("job", name).Time("due", due).Logger()
	log.Info().Msg("scheduled job started")

	start := s.now()
	if err := job(ctx, due); err != nil {
		log.Error().Err(err).Dur("duration", s.now().Sub(start)).Msg("scheduled job failed")
		return
	}
	log.Info().Dur("duration", s.now().Sub(start)).Msg("scheduled job finished")
}
