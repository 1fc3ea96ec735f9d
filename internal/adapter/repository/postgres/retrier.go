package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLSTATE codes a merchant transaction can hit while another run or a
// failover holds the same rows.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
	pgErrQueryCanceled        = "57014"
	pgErrAdminShutdown        = "57P01"
	pgErrCannotConnectNow     = "57P03"
)

// RetryPolicy bounds how long a merchant's unit of work is retried.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// MaxElapsed caps the total time spent, retries included.
	MaxElapsed time.Duration
}

// DefaultRetryPolicy suits batch jobs: a few quick retries, never long enough
// to stall the rest of the run.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:      3,
	InitialInterval: 100 * time.Millisecond,
	MaxInterval:     2 * time.Second,
	MaxElapsed:      15 * time.Second,
}

// Retrier implements usecase.Retrier with exponential backoff.
type Retrier struct {
	policy RetryPolicy
	logger zerolog.Logger
}

// NewRetrier creates a retrier using DefaultRetryPolicy.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return NewRetrierWithPolicy(logger, DefaultRetryPolicy)
}

// NewRetrierWithPolicy creates a retrier. Zero fields of policy fall back to
// DefaultRetryPolicy; a negative MaxRetries disables retrying.
func NewRetrierWithPolicy(logger zerolog.Logger, policy RetryPolicy) *Retrier {
	if policy.MaxRetries == 0 {
		policy.MaxRetries = DefaultRetryPolicy.MaxRetries
	}
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = DefaultRetryPolicy.InitialInterval
	}
	if policy.MaxInterval <= 0 {
		policy.MaxInterval = DefaultRetryPolicy.MaxInterval
	}
	if policy.MaxElapsed <= 0 {
		policy.MaxElapsed = DefaultRetryPolicy.MaxElapsed
	}
	return &Retrier{policy: policy, logger: logger}
}

// Retry runs operation until it succeeds, fails with a non-transient error,
// or the policy is exhausted. The last error is returned unwrapped.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.InitialInterval
	b.MaxInterval = r.policy.MaxInterval
	b.MaxElapsedTime = r.policy.MaxElapsed

	attempt := 0
	return backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}
		if !isRetryableError(err) || attempt >= r.policy.MaxRetries {
			return backoff.Permanent(err)
		}
		attempt++

		r.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_retries", r.policy.MaxRetries).
			Msg("transient database error, retrying")

		return err
	}, backoff.WithContext(b, ctx))
}

func isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable,
			pgErrQueryCanceled, pgErrAdminShutdown, pgErrCannotConnectNow:
			return true
		}
		return false
	}
	return pgconn.SafeToRetry(err)
}
