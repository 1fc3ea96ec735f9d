package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrJobAlreadyRunning is returned when another process holds the job lock.
var ErrJobAlreadyRunning = errors.New("job already running")

const jobLockPrefix = "job:"

// JobRunner makes sure only one instance of a batch job runs at a time.
type JobRunner struct {
	locker Locker
	idGen  IDGenerator
	ttl    time.Duration
	logger zerolog.Logger
}

// NewJobRunner creates a new JobRunner. Without a locker jobs run unguarded.
func NewJobRunner(locker Locker, idGen IDGenerator, ttl time.Duration, logger zerolog.Logger) *JobRunner {
	if ttl <= 0 {
		ttl = DefaultJobLockTTL
	}
	return &JobRunner{
		locker: locker,
		idGen:  idGen,
		ttl:    ttl,
		logger: logger,
	}
}

// Run executes fn while holding the lock for name.
func (r *JobRunner) Run(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if r.locker == nil {
		return fn(ctx)
	}

	key := jobLockPrefix + name
	token := r.idGen.Generate()

	acquired, err := r.locker.Acquire(ctx, key, token, r.ttl)
	if err != nil {
		return fmt.Errorf("acquire job lock %s: %w", name, err)
	}
	if !acquired {
		return fmt.Errorf("%w: %s", ErrJobAlreadyRunning, name)
	}

	defer func() {
		// The caller's context may already be cancelled; release regardless.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := r.locker.Release(releaseCtx, key, token); err != nil {
			r.logger.Warn().Err(err).Str("job", name).Msg("failed to release job lock")
		}
	}()

	return fn(ctx)
}
