package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/gopayout/internal/domain"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// MerchantRepository defines read access to merchants. Listing uses keyset
// pagination on merchant ID: pass the last ID of the previous page.
type MerchantRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Merchant, error)
	// ListEligible returns merchants to disburse on reference: every daily
	// merchant plus weekly merchants whose live_on weekday matches.
	ListEligible(ctx context.Context, reference time.Time, afterID string, limit int) ([]*domain.Merchant, error)
	List(ctx context.Context, afterID string, limit int) ([]*domain.Merchant, error)
}

// OrderRepository is the source of orders awaiting disbursement.
type OrderRepository interface {
	// FindPending returns un-disbursed orders of a merchant created inside
	// window, oldest first, locked for the duration of tx.
	FindPending(ctx context.Context, tx Transaction, merchantReference string, window domain.Window) ([]*domain.Order, error)
}

// DisbursementRepository defines data access for disbursements.
type DisbursementRepository interface {
	// Create inserts the disbursement, links its orders and clears their
	// pending flag, all inside tx.
	Create(ctx context.Context, tx Transaction, disbursement *domain.Disbursement) error
	GetByID(ctx context.Context, id string) (*domain.Disbursement, error)
	// TotalFeesForMonth sums fees of disbursements disbursed in the month.
	// found is false when the merchant had no disbursement that month.
	TotalFeesForMonth(ctx context.Context, merchantID string, month, year int) (total int64, found bool, err error)
	// PendingOrdersDateRange returns nil when no order is pending.
	PendingOrdersDateRange(ctx context.Context) (*domain.DateRange, error)
	// DisbursedDateRange returns nil when nothing was disbursed yet.
	DisbursedDateRange(ctx context.Context) (*domain.DateRange, error)
	YearlyTotals(ctx context.Context, year int) (count, amountCents, feesCents int64, err error)
}

// FeeAdjustmentRepository defines data access for monthly fee adjustments.
type FeeAdjustmentRepository interface {
	Exists(ctx context.Context, merchantID string, month, year int) (bool, error)
	// Create returns false without error when an adjustment for the same
	// merchant and month already exists.
	Create(ctx context.Context, tx Transaction, adjustment *domain.MonthlyFeeAdjustment) (bool, error)
	YearlyTotals(ctx context.Context, year int) (count, amountCents int64, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes keys. Absent keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// StatsInvalidator drops cached statistics of years whose data changed.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, years ...int)
}

// Locker provides a lease-based mutual exclusion shared between processes.
type Locker interface {
	// Acquire returns false when another holder owns key.
	Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	// Release frees key only if it is still held with token.
	Release(ctx context.Context, key, token string) error
}

// Recorder receives batch outcomes for instrumentation.
type Recorder interface {
	DisbursementCreated(disbursement *domain.Disbursement)
	MerchantFailed(job, reason string)
	BatchCompleted(job string, duration time.Duration, successful, failed int)
	AdjustmentCreated(adjustment *domain.MonthlyFeeAdjustment)
}

type nopRecorder struct{}

func (nopRecorder) DisbursementCreated(*domain.Disbursement)       {}
func (nopRecorder) MerchantFailed(string, string)                  {}
func (nopRecorder) BatchCompleted(string, time.Duration, int, int) {}
func (nopRecorder) AdjustmentCreated(*domain.MonthlyFeeAdjustment) {}

type nopStatsInvalidator struct{}

func (nopStatsInvalidator) Invalidate(context.Context, ...int) {}
