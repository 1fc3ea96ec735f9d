package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds a single merchant's transaction so a
	// stuck row lock cannot stall the whole batch.
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultDisbursementBatchSize is the eligible merchant page size.
	DefaultDisbursementBatchSize = 500

	// DefaultMonthlyFeeBatchSize is the merchant page size of the monthly fee run.
	DefaultMonthlyFeeBatchSize = 1000

	// DefaultJobLockTTL is how long a batch job lease is held before it expires.
	DefaultJobLockTTL = 2 * time.Hour

	// DefaultStatsCacheTTL is how long statistics of a closed year are cached.
	DefaultStatsCacheTTL = 24 * time.Hour
)

// Job names used for locking and instrumentation.
const (
	JobDisbursements = "disbursements"
	JobMonthlyFees   = "monthly_fees"
)

// Failure reasons reported to the Recorder.
const (
	FailureInvalidFrequency = "invalid_frequency"
	FailureValidation       = "validation"
	FailurePanic            = "panic"
	FailureTimeout          = "timeout"
	FailureStorage          = "storage"
)
