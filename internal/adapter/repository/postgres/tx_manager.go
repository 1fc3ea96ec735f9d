package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gopayout/internal/usecase"
)

// ErrUnknownIsolationLevel is returned by ParseIsolationLevel.
var ErrUnknownIsolationLevel = errors.New("unknown isolation level")

type pgxPool interface {
	Begin(context.Context) (pgx.Tx, error)
	BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager. Every merchant of a batch
// run gets its own transaction from it.
type TxManager struct {
	pool pgxPool
	opts pgx.TxOptions
}

// NewTxManager creates a new TxManager using the server's default isolation.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// WithIsolation sets the isolation level of transactions started by m.
func (m *TxManager) WithIsolation(level pgx.TxIsoLevel) *TxManager {
	m.opts.IsoLevel = level
	return m
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	var (
		tx  pgx.Tx
		err error
	)
	if m.opts == (pgx.TxOptions{}) {
		tx, err = m.pool.Begin(ctx)
	} else {
		tx, err = m.pool.BeginTx(ctx, m.opts)
	}
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}

	return &Tx{tx: tx}, nil
}

// ParseIsolationLevel maps names such as "read committed" or
// "repeatable_read" to a pgx isolation level. Empty means the server default.
func ParseIsolationLevel(name string) (pgx.TxIsoLevel, error) {
	normalized := strings.ToLower(strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(name)))

	switch normalized {
	case "":
		return "", nil
	case "read committed":
		return pgx.ReadCommitted, nil
	case "repeatable read":
		return pgx.RepeatableRead, nil
	case "serializable":
		return pgx.Serializable, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownIsolationLevel, name)
	}
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction. Rolling back a transaction that was
// already committed is a no-op, so callers can always defer it.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
