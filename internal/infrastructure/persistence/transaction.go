package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres error codes that indicate a transaction lost a concurrency race
// and can be safely retried from the top.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// TxRunner executes functions inside database transactions with bounded
// retry on serialization failures and deadlocks. Business errors are never
// retried; the failed transaction is rolled back and the error returned.
type TxRunner struct {
	db         *gorm.DB
	maxRetries int
	retryDelay time.Duration
}

// NewTxRunner creates a new transaction runner
func NewTxRunner(db *gorm.DB, maxRetries int, retryDelay time.Duration) *TxRunner {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if retryDelay <= 0 {
		retryDelay = 50 * time.Millisecond
	}
	return &TxRunner{db: db, maxRetries: maxRetries, retryDelay: retryDelay}
}

// RunInTransaction runs fn inside a transaction. All reads and writes in fn
// see a consistent snapshot; on retryable failure the whole fn is re-executed
// against a fresh transaction, so fn must be side-effect free outside the tx.
func (r *TxRunner) RunInTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = r.db.WithContext(ctx).Transaction(fn)
		if err == nil || !isRetryableTxError(err) || attempt >= r.maxRetries {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.retryDelay * time.Duration(attempt+1)):
		}
	}
}

// isRetryableTxError reports whether the error is a transient concurrency
// failure reported by Postgres
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}
