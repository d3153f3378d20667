package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockTxRunner creates a TxRunner over a mocked Postgres connection
func newMockTxRunner(t *testing.T, maxRetries int) (*TxRunner, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewTxRunner(gormDB, maxRetries, time.Millisecond), mock, mockDB
}

func serializationFailure() error {
	return &pgconn.PgError{Code: pgSerializationFailure, Message: "could not serialize access"}
}

func TestTxRunner_CommitsOnSuccess(t *testing.T) {
	runner, mock, mockDB := newMockTxRunner(t, 3)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	attempts := 0
	err := runner.RunInTransaction(context.Background(), func(tx *gorm.DB) error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_RetriesSerializationFailure(t *testing.T) {
	runner, mock, mockDB := newMockTxRunner(t, 2)
	defer mockDB.Close()

	// Two failed attempts roll back, the third commits
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	attempts := 0
	err := runner.RunInTransaction(context.Background(), func(tx *gorm.DB) error {
		attempts++
		if attempts < 3 {
			return serializationFailure()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_ExhaustsRetries(t *testing.T) {
	runner, mock, mockDB := newMockTxRunner(t, 2)
	defer mockDB.Close()

	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	attempts := 0
	err := runner.RunInTransaction(context.Background(), func(tx *gorm.DB) error {
		attempts++
		return serializationFailure()
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)

	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, pgSerializationFailure, pgErr.Code)
}

func TestTxRunner_DoesNotRetryBusinessErrors(t *testing.T) {
	runner, mock, mockDB := newMockTxRunner(t, 3)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	attempts := 0
	err := runner.RunInTransaction(context.Background(), func(tx *gorm.DB) error {
		attempts++
		return shared.NewDomainError("OVER_APPLICATION", "Applied amount exceeds amount due")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "OVER_APPLICATION", domainErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_HonorsContextDuringBackoff(t *testing.T) {
	runner, mock, mockDB := newMockTxRunner(t, 5)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	ctx, cancel := context.WithCancel(context.Background())
	err := runner.RunInTransaction(ctx, func(tx *gorm.DB) error {
		cancel()
		return serializationFailure()
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableTxError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"serialization failure", &pgconn.PgError{Code: pgSerializationFailure}, true},
		{"deadlock detected", &pgconn.PgError{Code: pgDeadlockDetected}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"domain error", shared.NewDomainError("VALIDATION_ERROR", "bad"), false},
		{"nil-ish plain error", assert.AnError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableTxError(tt.err))
		})
	}
}
