package postgres

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/iho/expensetracker/internal/infrastructure/retry"
)

// PostgreSQL error codes for retryable errors.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
)

var retryPolicy = retry.Policy{
	MaxRetries:      3,
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     1 * time.Second,
	MaxElapsedTime:  10 * time.Second,
}

// NewRetrier returns a retrier for deadlocks, serialization failures and
// requests that never reached the server.
func NewRetrier(logger zerolog.Logger) *retry.Retrier {
	return retry.New(retryPolicy, isRetryableError, logger.With().Str("store", "postgres").Logger())
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure:
			return true
		}
		return false
	}
	return err != nil && pgconn.SafeToRetry(err)
}
