package sqlite

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/iho/expensetracker/internal/infrastructure/retry"
)

// Lock contention on a single file clears quickly; keep the loop short.
var retryPolicy = retry.Policy{
	MaxRetries:      5,
	InitialInterval: 20 * time.Millisecond,
	MaxInterval:     500 * time.Millisecond,
	MaxElapsedTime:  5 * time.Second,
}

// NewRetrier returns a retrier for operations that failed because the
// database file was busy or locked by another connection.
func NewRetrier(logger zerolog.Logger) *retry.Retrier {
	return retry.New(retryPolicy, isRetryableError, logger.With().Str("store", "sqlite").Logger())
}

// isRetryableError reports SQLITE_BUSY and SQLITE_LOCKED, including their
// extended codes.
func isRetryableError(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
	}
	return false
}
