package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/expensetracker/internal/domain"
)

// ErrCacheMiss is returned by Cache implementations when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	// Insert stores entry and assigns entry.ID when it is nil.
	Insert(ctx context.Context, entry *domain.Entry) error
	Update(ctx context.Context, entry domain.Entry) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	GetByID(ctx context.Context, id int64) (*domain.Entry, error)
	// ListAll returns every entry, newest date first.
	ListAll(ctx context.Context) ([]domain.Entry, error)
	ListByType(ctx context.Context, entryType string) ([]domain.Entry, error)
	ListBookmarked(ctx context.Context) ([]domain.Entry, error)
	Ping(ctx context.Context) error
}

// ChangePublisher delivers change events to external systems.
type ChangePublisher interface {
	Publish(ctx context.Context, event *domain.ChangeEvent) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key.
	Release(ctx context.Context, key string) error
}

// Recorder receives operational measurements from use cases.
type Recorder interface {
	RecordMutation(kind string, success bool)
	ObserveStoreOperation(op string, elapsed time.Duration, err error)
}
