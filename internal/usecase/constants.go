package usecase

import "time"

const (
	// DefaultStoreTimeout bounds every individual store call.
	DefaultStoreTimeout = 10 * time.Second

	// DefaultOverviewCacheTTL is how long a computed overview stays cached.
	DefaultOverviewCacheTTL = time.Minute

	// OverviewDays is the number of days covered by the daily expense chart.
	OverviewDays = 7

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyPendingTTL bounds how long an in-flight claim blocks
	// retries if the request never completes.
	IdempotencyPendingTTL = 30 * time.Second

	// IdempotencyPending marks a key claimed by a request still in flight.
	IdempotencyPending = "processing"
)
