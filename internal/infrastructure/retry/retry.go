// Package retry re-runs store operations that failed with a transient error.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Policy bounds the exponential backoff loop.
type Policy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// Classifier reports whether err is transient.
type Classifier func(err error) bool

// Retrier retries operations whose errors the classifier accepts.
type Retrier struct {
	policy    Policy
	retryable Classifier
	logger    zerolog.Logger
}

// New creates a Retrier. A nil classifier retries nothing.
func New(policy Policy, retryable Classifier, logger zerolog.Logger) *Retrier {
	if retryable == nil {
		retryable = func(error) bool { return false }
	}
	return &Retrier{policy: policy, retryable: retryable, logger: logger}
}

// Policy returns the retry bounds.
func (r *Retrier) Policy() Policy {
	return r.policy
}

// Retry executes operation, backing off between transient failures. The last
// error is returned once retries or elapsed time run out.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.InitialInterval
	b.MaxInterval = r.policy.MaxInterval
	b.MaxElapsedTime = r.policy.MaxElapsedTime

	retryCount := 0

	return backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		if !r.retryable(err) {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > r.policy.MaxRetries {
			return backoff.Permanent(err)
		}

		r.logger.Warn().Err(err).Int("retry", retryCount).Msg("retryable database error, retrying")

		return err
	}, backoff.WithContext(b, ctx))
}
