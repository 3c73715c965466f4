// Package retry re-runs store operations that failed with a transient
// store_unavailable error.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	engerr "github.com/KirkDiggler/cultivation-idle/internal/errors"
)

// Policy bounds how a store operation is retried
type Policy struct {
	// Retries is the number of attempts after the first one
	Retries int

	// InitialInterval is the first backoff delay; it doubles per attempt
	InitialInterval time.Duration

	// MaxInterval caps a single backoff delay
	MaxInterval time.Duration
}

// DefaultPolicy retries twice starting at 50ms
func DefaultPolicy() Policy {
	return Policy{
		Retries:         2,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
	}
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.MaxElapsedTime = 0

	retries := p.Retries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}

// Do runs op until it succeeds, fails with a non-transient error or the
// retries are used up. The last error is returned unchanged.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	return backoff.Retry(func() error {
		err := op(ctx)
		if err == nil || engerr.IsStoreUnavailable(err) {
			return err
		}
		return backoff.Permanent(err)
	}, p.backOff(ctx))
}

// Value is Do for operations that return a result
func Value[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := Do(ctx, p, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
