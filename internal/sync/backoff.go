// Package sync reconciles a local directory tree against a remote
// content-addressed object store, driven by the per-file state table in
// internal/store's key_item_cache rows.
package sync

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// ErrBackoffExhausted is returned when the cumulative retry timeout elapses
// without the wrapped call succeeding.
var ErrBackoffExhausted = errors.New("exponential backoff exhausted")

// backoffStart is the first retry delay.
const backoffStart = time.Second

// backoffBudget is the cumulative timeout after which a retrying call
// surfaces its last error instead of retrying again.
const backoffBudget = 64 * time.Second

// ExponentialRetry calls fn, retrying on error with jittered exponential
// backoff: each failed attempt sleeps the current delay, then multiplies
// the delay by 4*U(0,1) before the next attempt. Retries stop once the
// cumulative elapsed time would exceed backoffBudget, at which point the
// last error is returned wrapped in ErrBackoffExhausted.
func ExponentialRetry(ctx context.Context, fn func() error) error {
	delay := backoffStart
	var elapsed time.Duration
	var lastErr error

	for {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		elapsed += delay
		if elapsed > backoffBudget {
			return errors.Join(ErrBackoffExhausted, lastErr)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * 4 * rand.Float64())
		if delay <= 0 {
			delay = backoffStart
		}
	}
}
