package services

import (
	"context"
	"time"

	"pos-api/store"
)

// retryOnConflict calls fn up to attempts times while it fails with a
// unique violation, sleeping backoff*attempt between tries. Any other
// result is returned immediately. When attempts run out the last unique
// violation is returned.
func retryOnConflict(ctx context.Context, attempts int, backoff time.Duration, fn func(attempt int) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(attempt)
		if !store.IsUniqueViolation(err) {
			return err
		}
		if attempt == attempts || backoff <= 0 {
			continue
		}
		timer := time.NewTimer(backoff * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
