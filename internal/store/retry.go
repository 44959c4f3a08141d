package store

import (
	"context"
	"time"

	"github.com/chunkstore-io/chunkstore/internal/constants"
)

// WithRetry executes fn with exponential backoff for transient network
// failures. Not-found and corruption errors are returned immediately:
// retrying cannot make a missing record appear or fix inconsistent data.
func WithRetry(ctx context.Context, fn func() error) error {
	var err error
	delay := time.Duration(constants.RetryBaseDelayMs) * time.Millisecond

	for attempt := 1; attempt <= constants.MaxFetchRetries; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !IsNetworkError(err) {
			return err
		}
		if attempt == constants.MaxFetchRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return err
}
