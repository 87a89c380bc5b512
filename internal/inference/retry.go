package inference

import (
	"context"
	"time"

	"github.com/avast/retry-go"
)

// Retry runs fn once plus up to maxRetryAttempts retries with exponential backoff.
// Only errors accepted by IsRetryable are retried; the last error is returned unwrapped.
func Retry(ctx context.Context, maxRetryAttempts uint, fn func() (string, error)) (string, error) {
	var result string
	if err := retry.Do(
		func() error {
			text, err := fn()
			if err != nil {
				if !IsRetryable(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = text
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(maxRetryAttempts+1),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return "", err
	}
	return result, nil
}
