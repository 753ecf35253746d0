package prisonersearch

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// retry runs fn up to maxAttempts times, waiting delay between attempts. The
// wait aborts as soon as ctx is cancelled so callers are not held through the
// remaining backoff.
func retry(ctx context.Context, logger *logrus.Logger, maxAttempts int, delay time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err
			logger.Errorf("Attempt %d/%d failed: %v", attempt, maxAttempts, err)
			if attempt < maxAttempts {
				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return fmt.Errorf("aborted after %d attempts: %w", attempt, ctx.Err())
				case <-timer.C:
				}
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
