package classifier

import (
	"context"
	"time"
)

const (
	// loadRetryDelay is how long the loader waits before its single retry
	// after a failed initial load.
	loadRetryDelay = 3 * time.Second

	// statusLogInterval is how often the loader logs model state while the
	// model is not ready.
	statusLogInterval = 15 * time.Second
)

// StartLoader begins the asynchronous model load. The initial attempt runs
// immediately; on failure one retry is made after loadRetryDelay. Requests
// never trigger a load, they observe the ready flag only.
//
// After a failed retry the goroutine stays alive logging model status every
// statusLogInterval, so an operator tailing debug logs can see the service is
// running on the fallback heuristic. The returned channel closes when the
// loader goroutine exits: on a successful load or on context cancellation.
func (c *Classifier) StartLoader(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	retryDelay := c.retryDelay
	if retryDelay <= 0 {
		retryDelay = loadRetryDelay
	}
	statusInterval := c.statusInterval
	if statusInterval <= 0 {
		statusInterval = statusLogInterval
	}

	go func() {
		defer close(done)

		if err := c.Load(); err == nil {
			return
		} else {
			c.logger.Warn("initial model load failed, retrying once",
				"retry_delay", retryDelay.String(),
				"error", err)
		}

		ticker := time.NewTicker(statusInterval)
		defer ticker.Stop()

		retry := time.NewTimer(retryDelay)
		defer retry.Stop()
		retryC := retry.C

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.logger.Debug("model status",
					"ready", false,
					"load_attempts", c.loadAttempts.Load())
			case <-retryC:
				if err := c.Load(); err == nil {
					return
				} else {
					c.logger.Error("model load retry failed, fallback classification stays active",
						"error", err)
				}
				// Keep ticking status; no further retries.
				retryC = nil
			}
		}
	}()

	return done
}
