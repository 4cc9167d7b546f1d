package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// DefaultQueuePolicy implements the Dispatch Queue retry contract from spec
// §4.2: three total attempts, exponential backoff starting at 1000ms.
func DefaultQueuePolicy(log *zap.Logger) Policy {
	return Policy{
		Name:     "dispatch_queue",
		Attempts: 3,
		Backoff:  ExpoJitter{Base: 1000 * time.Millisecond, Max: 30 * time.Second, Jitter: 0.2},
		Retryable: func(err error) bool {
			return err != nil
		},
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Warn("job handler retry", zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && !errors.Is(err, context.Canceled) {
				log.Error("job retries exhausted", zap.Error(err))
			}
		},
	}
}
