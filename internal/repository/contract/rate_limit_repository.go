package contract

import (
	"context"
	"time"
)

type RateLimitRepository interface {
	// Increment bumps the counter for key and starts its window on the first hit.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}
