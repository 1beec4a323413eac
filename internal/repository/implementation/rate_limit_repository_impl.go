package implementation

import (
	"context"
	"time"

	"collab-workspace-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

type RateLimitRepositoryImpl struct {
	client *redis.Client
}

func NewRateLimitRepository(client *redis.Client) contract.RateLimitRepository {
	return &RateLimitRepositoryImpl{client: client}
}

// Increment counts within a fixed window. Any counter found without an expiry gets one,
// so a lost EXPIRE cannot pin the key forever.
func (r *RateLimitRepositoryImpl) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if ttl.Val() < 0 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return incr.Val(), err
		}
	}
	return incr.Val(), nil
}
