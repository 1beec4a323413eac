package service

import (
	"context"
	"fmt"
	"time"

	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/repository/contract"
)

// IRateLimitService bounds how many realtime events one principal may send per window.
type IRateLimitService interface {
	Allow(ctx context.Context, principal string) bool
}

type rateLimitService struct {
	rateLimitRepo contract.RateLimitRepository
	limit         int
	window        time.Duration
	logger        logger.ILogger
}

// NewRateLimitService with a nil repository or a non-positive limit allows everything.
func NewRateLimitService(rateLimitRepo contract.RateLimitRepository, limit int, window time.Duration, logger logger.ILogger) IRateLimitService {
	return &rateLimitService{
		rateLimitRepo: rateLimitRepo,
		limit:         limit,
		window:        window,
		logger:        logger,
	}
}

// Allow fails open: a counter store error lets the event through.
func (s *rateLimitService) Allow(ctx context.Context, principal string) bool {
	if s.rateLimitRepo == nil || s.limit <= 0 {
		return true
	}

	count, err := s.rateLimitRepo.Increment(ctx, fmt.Sprintf("ratelimit:realtime:%s", principal), s.window)
	if err != nil {
		s.logger.Warn("RATE_LIMIT", "Rate limit check failed, allowing event", map[string]interface{}{
			"user_id": principal,
			"error":   err.Error(),
		})
		return true
	}
	return count <= int64(s.limit)
}
