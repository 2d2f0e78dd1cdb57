package services

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiterService throttles the operator-facing trigger endpoint so a
// burst of requests can't queue more runs than the worker pool can absorb.
type RateLimiterService struct {
	limiter *rate.Limiter
}

// NewRateLimiterService creates a rate limiter from the configured
// requests-per-second and burst size.
func NewRateLimiterService(requestsPerSecond float64, burst int) *RateLimiterService {
	return &RateLimiterService{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until a request is allowed under the rate limit.
func (s *RateLimiterService) Wait(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

// Allow checks if a request is allowed without blocking.
func (s *RateLimiterService) Allow() bool {
	return s.limiter.Allow()
}
