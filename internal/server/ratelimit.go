// internal/server/ratelimit.go
package server

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter throttles requests per client key.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

func (s *Server) buildLimiter() Limiter {
	if s.redis != nil {
		return &redisLimiter{
			server: s,
			limit:  int64(s.cfg.RateLimit.RequestsPerMinute),
		}
	}
	return newLocalLimiter(s.cfg.RateLimit.RequestsPerMinute, s.cfg.RateLimit.Burst)
}

// redisLimiter is a fixed one-minute window shared across instances. Redis
// failures fail open: throttling is protection, not a correctness property.
type redisLimiter struct {
	server *Server
	limit  int64
}

func (l *redisLimiter) Allow(ctx context.Context, key string) bool {
	count, err := l.server.redis.IncrWithWindow(ctx, "ratelimit:"+key, time.Minute)
	if err != nil {
		l.server.logger.Warn("rate limiter unavailable, allowing request", map[string]interface{}{
			"error": err.Error(),
		})
		return true
	}
	return count <= l.limit
}

// localLimiter is the in-process fallback when no Redis is configured: one
// token bucket per client key.
type localLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newLocalLimiter(requestsPerMinute, burst int) *localLimiter {
	return &localLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:    burst,
	}
}

func (l *localLimiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}
