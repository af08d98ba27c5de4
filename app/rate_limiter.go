package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/arshitcc/Ping-Park/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RateLimiter throttles per client IP over a sliding window. Hits older than
// the window are pruned on every check, so memory stays proportional to the
// number of recently active clients.
type RateLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
	}
}

func (rl *RateLimiter) Allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	recent := rl.hits[clientIP][:0]
	for _, hit := range rl.hits[clientIP] {
		if hit.After(cutoff) {
			recent = append(recent, hit)
		}
	}

	if len(recent) >= rl.limit {
		rl.hits[clientIP] = recent
		return false
	}

	rl.hits[clientIP] = append(recent, now)
	return true
}

func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, handlers.APIResponse{
				Success:    false,
				StatusCode: http.StatusTooManyRequests,
				Message:    "Too many requests",
				Data:       gin.H{},
				Errors:     []string{},
			})
			return
		}

		c.Next()
	}
}
