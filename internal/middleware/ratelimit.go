package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// InMemoryRateLimiter limits requests per key (e.g. IP or user ID) with a
// fixed window counter; position updates and heartbeats are frequent but
// cheap, so a coarse window is enough.
type InMemoryRateLimiter struct {
	mu      sync.Mutex
	counts  map[string]int
	started time.Time
	limit   int
	window  time.Duration
	stop    chan struct{}
}

func NewInMemoryRateLimiter(limit int, window time.Duration) *InMemoryRateLimiter {
	r := &InMemoryRateLimiter{
		counts:  make(map[string]int),
		started: time.Now(),
		limit:   limit,
		window:  window,
		stop:    make(chan struct{}),
	}
	go r.reset()
	return r
}

func (r *InMemoryRateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.started) > r.window {
		r.counts = make(map[string]int)
		r.started = time.Now()
	}
	if r.counts[key] >= r.limit {
		return false
	}
	r.counts[key]++
	return true
}

func (r *InMemoryRateLimiter) reset() {
	tick := time.NewTicker(r.window)
	defer tick.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-tick.C:
			r.mu.Lock()
			r.counts = make(map[string]int)
			r.started = time.Now()
			r.mu.Unlock()
		}
	}
}

// Close stops the background reset goroutine.
func (r *InMemoryRateLimiter) Close() {
	close(r.stop)
}

// RateLimit applies the limiter keyed by client IP.
func RateLimit(limiter *InMemoryRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
