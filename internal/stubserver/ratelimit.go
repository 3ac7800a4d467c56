package stubserver

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"assistchat/internal/logging"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterOptions configures the per-client rate limiter.
type RateLimiterOptions struct {
	// Limit defines requests per second
	Limit rate.Limit
	// Burst defines maximum burst size allowed
	Burst int
	// ExpiryDuration defines how long to keep idle client state
	ExpiryDuration time.Duration
	// KeyFunc extracts the limiting key from a request
	KeyFunc func(*gin.Context) string
}

// DefaultRateLimiterOptions returns sensible defaults
func DefaultRateLimiterOptions() RateLimiterOptions {
	return RateLimiterOptions{
		Limit:          5,
		Burst:          10,
		ExpiryDuration: 10 * time.Minute,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client key.
type RateLimiter struct {
	mu        sync.Mutex
	options   RateLimiterOptions
	clients   map[string]*limiterEntry
	lastSweep time.Time
}

// NewRateLimiter creates a rate limiter. A zero Limit disables limiting.
func NewRateLimiter(options RateLimiterOptions) *RateLimiter {
	defaults := DefaultRateLimiterOptions()
	if options.KeyFunc == nil {
		options.KeyFunc = defaults.KeyFunc
	}
	if options.ExpiryDuration <= 0 {
		options.ExpiryDuration = defaults.ExpiryDuration
	}
	if options.Burst <= 0 {
		options.Burst = 1
	}
	return &RateLimiter{
		options:   options,
		clients:   make(map[string]*limiterEntry),
		lastSweep: time.Now(),
	}
}

// Middleware returns a gin middleware enforcing the limit.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.options.Limit <= 0 {
			c.Next()
			return
		}

		key := r.options.KeyFunc(c)
		if !r.getLimiter(key).Allow() {
			logging.Get(logging.CategoryStub).Warn("rate limit exceeded for %s on %s", key, c.Request.URL.Path)
			c.Header("Retry-After", "1")
			c.Header("X-RateLimit-Limit", strconv.Itoa(r.options.Burst))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

// getLimiter returns the limiter for key, sweeping idle entries on the way.
func (r *RateLimiter) getLimiter(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Sub(r.lastSweep) > r.options.ExpiryDuration {
		for k, v := range r.clients {
			if now.Sub(v.lastSeen) > r.options.ExpiryDuration {
				delete(r.clients, k)
			}
		}
		r.lastSweep = now
	}

	v, exists := r.clients[key]
	if !exists {
		v = &limiterEntry{limiter: rate.NewLimiter(r.options.Limit, r.options.Burst)}
		r.clients[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Clients returns the number of tracked client keys.
func (r *RateLimiter) Clients() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
