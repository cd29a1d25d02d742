package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig configures a fixed-window rate limiter.
type RateLimitConfig struct {
	// Requests allowed per key within one window.
	Requests int
	// Window length; counters reset when it elapses.
	Window time.Duration
	// KeyFunc buckets requests. Defaults to the client IP.
	KeyFunc func(c echo.Context) string
	// Message returned with the 429.
	Message string
}

type windowCounter struct {
	hits    int
	resetAt time.Time
}

// RateLimiter tracks request counts per key in memory. Counters live for one
// window; a background sweep drops stale keys so the map stays bounded.
type RateLimiter struct {
	config RateLimitConfig
	mu     sync.Mutex
	counts map[string]*windowCounter
}

func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c echo.Context) string {
			return c.RealIP()
		}
	}
	if config.Message == "" {
		config.Message = "Too many requests. Please try again later."
	}

	rl := &RateLimiter{
		config: config,
		counts: make(map[string]*windowCounter),
	}

	go rl.sweep()

	return rl
}

// allow records one request for key and reports whether it fits the window.
func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	counter, ok := rl.counts[key]
	if !ok || now.After(counter.resetAt) {
		rl.counts[key] = &windowCounter{hits: 1, resetAt: now.Add(rl.config.Window)}
		return true
	}

	if counter.hits >= rl.config.Requests {
		return false
	}

	counter.hits++
	return true
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.allow(rl.config.KeyFunc(c)) {
				return echo.NewHTTPError(http.StatusTooManyRequests, rl.config.Message)
			}
			return next(c)
		}
	}
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(1 * time.Minute)
	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, counter := range rl.counts {
			if now.After(counter.resetAt) {
				delete(rl.counts, key)
			}
		}
		rl.mu.Unlock()
	}
}

// LoginRateLimiter guards POST /login: 5 attempts per minute per IP.
var LoginRateLimiter = NewRateLimiter(RateLimitConfig{
	Requests: 5,
	Window:   1 * time.Minute,
	Message:  "Too many login attempts. Please wait a minute before trying again.",
})

// PasswordResetRateLimiter guards the reset endpoints: 3 per hour per IP.
var PasswordResetRateLimiter = NewRateLimiter(RateLimitConfig{
	Requests: 3,
	Window:   1 * time.Hour,
	Message:  "Too many password reset requests. Please try again later.",
})

// APIRateLimiter is the blanket limit on authenticated routes: 60 per minute
// per IP.
var APIRateLimiter = NewRateLimiter(RateLimitConfig{
	Requests: 60,
	Window:   1 * time.Minute,
	Message:  "Rate limit exceeded. Please slow down your requests.",
})
