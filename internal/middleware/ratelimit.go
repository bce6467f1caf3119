package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/margintrend/internal/domain/dto"
)

const (
	DefaultRateLimit  = 60
	DefaultRateWindow = time.Minute
)

type client struct {
	windowStart time.Time
	count       int
}

// rateLimiter is a fixed-window counter per client IP, kept in memory.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   int
	window  time.Duration
	now     func() time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = DefaultRateWindow
	}
	return &rateLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// allow counts one request for ip and reports whether it is within the limit.
// Entries whose window has expired are dropped on the way.
func (rl *rateLimiter) allow(ip string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for k, cl := range rl.clients {
		if now.Sub(cl.windowStart) > rl.window {
			delete(rl.clients, k)
		}
	}

	cl, ok := rl.clients[ip]
	if !ok {
		cl = &client{windowStart: now}
		rl.clients[ip] = cl
	}
	cl.count++
	return cl.count <= rl.limit
}

// RateLimiter allows up to limit requests per window for each client IP and
// answers 429 with an ErrorResponse beyond that. Non-positive arguments fall
// back to DefaultRateLimit per DefaultRateWindow.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	rl := newRateLimiter(limit, window)
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse("rate limit exceeded", nil))
			return
		}
		c.Next()
	}
}
