package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// staleAfter is how long an idle identifier keeps its limiter
const staleAfter = 5 * time.Minute

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per identifier
type RateLimiter struct {
	limiters map[string]*entry
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

// PerMinute converts a per-minute count to a rate.Limit.
func PerMinute(n float64) rate.Limit {
	return rate.Limit(n / 60)
}

// NewRateLimiter creates a limiter. Idle identifiers are dropped until
// ctx is done.
func NewRateLimiter(ctx context.Context, r rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*entry),
		rate:     r,
		burst:    burst,
	}
	go rl.cleanupStale(ctx)
	return rl
}

// Allow reports whether identifier may make a request now.
func (rl *RateLimiter) Allow(identifier string) bool {
	rl.mu.Lock()
	e, ok := rl.limiters[identifier]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[identifier] = e
	}
	e.lastSeen = time.Now()
	rl.mu.Unlock()
	return e.limiter.Allow()
}

// Len returns the number of tracked identifiers.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) cleanupStale(ctx context.Context) {
	ticker := time.NewTicker(staleAfter)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.mu.Lock()
			for id, e := range rl.limiters {
				if time.Since(e.lastSeen) > staleAfter {
					delete(rl.limiters, id)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// PerIP rate limits by client IP.
func PerIP(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

// PerUser rate limits by authenticated user. It must run after JWTAuth;
// anonymous requests pass through.
func PerUser(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == "" {
			c.Next()
			return
		}
		if !rl.Allow(userID) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please slow down.",
			})
			return
		}
		c.Next()
	}
}

// MessageLimiter limits messages on a single WebSocket connection
type MessageLimiter struct {
	limiter *rate.Limiter
}

// NewMessageLimiter allows perMinute messages with a burst of the same size.
func NewMessageLimiter(perMinute int) *MessageLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	return &MessageLimiter{limiter: rate.NewLimiter(PerMinute(float64(perMinute)), perMinute)}
}

// Allow checks if a message is allowed
func (ml *MessageLimiter) Allow() bool {
	return ml.limiter.Allow()
}
