package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/config"
	"github.com/CosmicMagnetar/unilodge/internal/metrics"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	defaultBurst   = 5
	defaultIdleTTL = 10 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimiter hands out one token bucket per client IP. Buckets idle for
// longer than the idle TTL are evicted.
type RateLimiter struct {
	limiters  sync.Map
	cfg       config.RateLimitConfig
	idleTTL   time.Duration
	lastSweep atomic.Int64
	now       func() time.Time
}

// NewRateLimiter creates a per-IP limiter
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	idleTTL := cfg.IdleTTL
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	l := &RateLimiter{cfg: cfg, idleTTL: idleTTL, now: time.Now}
	l.lastSweep.Store(l.now().UnixNano())
	return l
}

func (l *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := l.now()
	l.maybeSweep(now)

	v, ok := l.limiters.Load(key)
	if !ok {
		burst := l.cfg.Burst
		if burst <= 0 {
			burst = defaultBurst
		}
		v, _ = l.limiters.LoadOrStore(key, &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(l.cfg.RPS), burst),
		})
	}

	entry := v.(*limiterEntry)
	entry.lastSeen.Store(now.UnixNano())
	return entry.limiter
}

// One caller per idle period runs the sweep
func (l *RateLimiter) maybeSweep(now time.Time) {
	last := l.lastSweep.Load()
	if now.UnixNano()-last < int64(l.idleTTL) {
		return
	}
	if !l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	l.sweep(now)
}

func (l *RateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-l.idleTTL).UnixNano()
	l.limiters.Range(func(key, v interface{}) bool {
		if v.(*limiterEntry).lastSeen.Load() < cutoff {
			l.limiters.Delete(key)
		}
		return true
	})
}

// Allow reports whether key may make another request now
func (l *RateLimiter) Allow(key string) bool {
	return l.getLimiter(key).Allow()
}

// Middleware rejects requests over the per-IP budget with 429. The key is
// gin's ClientIP, which only honours forwarded headers from trusted proxies.
// onLimited, if set, runs before the response is written.
func (l *RateLimiter) Middleware(onLimited func(c *gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.Allow(c.ClientIP()) {
			c.Next()
			return
		}

		metrics.IncRateLimited(c.FullPath())
		if onLimited != nil {
			onLimited(c)
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":   "rate_limit_exceeded",
			"message": "Too many requests. Please try again later.",
			"code":    "RATE_LIMITED",
		})
	}
}
