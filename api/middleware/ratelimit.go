package middleware

import (
	"net/http"
	"net/netip"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pricetag/config"
	"github.com/use-agent/pricetag/models"
	"golang.org/x/time/rate"
)

// sweepEvery is the minimum gap between passes over idle buckets.
const sweepEvery = time.Minute

// ipLimiters holds one token bucket per client IP.
type ipLimiters struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	buckets   map[string]*rate.Limiter
	lastSweep time.Time
}

func (l *ipLimiters) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= sweepEvery {
		l.sweep(now)
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = rate.NewLimiter(l.rps, l.burst)
		l.buckets[ip] = b
	}
	return b.AllowN(now, 1)
}

// sweep drops buckets that have refilled completely; a fresh bucket behaves
// the same, so nothing is lost. Caller holds mu.
func (l *ipLimiters) sweep(now time.Time) {
	for ip, b := range l.buckets {
		if b.TokensAt(now) >= float64(l.burst) {
			delete(l.buckets, ip)
		}
	}
	l.lastSweep = now
}

// RateLimit returns per-client-IP token-bucket rate limiting for GET /scrape.
//
// Loopback callers skip the limiter when cfg.ExemptLoopback is set: the
// spreadsheet sync reaches /scrape over 127.0.0.1 and would otherwise drain
// one shared bucket with its fan-out.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	limiters := &ipLimiters{
		rps:     rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
		buckets: make(map[string]*rate.Limiter),
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if cfg.ExemptLoopback && isLoopback(ip) {
			c.Next()
			return
		}

		if !limiters.allow(ip, time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   "rate_limited",
				Details: "too many scrape requests from this client, retry shortly",
			})
			return
		}
		c.Next()
	}
}

func isLoopback(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	return err == nil && addr.Unmap().IsLoopback()
}
