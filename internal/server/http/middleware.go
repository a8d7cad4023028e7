package httpserver

import (
	"net"
	"net/http"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/DAYGoodTime/nogu/pkg/log"
)

// requestLogger records one line per request with status and latency.
func requestLogger(logger log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				log.Str("method", r.Method),
				log.Str("path", r.URL.Path),
				log.Int("status", ww.Status()),
				log.Dur("elapsed", time.Since(start)),
				log.Str("request_id", chimw.GetReqID(r.Context())))
		})
	}
}

const (
	limiterIdleTTL    = 15 * time.Minute
	limiterSweepEvery = 2 * time.Minute
)

// clientLimiter keeps one token bucket per client address. Idle entries are
// swept during lookups so no background goroutine is needed.
type clientLimiter struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	rps       rate.Limit
	burst     int
	lastSweep time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		entries:   make(map[string]*limiterEntry),
		rps:       rate.Limit(rps),
		burst:     burst,
		lastSweep: time.Now(),
	}
}

func (c *clientLimiter) allow(key string) bool {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastSweep) > limiterSweepEvery {
		cutoff := now.Add(-limiterIdleTTL)
		for k, ent := range c.entries {
			if ent.lastSeen.Before(cutoff) {
				delete(c.entries, k)
			}
		}
		c.lastSweep = now
	}

	ent, ok := c.entries[key]
	if !ok {
		ent = &limiterEntry{lim: rate.NewLimiter(c.rps, c.burst)}
		c.entries[key] = ent
	}
	ent.lastSeen = now
	return ent.lim.Allow()
}

// rateLimit answers 429 once a client exhausts its bucket. Clients are keyed
// by remote host, which RealIP has already resolved through proxy headers.
func rateLimit(limiter *clientLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if !limiter.allow(host) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
