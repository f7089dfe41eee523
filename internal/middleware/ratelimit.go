package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	// IdleAfter is how long a client may stay silent before its bucket is
	// forgotten. Zero means ten minutes.
	IdleAfter time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter tracks one token bucket per client IP.
type RateLimiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	clients map[string]*bucket
}

// NewRateLimiter creates a limiter. Call Sweep periodically, or Run, to
// forget idle clients.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.IdleAfter <= 0 {
		cfg.IdleAfter = 10 * time.Minute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &RateLimiter{cfg: cfg, clients: make(map[string]*bucket)}
}

// Run sweeps idle clients until ctx is done.
func (l *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.IdleAfter / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Sweep(now)
		}
	}
}

// Sweep drops buckets not used since now minus IdleAfter and returns how
// many were dropped.
func (l *RateLimiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for ip, b := range l.clients {
		if now.Sub(b.lastSeen) > l.cfg.IdleAfter {
			delete(l.clients, ip)
			n++
		}
	}
	return n
}

func (l *RateLimiter) limiterFor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.clients[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.Burst)}
		l.clients[ip] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

// Middleware rejects requests over the client's rate with 429 and a
// Retry-After header.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := l.limiterFor(clientIP(r))

		res := limiter.Reserve()
		if !res.OK() {
			writeTooManyRequests(w, 0)
			return
		}
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			writeTooManyRequests(w, int(delay.Seconds())+1)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Burst))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		next.ServeHTTP(w, r)
	})
}

// clientIP is the host part of RemoteAddr. Run chi's RealIP in front of
// this middleware when the server sits behind a trusted proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeTooManyRequests(w http.ResponseWriter, retryAfterSecs int) {
	if retryAfterSecs > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSecs))
	}
	writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
}
