// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key. It is safe for concurrent use.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// New allows burst requests at once per key, refilled at n per every.
func New(n int, every time.Duration, burst int) *Limiter {
	if n <= 0 {
		n = 1
	}
	if burst <= 0 {
		burst = n
	}
	return &Limiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Every(every / time.Duration(n)),
		burst:   burst,
		idleTTL: 2 * every,
		now:     time.Now,
	}
}

// Allow reports whether one more request for key may proceed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// Reset forgets key, e.g. after a successful login.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// sweep drops idle buckets at most once per idle period. Callers hold mu.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	for k, b := range l.buckets {
		if now.Sub(b.seen) > l.idleTTL {
			delete(l.buckets, k)
		}
	}
	l.lastSweep = now
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter throttles login attempts per client IP and per username.
type LoginLimiter struct {
	ip       *Limiter
	username *Limiter
}

// NewLoginLimiter allows perMinute attempts per IP per minute and a fifth
// of that (at least 3) per username.
func NewLoginLimiter(perMinute int) *LoginLimiter {
	perUser := perMinute / 5
	if perUser < 3 {
		perUser = 3
	}
	return &LoginLimiter{
		ip:       New(perMinute, time.Minute, perMinute),
		username: New(perUser, time.Minute, perUser),
	}
}

// Check reports whether a login attempt may proceed and, if not, why.
func (ll *LoginLimiter) Check(r *http.Request, username string) (bool, string) {
	if !ll.ip.Allow(ClientIP(r)) {
		return false, "too many login attempts, please wait a minute"
	}
	if key := strings.ToLower(strings.TrimSpace(username)); key != "" {
		if !ll.username.Allow(key) {
			return false, "too many login attempts for this account, please wait a minute"
		}
	}
	return true, ""
}

// ResetUsername clears the per-account budget after a successful login.
func (ll *LoginLimiter) ResetUsername(username string) {
	if key := strings.ToLower(strings.TrimSpace(username)); key != "" {
		ll.username.Reset(key)
	}
}
