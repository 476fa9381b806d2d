package api

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// rateLimitEntry tracks attempt counts for a single client IP.
type rateLimitEntry struct {
	count   int
	resetAt time.Time
}

// loginRateLimiter limits login attempts per IP within a fixed window to
// slow down credential stuffing.
type loginRateLimiter struct {
	mu          sync.Mutex
	entries     map[string]*rateLimitEntry
	maxAttempts int
	window      time.Duration
}

func newLoginRateLimiter(maxAttempts int, window time.Duration) *loginRateLimiter {
	return &loginRateLimiter{
		entries:     make(map[string]*rateLimitEntry),
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// allow checks whether the given IP may attempt another login.
// Returns (allowed, secondsUntilReset).
func (rl *loginRateLimiter) allow(ip string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	// Lazy cleanup of expired windows.
	for k, e := range rl.entries {
		if now.After(e.resetAt) {
			delete(rl.entries, k)
		}
	}

	entry, ok := rl.entries[ip]
	if !ok {
		rl.entries[ip] = &rateLimitEntry{count: 1, resetAt: now.Add(rl.window)}
		return true, 0
	}

	if now.After(entry.resetAt) {
		entry.count = 1
		entry.resetAt = now.Add(rl.window)
		return true, 0
	}

	if entry.count >= rl.maxAttempts {
		retryAfter := int(entry.resetAt.Sub(now).Seconds()) + 1
		if retryAfter < 1 {
			retryAfter = 1
		}
		return false, retryAfter
	}

	entry.count++
	return true, 0
}

// clientIP extracts the client address from RemoteAddr. X-Forwarded-For is
// intentionally not trusted; a spoofed header must not reset the limit.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// loginRateLimitMiddleware wraps the login handler with per-IP limiting.
// Exceeding the limit yields 429 with a Retry-After header. A
// non-positive maxAttempts disables limiting entirely.
func loginRateLimitMiddleware(maxAttempts int, window time.Duration, next http.Handler) http.Handler {
	if maxAttempts <= 0 {
		return next
	}
	limiter := newLoginRateLimiter(maxAttempts, window)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, retryAfter := limiter.allow(clientIP(r))
		if !allowed {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprintf(w, `{"message":"too many login attempts, retry in %ds"}`, retryAfter)
			return
		}
		next.ServeHTTP(w, r)
	})
}
