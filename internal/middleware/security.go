package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/healthtips-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerXXSSProtection          = "X-XSS-Protection"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerXXSSProtection, "1; mode=block")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// HostCheck answers 403 when r.Host does not match allowedHost (bare hostname,
// no scheme or port). An empty allowedHost disables the check.
func HostCheck(allowedHost string) func(http.Handler) http.Handler {
	allowedHost = strings.TrimSpace(allowedHost)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowedHost == "" {
				next.ServeHTTP(w, r)
				return
			}
			reqHost := r.Host
			if host, _, err := net.SplitHostPort(reqHost); err == nil {
				reqHost = host
			}
			if !strings.EqualFold(strings.TrimSpace(reqHost), allowedHost) {
				writeJSON(w, http.StatusForbidden, errorBody{Error: "Forbidden"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// --- Per-IP rate limiting ---

const (
	// API-wide: 5 req/s, burst 20
	GlobalRateLimitRPS   = 5
	GlobalRateLimitBurst = 20
	// login and callback: 1 req/5s, burst 3
	LoginRateLimitEvery = 5 * time.Second
	LoginRateLimitBurst = 3

	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	message string

	mu      sync.Mutex
	entries map[string]*limiterEntry
	now     func() time.Time
}

func NewRateLimiter(limit rate.Limit, burst int, message string) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		burst:   burst,
		message: message,
		entries: make(map[string]*limiterEntry),
		now:     time.Now,
	}
}

// NewGlobalRateLimiter applies to every route.
func NewGlobalRateLimiter() *RateLimiter {
	return NewRateLimiter(rate.Limit(GlobalRateLimitRPS), GlobalRateLimitBurst, "Too many requests. Please slow down.")
}

// NewLoginRateLimiter is the stricter limiter for the OAuth entry points.
func NewLoginRateLimiter() *RateLimiter {
	return NewRateLimiter(rate.Every(LoginRateLimitEvery), LoginRateLimitBurst, "Too many login attempts. Please try again later.")
}

func (l *RateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = e
	}
	e.lastUse = l.now()
	return e.limiter
}

// Sweep drops limiters idle for longer than ttl.
func (l *RateLimiter) Sweep(ttl time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for ip, e := range l.entries {
		if now.Sub(e.lastUse) > ttl {
			delete(l.entries, ip)
			n++
		}
	}
	return n
}

// Run sweeps idle limiters until ctx is done.
func (l *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep(limiterTTL)
		}
	}
}

// Handler returns 429 once the client IP has exhausted its bucket.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientip.RealClientIP(r)
		if !l.get(ip).Allow() {
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "Too many requests", Message: l.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}
