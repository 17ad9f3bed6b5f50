package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"paycore/internal/transport/http/api"
)

type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*rateLimiter)

type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	keyFn   RateLimitKeyFunc
	clients map[string]*rate.Limiter
}

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(rl *rateLimiter) {
		if fn != nil {
			rl.keyFn = fn
		}
	}
}

// RateLimit allows limit requests per window for each key, refilling
// continuously. The default key is the authenticated user, then the client IP.
func RateLimit(limit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	rl := newRateLimiter(limit, window, actorOrIPKey)
	for _, opt := range opts {
		opt(rl)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.enforce(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SensitiveMutationRateLimit applies a tighter budget to payroll generation,
// bulk deductions, payslip dispatch, roster sync and request reviews.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	sensitiveByActor := newRateLimiter(max(baseLimit/4, 1), window, actorOrIPKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSensitiveMutation(r) && !sensitiveByActor.enforce(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + GetOrganization(r.Context()) + ":" + user.UserID
	}
	return clientIPKey(r)
}

func clientIPKey(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		if value := strings.TrimSpace(strings.Split(fwd, ",")[0]); value != "" {
			return value
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

func newRateLimiter(limit int, window time.Duration, keyFn RateLimitKeyFunc) *rateLimiter {
	if keyFn == nil {
		keyFn = actorOrIPKey
	}
	return &rateLimiter{
		limit:   limit,
		window:  window,
		keyFn:   keyFn,
		clients: map[string]*rate.Limiter{},
	}
}

func (rl *rateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	lim, ok := rl.clients[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(rl.window/time.Duration(rl.limit)), rl.limit)
		rl.clients[key] = lim
	}
	return lim
}

func (rl *rateLimiter) enforce(w http.ResponseWriter, r *http.Request) bool {
	if rl.limit <= 0 || rl.window <= 0 {
		return true
	}

	key := rl.keyFn(r)
	if key == "" {
		key = clientIPKey(r)
	}
	lim := rl.limiter(key)
	now := time.Now()
	reservation := lim.ReserveN(now, 1)
	delay := reservation.DelayFrom(now)
	if delay > 0 {
		reservation.CancelAt(now)
	}
	remaining := int(math.Floor(lim.TokensAt(now)))

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))

	if delay > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(max(int(math.Ceil(delay.Seconds())), 1)))
		slog.Warn("rate limit exceeded",
			"key", key,
			"path", r.URL.Path,
			"method", r.Method,
			"limit", rl.limit,
			"windowSec", int(rl.window.Seconds()),
		)
		api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
		return false
	}
	return true
}

func isSensitiveMutation(r *http.Request) bool {
	if r == nil || r.Method != http.MethodPost {
		return false
	}
	path := normalizedAPIPath(r.URL.Path)
	switch path {
	case "/payroll/generate",
		"/deductions/bulk",
		"/notifications/payslips",
		"/roster/sync":
		return true
	}
	return strings.HasPrefix(path, "/requests/") && (strings.HasSuffix(path, "/approve") || strings.HasSuffix(path, "/reject"))
}

func normalizedAPIPath(path string) string {
	cleaned := strings.TrimSpace(path)
	cleaned = strings.TrimPrefix(cleaned, "/api/v1")
	if cleaned == "" {
		return "/"
	}
	if !strings.HasPrefix(cleaned, "/") {
		return "/" + cleaned
	}
	return cleaned
}
