package api

import (
	"net"
	"net/http"
	"time"

	"github.com/knowledgeboard/knowledge-server/internal/http/response"
	"github.com/knowledgeboard/knowledge-server/internal/ratelimit"
)

// RateLimiter wraps KeyedRateLimiter for API use.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter allows ratePerInterval requests per interval per key, with
// bursts up to burst.
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *RateLimiter {
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

// WriteRateLimitMiddleware rate limits state-changing requests by client IP.
// Reads pass through untouched. Returns 429 Too Many Requests when the
// limit is exceeded.
func WriteRateLimitMiddleware(limiter *RateLimiter, retryAfter time.Duration, logger interface{ Warn(msg string, args ...any) }) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isWrite(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			key := getClientIP(r)
			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
				)
				response.TooManyRequests(w, retryAfter, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// getClientIP returns the host part of RemoteAddr. Forwarding headers are
// only honoured through middleware.RealIP when the proxy is trusted.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
