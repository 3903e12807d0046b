package middleware

import (
	"fmt"
	"net/http"

	"github.com/angeloszaimis/api-gateway/internal/metrics"
	"github.com/angeloszaimis/api-gateway/internal/ratelimit"
)

// RateLimit gates requests through the fixed-window limiter keyed by client
// address. Rejected requests are answered 429 with Retry-After.
func RateLimit(limiter *ratelimit.Limiter, collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)

			if !limiter.Admit(key) {
				if collector != nil {
					collector.Emit(metrics.Event{Type: metrics.EventRateLimited})
				}

				w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.Limit()))
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(limiter.RetryAfter(key).Seconds())))
				http.Error(w, "Too many requests, please try again later.", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
