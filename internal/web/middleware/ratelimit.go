package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/buyerleads/internal/logging"
	"github.com/JonMunkholm/buyerleads/internal/ratelimit"
)

// IPRateLimit throttles every request per client address. Limiter errors
// let the request through.
func IPRateLimit(l ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := l.TryAcquire(r.Context(), "ip:"+r.RemoteAddr)
			if err != nil {
				logging.FromContext(r.Context()).Warn("ip rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

			if !res.Allowed {
				secs := int(math.Ceil(res.RetryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeJSONError(w, http.StatusTooManyRequests, "Too many requests. Please slow down.", "RATE002")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
