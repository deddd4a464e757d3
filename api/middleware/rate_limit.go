package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/angelmondragon/streamflix-backend/api/responses"
	"github.com/angelmondragon/streamflix-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
)

// RateLimit applies a process-wide token bucket. A non-positive rate disables it.
func RateLimit(cfg config.RateLimitConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg.RequestsPerSecond <= 0 {
			return next
		}
		burst := cfg.Burst
		if burst <= 0 {
			burst = int(math.Ceil(cfg.RequestsPerSecond))
		}
		limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
		retryAfter := retryAfterSeconds(time.Duration(float64(time.Second) / cfg.RequestsPerSecond))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				if logg != nil {
					logg.Warn(r.Context(), "rate_limit.blocked")
				}
				w.Header().Set("Retry-After", retryAfter)
				responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
