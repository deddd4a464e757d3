package middleware

import (
	"net/http"
	"time"

	"github.com/angelmondragon/streamflix-backend/pkg/metrics"
)

// Metrics records request count and latency per chi route pattern so that
// path ids do not explode label cardinality.
func Metrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r)
			m.Observe(r.Method, routePattern(r), rec.statusCode(), time.Since(start))
		})
	}
}
