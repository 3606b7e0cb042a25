package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"
)

// uploadLimiter throttles spreadsheet uploads, which are the only requests
// that parse a whole workbook.
type uploadLimiter struct {
	limiter *rate.Limiter
	metrics *Metrics
	logger  *slog.Logger
}

func newUploadLimiter(rps float64, burst int, metrics *Metrics, logger *slog.Logger) *uploadLimiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &uploadLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		metrics: metrics,
		logger:  logger,
	}
}

// Handler rejects requests beyond the configured rate with 429.
func (l *uploadLimiter) Handler(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiter.Allow() {
			l.logger.WarnContext(r.Context(), "upload rate limit exceeded",
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)
			l.metrics.uploads.WithLabelValues("throttled").Inc()
			w.Header().Set("Retry-After", "1")
			_ = render.Render(w, r, newAPIError(http.StatusTooManyRequests, "RATE_LIMITED", "too many uploads, retry shortly"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
