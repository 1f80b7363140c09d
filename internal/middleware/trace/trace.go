// Package trace logs every request and records its latency under the matched
// route pattern.
package trace

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fintrack/internal/log"
	"fintrack/internal/metrics"
)

// Middleware handles request tracing and logging
type Middleware struct {
	extractIP func(*http.Request) string
	logger    *log.Logger
}

// NewMiddleware creates a new trace middleware. It expects chi's RequestID
// middleware to run first.
func NewMiddleware(logger *log.Logger, extractIP func(*http.Request) string) *Middleware {
	return &Middleware{
		extractIP: extractIP,
		logger:    logger,
	}
}

// Handler returns HTTP middleware for request tracing.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := m.extractIP(r)

		reqLogger := m.logger.With(log.FieldRequestID, middleware.GetReqID(r.Context()))
		r = r.WithContext(log.WithLogger(r.Context(), reqLogger))
		sl := log.NewStructuredLogger(reqLogger)
		sl.LogHTTPStart(r.Context(), r, clientIP)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		route := routePattern(r)
		metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		sl.LogHTTPEnd(r.Context(), r, status, elapsed.Milliseconds(), clientIP)
	})
}

// routePattern keeps metric cardinality bounded by using the chi pattern
// rather than the raw path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
