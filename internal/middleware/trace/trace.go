// Package trace logs every request with its chi request id and stores a
// request-scoped logger on the context for handlers to pick up.
package trace

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	applog "fintrack/internal/log"
)

type Middleware struct {
	extractIP func(*http.Request) string
	logger    *applog.Logger

	total  int64
	errors int64
}

type Metrics struct {
	TotalRequests int64
	ServerErrors  int64
}

func NewMiddleware(logger *applog.Logger, extractIP func(*http.Request) string) *Middleware {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Middleware{
		extractIP: extractIP,
		logger:    logger,
	}
}

// Middleware must run after chi's RequestID.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.RemoteAddr
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}
		requestID := middleware.GetReqID(r.Context())

		reqLogger := m.logger.With(applog.FieldRequestID, requestID)
		ctx := applog.WithContext(r.Context(), reqLogger)
		r = r.WithContext(ctx)
		reqHTTP := applog.NewStructuredLogger(reqLogger)

		atomic.AddInt64(&m.total, 1)
		reqHTTP.LogHTTPStart(ctx, r, clientIP)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if status >= 500 {
			atomic.AddInt64(&m.errors, 1)
		}
		reqHTTP.LogHTTPEnd(ctx, r, status, time.Since(start).Milliseconds(), clientIP)
	})
}

func (m *Middleware) GetMetrics() Metrics {
	return Metrics{
		TotalRequests: atomic.LoadInt64(&m.total),
		ServerErrors:  atomic.LoadInt64(&m.errors),
	}
}
