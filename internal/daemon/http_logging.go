package daemon

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"jotter/internal/logging"
)

const requestIDHeader = "X-Request-Id"

// requestScope lets inner middleware report facts back to the logger.
type requestScope struct {
	userID string
}

type requestScopeKey struct{}

func withRequestScope(ctx context.Context, scope *requestScope) context.Context {
	return context.WithValue(ctx, requestScopeKey{}, scope)
}

func requestScopeFrom(ctx context.Context) *requestScope {
	scope, _ := ctx.Value(requestScopeKey{}).(*requestScope)
	return scope
}

// LoggingMiddleware tags each request with an id and logs one
// http_request line when the handler returns.
func LoggingMiddleware(logger logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = logging.NewRequestID()
			}
			w.Header().Set(requestIDHeader, reqID)
			start := time.Now()
			scope := &requestScope{}
			rec := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(rec, r.WithContext(withRequestScope(r.Context(), scope)))
			status := rec.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []logging.Field{
				logging.F("request_id", reqID),
				logging.F("method", r.Method),
				logging.F("path", r.URL.Path),
				logging.F("status", status),
				logging.F("bytes", rec.BytesWritten()),
				logging.F("latency_ms", time.Since(start).Milliseconds()),
			}
			if scope.userID != "" {
				fields = append(fields, logging.F("user_id", scope.userID))
			}
			if status >= http.StatusInternalServerError {
				logger.Error("http_request", fields...)
				return
			}
			logger.Info("http_request", fields...)
		})
	}
}
