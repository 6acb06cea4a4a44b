package logger

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if w.statusCode == 0 {
		w.statusCode = statusCode
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

// Middleware tags each request with ids and logs its start and completion.
func Middleware(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-Id")
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := r.Context()
			ctx = WithRequestID(ctx, requestID)
			ctx = WithTraceID(ctx, uuid.New().String())
			ctx = WithCustomFields(ctx, map[string]interface{}{
				"method": r.Method,
				"path":   r.URL.Path,
				"remote": r.RemoteAddr,
			})
			r = r.WithContext(ctx)

			w.Header().Set("X-Request-Id", requestID)
			wrapper := &responseWriterWrapper{ResponseWriter: w}

			start := time.Now()
			logger.Debug(ctx, "request started")

			next.ServeHTTP(wrapper, r)

			logger.Info(ctx, "request completed",
				"duration_ms", time.Since(start).Milliseconds(),
				"status_code", wrapper.Status(),
			)
		})
	}
}
