package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"capworks/internal/platform/metrics"
	"capworks/internal/requestctx"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// Logger attaches a request scoped zap logger to the context, logs one line
// per request and feeds the metrics collector.
func Logger(base *zap.Logger, collector *metrics.Collector) func(http.Handler) http.Handler {
	if base == nil {
		base = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := base.With(zap.String("requestId", GetRequestID(r.Context())))
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r.WithContext(requestctx.WithLogger(r.Context(), reqLogger)))

			duration := time.Since(start)
			if collector != nil {
				collector.Record(recorder.status, duration)
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", recorder.status),
				zap.Int("bytes", recorder.bytes),
				zap.Duration("duration", duration),
			}
			if recorder.status >= 500 {
				reqLogger.Error("request completed", fields...)
				return
			}
			reqLogger.Info("request completed", fields...)
		})
	}
}
