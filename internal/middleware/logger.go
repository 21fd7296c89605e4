package middleware

import (
	"net"
	"net/http"
	"time"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mosbot.dev/web/internal/logging"
)

// Logger emits one structured entry per request and stores a request scoped
// logger in the context for handlers.
func Logger(base *zap.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()
			rid := chiMid.GetReqID(ctx)
			if rid != "" {
				ctx = WithRequestID(ctx, rid)
			}
			logger := base.With(
				zap.String("request_id", rid),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			if ip := clientIP(r); ip != "" {
				logger = logger.With(zap.String("remote_ip", ip))
			}
			r = r.WithContext(logging.WithLogger(ctx, logger))

			rec := NewResponseRecorder(w)
			next.ServeHTTP(rec, r)

			status := rec.Status()
			level := zapcore.InfoLevel
			switch {
			case status >= http.StatusInternalServerError:
				level = zapcore.ErrorLevel
			case status >= http.StatusBadRequest:
				level = zapcore.WarnLevel
			}
			if ce := logger.Check(level, "request completed"); ce != nil {
				ce.Write(
					zap.Int("status", status),
					zap.Int("bytes", rec.BytesWritten()),
					zap.Duration("latency", time.Since(start)),
					zap.Bool("htmx", IsHTMX(r.Context())),
				)
			}
		})
	}
}

func clientIP(r *http.Request) string {
	// RealIP has already rewritten RemoteAddr when it runs first.
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
