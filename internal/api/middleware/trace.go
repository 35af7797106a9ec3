package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/kanji-ink/internal/api/shared"
	"github.com/phrazzld/kanji-ink/internal/platform/logger"
)

// TraceMiddleware returns middleware that adds a trace ID and a request
// logger to the request context. A valid X-Trace-ID request header is
// reused; otherwise a new ID is generated. The ID in use is echoed in the
// response header.
//
// It should be applied early in the middleware chain so that every later
// handler logs with the trace ID.
func TraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.WithTraceID(r.Context(), r.Header.Get(shared.TraceIDHeader))
			traceID := shared.GetTraceID(ctx)

			log := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			w.Header().Set(shared.TraceIDHeader, traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
