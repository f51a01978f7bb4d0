package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
)

// Trace assigns every request a trace ID. Apply it first so the rest of the
// chain and all error responses can correlate against it.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())

		slog.Debug("request started",
			slog.String("trace_id", shared.GetTraceID(ctx)),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
