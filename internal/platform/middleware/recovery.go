package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	dErrors "auditadmin/pkg/domain-errors"
	"auditadmin/pkg/platform/httputil"
	"auditadmin/pkg/requestcontext"
)

// Recovery turns a handler panic into a 500 response instead of tearing down
// the connection, logging the stack for the postmortem.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					ctx := r.Context()
					logger.ErrorContext(ctx, "panic recovered",
						"request_id", requestcontext.RequestID(ctx),
						"panic", rec,
						"stack", string(debug.Stack()),
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "internal error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
