package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "auditadmin/pkg/domain"
	dErrors "auditadmin/pkg/domain-errors"
	"auditadmin/pkg/platform/httputil"
	"auditadmin/pkg/requestcontext"
)

// IdentityValidator verifies an access token and returns the identity claims
// it carries.
type IdentityValidator interface {
	Identity(tokenString string) (id.UserID, id.GroupID, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's user and group identity in the request context. Every master-data
// route sits behind this; the group claim scopes all queries.
func RequireAuth(validator IdentityValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			userID, groupID, err := validator.Identity(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, err)
				return
			}

			ctx = requestcontext.WithIdentity(ctx, userID, groupID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
