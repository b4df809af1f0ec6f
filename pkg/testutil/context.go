package testutil

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	id "auditadmin/pkg/domain"
	"auditadmin/pkg/requestcontext"
)

// WithIdentity simulates what the auth middleware does for an authenticated
// request: it stores the caller's user and group in the request context.
func WithIdentity(req *http.Request, userID id.UserID, groupID id.GroupID) *http.Request {
	ctx := requestcontext.WithIdentity(req.Context(), userID, groupID)
	return req.WithContext(ctx)
}

// NewIdentityContext returns a context carrying a fresh random identity, for
// service-level tests that skip the HTTP layer.
func NewIdentityContext() (context.Context, id.UserID, id.GroupID) {
	userID := id.UserID(uuid.New())
	groupID := id.GroupID(uuid.New())
	return requestcontext.WithIdentity(context.Background(), userID, groupID), userID, groupID
}
