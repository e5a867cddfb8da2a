package testutil

import (
	"net/http"

	"valueconverting/pkg/requestcontext"
)

// WithPrincipal adds an authenticated principal to the request context.
// This simulates what the auth middleware does for a valid bearer token.
func WithPrincipal(req *http.Request, subject string, sourceApplicationIDs ...int64) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), requestcontext.AuthPrincipal{
		Subject:              subject,
		SourceApplicationIDs: sourceApplicationIDs,
	})
	return req.WithContext(ctx)
}
