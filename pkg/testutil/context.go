package testutil

import (
	"context"
	"net/http"

	"github.com/agenghermawan/clandestineproject/pkg/requestcontext"
)

// WithToken adds a bearer token to the request context.
// This simulates what the token middleware does for a request carrying the
// session cookie.
func WithToken(req *http.Request, token string) *http.Request {
	ctx := requestcontext.WithToken(req.Context(), token)
	return req.WithContext(ctx)
}

// WithSession adds both token and subject, the typical state for a
// logged-in request.
func WithSession(req *http.Request, token, subject string) *http.Request {
	ctx := requestcontext.WithToken(req.Context(), token)
	ctx = requestcontext.WithSubject(ctx, subject)
	return req.WithContext(ctx)
}

// WithTokenCookie attaches the session cookie the way a browser would.
func WithTokenCookie(req *http.Request, cookieName, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	return req
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
