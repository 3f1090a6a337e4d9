// Package token moves the session cookie's bearer token into the request
// context. The token is opaque to this service: it is forwarded to the
// backend, which alone decides whether it is valid.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agenghermawan/clandestineproject/pkg/platform/httputil"
	request "github.com/agenghermawan/clandestineproject/pkg/platform/middleware/request"
	"github.com/agenghermawan/clandestineproject/pkg/requestcontext"
)

// DefaultCookieName is the cookie the auth backend sets at login.
const DefaultCookieName = "token"

// MissingTokenMessage matches the body the front end expects on 401.
const MissingTokenMessage = "Unauthorized: Token missing"

// subjectClaims are tried in order when the token happens to be a JWT.
var subjectClaims = []string{"sub", "user_id", "id", "username", "email"}

// FromCookie copies the named cookie into the context, along with a derived
// subject. Requests without the cookie pass through untouched.
func FromCookie(cookieName string) func(http.Handler) http.Handler {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := requestcontext.WithToken(r.Context(), c.Value)
			ctx = requestcontext.WithSubject(ctx, Subject(c.Value))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Require rejects requests that reached it without a token.
func Require(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if requestcontext.Token(ctx) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"path", r.URL.Path,
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteMessage(w, http.StatusUnauthorized, MissingTokenMessage)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Subject derives a stable caller identity from the token. If the token is
// a JWT its subject-like claim is used without verifying the signature;
// otherwise a fingerprint stands in. Never use the result for authorization.
func Subject(token string) string {
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		for _, name := range subjectClaims {
			if v, ok := claims[name].(string); ok && v != "" {
				return v
			}
		}
	}
	return Fingerprint(token)
}

// Fingerprint is a short, non-reversible token identifier safe for logs.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "tok_" + hex.EncodeToString(sum[:6])
}
