package auth

import (
	"net/http"
	"strings"

	"github.com/Abhishek-Jatav/bookMyCare/libs/httpx"
)

type Verifier interface {
	Verify(token string) (Identity, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's Identity in the request context.
func RequireAuth(v Verifier) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				httpx.WriteError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "missing bearer token")
				return
			}
			id, err := v.Verify(token)
			if err != nil {
				httpx.WriteError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				httpx.WriteError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "missing bearer token")
				return
			}
			if !id.HasRole(roles...) {
				httpx.WriteError(w, r, http.StatusForbidden, httpx.CodeForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func BearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
