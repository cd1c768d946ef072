package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const SubjectKey contextKey = "subject"

// SubjectFrom returns the token subject set by RequireRole, or "" outside an authenticated request.
func SubjectFrom(ctx context.Context) string {
	subject, _ := ctx.Value(SubjectKey).(string)
	return subject
}

// Unauthorized writes the rejection of a request that failed authentication.
type Unauthorized func(w http.ResponseWriter, r *http.Request, reason string)

// RequireRole validates the "Authorization: Bearer <token>" header and lets the request
// through only when the token carries role. The subject is injected into the request context.
func RequireRole(issuer *TokenIssuer, role string, reject Unauthorized) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				reject(w, r, "authorization token is missing")
				return
			}
			claims, err := issuer.ValidateToken(tokenStr)
			if err != nil {
				reject(w, r, "invalid or expired token")
				return
			}
			if !claims.HasRole(role) {
				reject(w, r, "insufficient role")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), SubjectKey, claims.Subject)))
		})
	}
}
