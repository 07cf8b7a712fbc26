package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/metrolabs/metro/pkg/auth"
	"github.com/metrolabs/metro/pkg/response"
)

type claimsKey struct{}

// Auth returns a middleware that rejects requests lacking a valid
// "Authorization: Bearer <token>" header. On success the verified claims
// are stored on the request context.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				response.Unauthorized(w)
				return
			}

			claims, err := auth.Verify(token, secret)
			if err != nil {
				response.Unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromCtx returns the verified claims attached by Auth, if any.
func ClaimsFromCtx(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}

// UserIDFromCtx returns the authenticated user's domain id, or 0.
func UserIDFromCtx(ctx context.Context) int {
	if claims, ok := ClaimsFromCtx(ctx); ok {
		return claims.UserID
	}
	return 0
}
