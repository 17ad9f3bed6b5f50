package middleware

import (
	"context"
	"net/http"
	"strings"

	"paycore/internal/domain/auth"
	"paycore/internal/transport/http/api"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// Auth attaches the bearer token's actor to the context. Requests without a
// valid token pass through anonymously; RequirePermission rejects them.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.Split(authHeader, " ")
			if authHeader == "" || len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithUser(r.Context(), auth.UserContext{
				UserID:     claims.UserID,
				EmployeeID: claims.EmployeeID,
				Role:       claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}

func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			if !auth.Allowed(user.Role, permission) {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
