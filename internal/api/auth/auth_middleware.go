package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mfcoelho/go-todo-api/internal/api"
	"github.com/mfcoelho/go-todo-api/internal/types"
)

type contextKey string

const authUserKey contextKey = "authUser"

// Authenticate validates the bearer token on protected requests.
//
// Missing or malformed Authorization header and invalid/expired tokens both
// map to 401, with distinct messages ("Token não fornecido" vs
// "Token inválido"). On success the verified identity from the token claims
// is attached to the request context; the user is never re-fetched from
// persistence.
func Authenticate(logger *slog.Logger, tokens TokenService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				l.WarnContext(ctx, "Missing Authorization header")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Token não fornecido")
				return
			}

			headerParts := strings.SplitN(authHeader, " ", 2)
			if len(headerParts) != 2 || headerParts[0] != "Bearer" {
				l.WarnContext(ctx, "Invalid Authorization header format")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Token não fornecido")
				return
			}

			claims, err := tokens.Verify(headerParts[1])
			if err != nil {
				l.WarnContext(ctx, "Token verification failed", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Token inválido")
				return
			}

			user := types.AuthUser{
				ID:    claims.Subject,
				Email: claims.Email,
				Name:  claims.Name,
			}
			ctx = context.WithValue(ctx, authUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAuthUserFromContext returns the identity attached by Authenticate.
func GetAuthUserFromContext(ctx context.Context) (types.AuthUser, bool) {
	user, ok := ctx.Value(authUserKey).(types.AuthUser)
	return user, ok
}

// WithAuthUser is a test helper to seed an authenticated identity.
func WithAuthUser(ctx context.Context, user types.AuthUser) context.Context {
	return context.WithValue(ctx, authUserKey, user)
}
