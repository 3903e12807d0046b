package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/angeloszaimis/api-gateway/internal/auth"
)

type identityContextKey struct{}

// Auth verifies the Authorization header before the request may proceed.
// A missing token is answered 403, an invalid or expired one 401. On success
// the decoded identity is attached to the request context.
func Auth(verifier *auth.Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := verifier.Verify(r.Header.Get("Authorization"))
			if err != nil {
				if errors.Is(err, auth.ErrMissingCredential) {
					http.Error(w, "A token is required for authentication", http.StatusForbidden)
					return
				}

				logger.Warn("Rejected invalid token",
					slog.String("path", r.URL.Path),
					slog.String("client", ClientIP(r)))
				http.Error(w, "Invalid Token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity retrieves the verified identity from the context, or nil when
// the request did not pass the auth stage.
func GetIdentity(ctx context.Context) *auth.Identity {
	if identity, ok := ctx.Value(identityContextKey{}).(*auth.Identity); ok {
		return identity
	}
	return nil
}
