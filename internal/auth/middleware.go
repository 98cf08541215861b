package auth

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/JiwonJeong414/TechTive-Backend/internal/api/respond"
	"github.com/JiwonJeong414/TechTive-Backend/internal/model"
	"github.com/JiwonJeong414/TechTive-Backend/internal/services"
)

type contextKey struct{}

// UserFromContext returns the authenticated user the middleware attached.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(contextKey{}).(*model.User)
	return u, ok
}

// Middleware verifies the bearer token and resolves (or creates) the user
// record for its subject. Unauthenticated requests never reach handlers.
func Middleware(v Verifier, users *services.UserService, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				respond.WriteError(w, http.StatusUnauthorized, err.Error())
				return
			}

			id, err := v.Verify(r.Context(), token)
			if err != nil {
				respond.WriteError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}

			u, err := users.GetOrCreate(r.Context(), id.Subject)
			if err != nil {
				log.Error().Err(err).Str("subject", id.Subject).Msg("user resolution failed")
				respond.WriteInternalError(w, "could not resolve user")
				return
			}

			ctx := context.WithValue(r.Context(), contextKey{}, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
