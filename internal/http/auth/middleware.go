package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
)

// RequireActor resolves the bearer token through the provider and stores the
// actor on the request context.
func RequireActor(provider identity.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			actor, err := provider.Resolve(r.Context(), token)
			if err != nil {
				slog.Warn("unauthorized request", "path", r.URL.Path, "error", err)
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)

				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithActor(r.Context(), actor)))
		})
	}
}

// Actor returns the caller resolved by RequireActor. It writes a 401 and
// returns false when none is present.
func Actor(w http.ResponseWriter, r *http.Request) (identity.Actor, bool) {
	a, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
	}

	return a, ok
}
