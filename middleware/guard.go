package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/openleads/openleads"
	"github.com/openleads/openleads/session"
)

type identityContextKey struct{}

// IdentityFromContext returns the identity stored by [Guard].
func IdentityFromContext(ctx context.Context) (*openleads.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*openleads.Identity)
	return id, ok
}

// Guard validates the access token (cookie or bearer) on every request and
// rejects with a JSON 401 when it is missing or invalid.
func Guard(engine *openleads.Engine, cookies session.CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				unauthorized(w)
				return
			}

			token := session.ReadAccessToken(r, cookies)
			if token == "" {
				unauthorized(w)
				return
			}

			identity, err := engine.Validate(r.Context(), token)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "unauthorized"})
}
