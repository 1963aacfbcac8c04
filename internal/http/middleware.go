package http

import (
	"context"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	ownerIDKey contextKey = "owner_id"
	tokenKey   contextKey = "bearer_token"
)

// BearerAuthMiddleware extracts the caller identity and credential.
// Authentication itself happens upstream at the gateway: the owner id
// arrives in X-User-ID and the bearer token is kept opaque, only to be
// forwarded unchanged to the catalog and coupon services.
func BearerAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID := r.Header.Get("X-User-ID")
		if ownerID == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
			return
		}

		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		ctx := context.WithValue(r.Context(), ownerIDKey, ownerID)
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithRequestLogger injects a request-scoped logger into the context.
// Place it after chi's RequestID middleware.
func WithRequestLogger(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lc := base.With().
				Str("method", r.Method).
				Str("path", r.URL.Path)

			if reqID := chimw.GetReqID(r.Context()); reqID != "" {
				lc = lc.Str("request_id", reqID)
			}

			logger := lc.Logger()
			ctx := logger.WithContext(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ownerFromContext(ctx context.Context) string {
	if ownerID, ok := ctx.Value(ownerIDKey).(string); ok {
		return ownerID
	}
	return ""
}

func tokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey).(string); ok {
		return token
	}
	return ""
}
