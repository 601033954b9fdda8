package middleware

import (
	"net/http"
	"strings"

	"coverly-core-importer-layer/internal/domain"

	"github.com/rs/zerolog"
)

// SecurityHeadersMiddleware sets standard security headers on every response
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("Cache-Control", "no-store")

			next.ServeHTTP(w, r)
		})
	}
}

// UserIdentityMiddleware extracts the caller identity from the X-User-ID
// header and stores it in the request context. Public routes like /health,
// /metrics, and /swagger/* are skipped.
func UserIdentityMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if path == "/health" ||
				path == "/metrics" ||
				strings.HasPrefix(path, "/swagger/") {
				next.ServeHTTP(w, r)
				return
			}

			userID := r.Header.Get("X-User-ID")
			if userID == "" {
				logger.Debug().Str("path", path).Msg("Request without user identity")
				http.Error(w, "X-User-ID header is required", http.StatusUnauthorized)
				return
			}

			ctx := domain.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
