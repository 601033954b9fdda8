package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"coverly-core-importer-layer/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSecurityHeadersMiddleware(t *testing.T) {
	handler := SecurityHeadersMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/connections", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestUserIdentityMiddleware(t *testing.T) {
	var capturedUser string
	handler := UserIdentityMiddleware(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUser = domain.GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("propagates identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/connections", nil)
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", capturedUser)
	})

	t.Run("rejects missing identity", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/connections", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("skips public routes", func(t *testing.T) {
		for _, path := range []string{"/health", "/metrics", "/swagger/index.html"} {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusOK, rec.Code, "path %s should be public", path)
		}
	})
}
