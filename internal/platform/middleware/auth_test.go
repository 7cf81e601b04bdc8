package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubValidator struct {
	claims *TokenClaims
	err    error
}

func (v stubValidator) ValidateToken(string) (*TokenClaims, error) {
	return v.claims, v.err
}

func TestRequireAuth(t *testing.T) {
	var seenUserID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	do := func(validator TokenValidator, authHeader string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/clients", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		RequireAuth(validator, slog.Default())(handler).ServeHTTP(rr, req)
		return rr
	}

	t.Run("stores the user ID for downstream handlers", func(t *testing.T) {
		seenUserID = ""
		rr := do(stubValidator{claims: &TokenClaims{UserID: "ops@corp"}}, "Bearer token")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ops@corp", seenUserID)
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		rr := do(stubValidator{}, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects a non-bearer scheme", func(t *testing.T) {
		rr := do(stubValidator{}, "Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects an invalid token", func(t *testing.T) {
		rr := do(stubValidator{err: errors.New("expired")}, "Bearer token")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "unauthorized")
	})
}
