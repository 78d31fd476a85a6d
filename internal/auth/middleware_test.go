package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridian-estates/pipeline-api/internal/auth"
	"github.com/veridian-estates/pipeline-api/internal/config"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"go.uber.org/zap"
)

func newTestMiddleware(apiKey string) *auth.Middleware {
	cfg := &config.Config{}
	cfg.ApiKey.Value = apiKey
	return auth.NewMiddleware(cfg, zap.NewNop())
}

func TestMiddleware_ValidateAPIKey(t *testing.T) {
	m := newTestMiddleware("secret-key")

	assert.True(t, m.ValidateAPIKey("secret-key"))
	assert.False(t, m.ValidateAPIKey("wrong-key"))
	assert.False(t, m.ValidateAPIKey(""))

	t.Run("unconfigured key never matches", func(t *testing.T) {
		empty := newTestMiddleware("")
		assert.False(t, empty.ValidateAPIKey(""))
		assert.False(t, empty.ValidateAPIKey("anything"))
	})
}

func TestMiddleware_Authenticate(t *testing.T) {
	m := newTestMiddleware("secret-key")

	var captured *auth.UserContext
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := m.Authenticate(next)

	t.Run("valid API key attaches the system identity", func(t *testing.T) {
		captured = nil
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
		req.Header.Set("x-api-key", "secret-key")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, captured)
		assert.Equal(t, "System", captured.DisplayName)
		assert.True(t, captured.HasRole(domain.RoleAPIService))
	})

	t.Run("invalid API key is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
		req.Header.Set("x-api-key", "wrong")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing credentials are rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed bearer header is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
		req.Header.Set("Authorization", "NotBearer abc")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMiddleware_RequireAPIKey(t *testing.T) {
	m := newTestMiddleware("hook-key")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	hook := m.RequireAPIKey(next)

	t.Run("accepts the configured key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/leads", nil)
		req.Header.Set("x-api-key", "hook-key")
		rec := httptest.NewRecorder()
		hook.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("rejects bearer tokens on the webhook surface", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/leads", nil)
		req.Header.Set("Authorization", "Bearer some-token")
		rec := httptest.NewRecorder()
		hook.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMiddleware_RequireManager(t *testing.T) {
	m := newTestMiddleware("")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guarded := m.RequireManager(next)

	t.Run("manager passes", func(t *testing.T) {
		ctx := auth.WithUserContext(httptest.NewRequest(http.MethodGet, "/", nil).Context(), &auth.UserContext{
			Roles: []domain.UserRoleType{domain.RoleManager},
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("sales agent is forbidden", func(t *testing.T) {
		ctx := auth.WithUserContext(httptest.NewRequest(http.MethodGet, "/", nil).Context(), &auth.UserContext{
			Roles: []domain.UserRoleType{domain.RoleSales},
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no user context is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
