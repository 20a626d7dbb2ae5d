package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/domain"
	"stockroom/internal/pkg/cache"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/metrics"
	"stockroom/internal/pkg/middleware"
	"stockroom/internal/pkg/token"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) domain.ErrorResponse {
	t.Helper()
	var body domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthAndPermission(t *testing.T) {
	tokens := token.NewService("segredo", time.Minute)
	admin, err := tokens.GenerateToken("stockroom-admin", string(domain.RoleAdmin))
	require.NoError(t, err)
	personnel, err := tokens.GenerateToken("joana", string(domain.RolePersonnel))
	require.NoError(t, err)

	var seen middleware.UserClaims
	protected := middleware.NewAuthMiddleware(tokens)(
		middleware.PermissionMiddleware(domain.RoleAdmin)(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = middleware.GetUserClaimsFromContext(r.Context())
			okHandler(w, r)
		}),
	)

	tests := []struct {
		name     string
		header   string
		status   int
		category string
	}{
		{"sem header", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"esquema errado", "Basic abc", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"token inválido", "Bearer xyz", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"role sem permissão", "Bearer " + personnel, http.StatusForbidden, "FORBIDDEN"},
		{"admin", "Bearer " + admin, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/v1/components/1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.category != "" {
				assert.Equal(t, tt.category, decodeError(t, rec).Category)
			}
		})
	}
	assert.Equal(t, "stockroom-admin", seen.Subject)
	assert.Equal(t, domain.RoleAdmin, seen.Role)
}

func TestPermission_WithoutAuth(t *testing.T) {
	h := middleware.PermissionMiddleware(domain.RoleAdmin)(okHandler)
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// counterCache conta em memória como o Redis faria.
type counterCache struct {
	cache.NoopClient
	counts map[string]int
	fail   bool
}

func (c *counterCache) GetInt(_ context.Context, key string) (int, error) {
	if c.fail {
		return 0, errors.New("redis fora do ar")
	}
	v, ok := c.counts[key]
	if !ok {
		return 0, cache.ErrCacheMiss
	}
	return v, nil
}

func (c *counterCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.counts[key] = value.(int)
	return nil
}

func (c *counterCache) Incr(_ context.Context, key string) (int64, error) {
	c.counts[key]++
	return int64(c.counts[key]), nil
}

func TestRateLimiter(t *testing.T) {
	c := &counterCache{counts: map[string]int{}}
	h := middleware.RateLimiter(c, 2, time.Minute, logger.NewNopLogger())(http.HandlerFunc(okHandler))

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/components", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := call("10.0.0.1:5000")
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	second := call("10.0.0.1:5001")
	assert.Equal(t, http.StatusNoContent, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := call("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, third).Category)
	assert.Equal(t, "60", third.Header().Get("Retry-After"))

	other := call("10.0.0.2:5000")
	assert.Equal(t, http.StatusNoContent, other.Code)
}

func TestRateLimiter_CacheFailureLetsRequestThrough(t *testing.T) {
	c := &counterCache{counts: map[string]int{}, fail: true}
	h := middleware.RateLimiter(c, 1, time.Minute, logger.NewNopLogger())(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestInstrument_ObservesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/components/{id}", okHandler)
	h := middleware.Instrument(m)(mux)

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/components/"+id, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	count, err := testutil.GatherAndCount(reg, "stockroom_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "os dois IDs caem na mesma série")
}
