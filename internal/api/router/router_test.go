package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/api/auth"
	"stockroom/internal/api/component"
	"stockroom/internal/api/request"
	"stockroom/internal/api/router"
	"stockroom/internal/api/usage"
	"stockroom/internal/domain"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/metrics"
	"stockroom/internal/pkg/token"
)

// Handlers sem serviço: as rotas testadas aqui param antes de chegar neles.
func newRouter(t *testing.T) (http.Handler, *token.Service) {
	t.Helper()
	log := logger.NewNopLogger()
	tokens := token.NewService("segredo", time.Minute)
	reg := prometheus.NewRegistry()

	h := router.NewRouter(router.Handlers{
		Auth:      auth.NewHandler(nil, log),
		Component: component.NewHandler(nil, nil, log),
		Request:   request.NewHandler(nil, log),
		Usage:     usage.NewHandler(nil, log),
	}, router.Options{
		Tokens:   tokens,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Logger:   log,
	})
	return h, tokens
}

func TestRouter_OperationalRoutes(t *testing.T) {
	h, _ := newRouter(t)

	ping := httptest.NewRecorder()
	h.ServeHTTP(ping, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, ping.Code)
	assert.Equal(t, "pong", ping.Body.String())

	m := httptest.NewRecorder()
	h.ServeHTTP(m, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, m.Code)
	assert.Contains(t, m.Body.String(), "stockroom_http_request_duration_seconds")

	doc := httptest.NewRecorder()
	h.ServeHTTP(doc, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, doc.Code)
	assert.Contains(t, doc.Body.String(), "/requests/{id}/status")
}

func TestRouter_AdminRoutesRequireToken(t *testing.T) {
	h, tokens := newRouter(t)

	adminOnly := []struct{ method, path string }{
		{http.MethodPost, "/v1/components"},
		{http.MethodPut, "/v1/components/c-1"},
		{http.MethodDelete, "/v1/components/c-1"},
		{http.MethodPost, "/v1/components/c-1/adjust"},
		{http.MethodGet, "/v1/requests"},
		{http.MethodPut, "/v1/requests/r-1"},
		{http.MethodPost, "/v1/requests/r-1/status"},
		{http.MethodGet, "/v1/usage"},
		{http.MethodGet, "/v1/usage/export"},
	}
	for _, rt := range adminOnly {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, strings.NewReader("{}")))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", rt.method, rt.path)
	}

	personnel, err := tokens.GenerateToken("joana", string(domain.RolePersonnel))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/v1/usage", nil)
	req.Header.Set("Authorization", "Bearer "+personnel)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h, _ := newRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/v1/components", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
