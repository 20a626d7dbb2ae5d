package router

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "stockroom/docs" // registra o swagger gerado
	"stockroom/internal/api/auth"
	"stockroom/internal/api/component"
	"stockroom/internal/api/request"
	"stockroom/internal/api/usage"
	"stockroom/internal/domain"
	"stockroom/internal/pkg/cache"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/metrics"
	"stockroom/internal/pkg/middleware"
)

// Handlers reúne os handlers já inicializados pela injeção de dependências.
type Handlers struct {
	Auth      *auth.Handler
	Component *component.Handler
	Request   *request.Handler
	Usage     *usage.Handler
}

// Options configura os middlewares globais e as rotas operacionais.
type Options struct {
	Tokens          middleware.TokenService
	Cache           cache.Client
	RateLimit       int
	RateLimitPeriod time.Duration
	Metrics         *metrics.Metrics
	Gatherer        prometheus.Gatherer // nil desliga o /metrics
	Logger          logger.Logger
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, opts Options) http.Handler {
	mux := http.NewServeMux()

	authMiddleware := middleware.NewAuthMiddleware(opts.Tokens)
	adminOnly := func(next http.HandlerFunc) http.HandlerFunc {
		return authMiddleware(middleware.PermissionMiddleware(domain.RoleAdmin)(next))
	}

	mux.HandleFunc("GET /ping", PingHandler)
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	if opts.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("POST /v1/login", h.Auth.LoginHandler)

	// Componentes: leitura pública, escrita administrativa.
	mux.HandleFunc("GET /v1/components", h.Component.ListComponentsHandler)
	mux.HandleFunc("GET /v1/components/{id}", h.Component.GetComponentHandler)
	mux.HandleFunc("POST /v1/components", adminOnly(h.Component.CreateComponentHandler))
	mux.HandleFunc("PUT /v1/components/{id}", adminOnly(h.Component.UpdateComponentHandler))
	mux.HandleFunc("DELETE /v1/components/{id}", adminOnly(h.Component.DeleteComponentHandler))
	mux.HandleFunc("POST /v1/components/{id}/adjust", adminOnly(h.Component.AdjustStockHandler))

	// Requisições: o colaborador abre e acompanha; o almoxarife edita e muda o status.
	mux.HandleFunc("POST /v1/requests", h.Request.CreateRequestHandler)
	mux.HandleFunc("GET /v1/requests/{id}", h.Request.GetRequestHandler)
	mux.HandleFunc("GET /v1/requests", adminOnly(h.Request.ListRequestsHandler))
	mux.HandleFunc("PUT /v1/requests/{id}", adminOnly(h.Request.UpdateRequestHandler))
	mux.HandleFunc("POST /v1/requests/{id}/status", adminOnly(h.Request.SetStatusHandler))

	mux.HandleFunc("GET /v1/usage", adminOnly(h.Usage.ListUsageHandler))
	mux.HandleFunc("GET /v1/usage/export", adminOnly(h.Usage.ExportUsageHandler))

	var handler http.Handler = mux
	if opts.Cache != nil && opts.RateLimit > 0 {
		handler = middleware.RateLimiter(opts.Cache, opts.RateLimit, opts.RateLimitPeriod, opts.Logger)(handler)
	}
	return middleware.Instrument(opts.Metrics)(handler)
}

// PingHandler é o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}
