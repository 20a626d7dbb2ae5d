package middleware

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/cache"
	"stockroom/internal/pkg/logger"
)

// RateLimiter limita as requisições por IP numa janela fixa, contando no cache.
// Se o cache falhar a requisição passa e a falha é registrada no log.
func RateLimiter(client cache.Client, limit int, window time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			key := "rate-limit:" + ip
			ctx := r.Context()

			count, err := client.GetInt(ctx, key)
			switch {
			case errors.Is(err, cache.ErrCacheMiss):
				if err := client.Set(ctx, key, 1, window); err != nil {
					log.Warn("Falha ao iniciar a janela do rate limit.", map[string]interface{}{"ip": ip, "error": err.Error()})
				}
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-1))
				next.ServeHTTP(w, r)
				return
			case err != nil:
				log.Warn("Rate limit indisponível, requisição liberada.", map[string]interface{}{"ip": ip, "error": err.Error()})
				next.ServeHTTP(w, r)
				return
			}

			if count >= limit {
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				writeError(w, &tooManyRequestsError{})
				return
			}

			if _, err := client.Incr(ctx, key); err != nil {
				log.Warn("Falha ao incrementar o rate limit.", map[string]interface{}{"ip": ip, "error": err.Error()})
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-count-1))
			next.ServeHTTP(w, r)
		})
	}
}

// tooManyRequestsError é o AppError 429 usado apenas pelo rate limit.
type tooManyRequestsError struct{}

func (e *tooManyRequestsError) Error() string    { return "Limite de requisições excedido. Tente novamente mais tarde." }
func (e *tooManyRequestsError) Category() string { return "RATE_LIMITED" }
func (e *tooManyRequestsError) HTTPStatus() int  { return http.StatusTooManyRequests }
func (e *tooManyRequestsError) Unwrap() error    { return nil }

var _ apperror.AppError = (*tooManyRequestsError)(nil)
