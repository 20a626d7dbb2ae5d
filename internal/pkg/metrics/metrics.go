// Package metrics expõe os contadores Prometheus do almoxarifado.
// Um *Metrics nil é válido: todos os métodos viram no-op.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stockroom"

// Metrics agrupa os coletores registrados no Registerer informado.
type Metrics struct {
	transitions    *prometheus.CounterVec
	stockMovements *prometheus.CounterVec
	lowStock       prometheus.Counter
	notifyFailures *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New cria e registra os coletores. Em main usa-se prometheus.DefaultRegisterer;
// nos testes, um prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_transitions_total",
			Help:      "Transições de status de requisições, por origem, destino e resultado.",
		}, []string{"from", "to", "result"}),
		stockMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_units_total",
			Help:      "Unidades movimentadas no estoque, por tipo (add/remove).",
		}, []string{"type"}),
		lowStock: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "low_stock_events_total",
			Help:      "Débitos que deixaram um componente no estoque mínimo ou abaixo dele.",
		}),
		notifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Falhas de notificação, por evento.",
		}, []string{"event"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duração das requisições HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(m.transitions, m.stockMovements, m.lowStock, m.notifyFailures, m.httpDuration)
	return m
}

// Transition registra uma transição de status; err == nil conta como "ok".
func (m *Metrics) Transition(from, to string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.transitions.WithLabelValues(from, to, result).Inc()
}

// StockMoved soma as unidades movimentadas (valor absoluto) ao tipo informado.
func (m *Metrics) StockMoved(usageType string, units int) {
	if m == nil {
		return
	}
	if units < 0 {
		units = -units
	}
	m.stockMovements.WithLabelValues(usageType).Add(float64(units))
}

// LowStock registra um evento de estoque baixo.
func (m *Metrics) LowStock() {
	if m == nil {
		return
	}
	m.lowStock.Inc()
}

// NotificationFailed registra uma falha de notificação.
func (m *Metrics) NotificationFailed(event string) {
	if m == nil {
		return
	}
	m.notifyFailures.WithLabelValues(event).Inc()
}

// ObserveHTTP registra a duração de uma requisição HTTP.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
