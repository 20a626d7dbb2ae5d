package metrics_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"stockroom/internal/pkg/metrics"
)

func TestMetrics_CountersAccumulate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.Transition("PENDING", "APPROVED", nil)
	m.Transition("PENDING", "APPROVED", nil)
	m.Transition("PENDING", "APPROVED", errors.New("sem estoque"))
	m.StockMoved("remove", -7)
	m.StockMoved("add", 7)
	m.StockMoved("remove", 3)
	m.LowStock()
	m.NotificationFailed("low_stock")
	m.ObserveHTTP("GET", "/v1/components", 200, 10*time.Millisecond)

	count, err := testutil.GatherAndCount(reg, "stockroom_request_transitions_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, count) // duas séries: ok e error

	expected := `
# HELP stockroom_stock_movements_units_total Unidades movimentadas no estoque, por tipo (add/remove).
# TYPE stockroom_stock_movements_units_total counter
stockroom_stock_movements_units_total{type="add"} 7
stockroom_stock_movements_units_total{type="remove"} 10
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "stockroom_stock_movements_units_total"))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.Transition("PENDING", "APPROVED", nil)
		m.StockMoved("add", 1)
		m.LowStock()
		m.NotificationFailed("approved")
		m.ObserveHTTP("GET", "/ping", 200, time.Millisecond)
	})
}
