package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"github.com/spicemill/stockledger/internal/infrastructure/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	records []stock.StockStatusRecord
	err     error
}

func (f *fakeSource) Items(context.Context) ([]stock.StockStatusRecord, error) {
	return f.records, f.err
}

func newRecord(t *testing.T, name, opening, minLevel string) stock.StockStatusRecord {
	t.Helper()
	r, err := stock.NewStockStatusRecord(stock.Period{Year: 2024, Month: time.March}, name, "Whole Spices",
		decimal.RequireFromString(opening), decimal.RequireFromString(minLevel), stock.TwoTierPolicy{})
	require.NoError(t, err)
	return *r
}

func TestMetrics_ObservePropagation(t *testing.T) {
	m := NewMetrics("test")

	m.ObservePropagation(stock.EventTypePurchaseReceived, nil, 3*time.Millisecond)
	m.ObservePropagation(stock.EventTypePurchaseReceived, nil, time.Millisecond)
	m.ObservePropagation(stock.EventTypePurchaseReceived, shared.ErrNotFound, time.Millisecond)
	m.ObservePropagation(stock.EventTypeTaskUtilised, errors.New("plain"), time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.propagations.WithLabelValues(stock.EventTypePurchaseReceived, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.propagations.WithLabelValues(stock.EventTypePurchaseReceived, "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.propagations.WithLabelValues(stock.EventTypeTaskUtilised, "error")))
}

func TestMetrics_ObserveRollover(t *testing.T) {
	m := NewMetrics("test")

	m.ObserveRollover(12, nil)
	m.ObserveRollover(0, shared.FetchFailed("materials", errors.New("db down")))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.rollovers.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rollovers.WithLabelValues("fetch_failed")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.rolloverSeeded))
}

func TestMetrics_HTTP(t *testing.T) {
	m := NewMetrics("test")

	done := m.TrackActive()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpActive))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpActive))

	m.ObserveHTTP("GET", "/api/v1/stock-status", 200, 10*time.Millisecond)
	m.ObserveHTTP("GET", "/api/v1/stock-status", 404, 10*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/stock-status", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/stock-status", "4xx")))
}

func TestMetrics_StockCollector(t *testing.T) {
	m := NewMetrics("test")
	source := &fakeSource{records: []stock.StockStatusRecord{
		newRecord(t, "Cumin", "13", "5"),
		newRecord(t, "Clove", "4", "5"),
		newRecord(t, "Saffron", "0", "1"),
	}}
	require.NoError(t, m.RegisterStock(source, time.Second))

	expected := `
# HELP test_stock_items Materials in the current period by status
# TYPE test_stock_items gauge
test_stock_items{status="Critical"} 0
test_stock_items{status="Low Stock"} 1
test_stock_items{status="Normal"} 1
test_stock_items{status="Out of Stock"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_stock_items"))

	expected = `
# HELP test_stock_closing_balance Closing balance per material in the current period
# TYPE test_stock_closing_balance gauge
test_stock_closing_balance{category="Whole Spices",material="Clove"} 4
test_stock_closing_balance{category="Whole Spices",material="Cumin"} 13
test_stock_closing_balance{category="Whole Spices",material="Saffron"} 0
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_stock_closing_balance"))

	source.err = errors.New("registry stopped")
	expected = `
# HELP test_stock_registry_up 1 when the stock registry could be read
# TYPE test_stock_registry_up gauge
test_stock_registry_up 0
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_stock_registry_up"))
}

func TestMetrics_RegisterIdempotency(t *testing.T) {
	m := NewMetrics("test")
	stats := &event.IdempotencyMetrics{}
	stats.EventsProcessed.Add(3)
	stats.EventsDuplicate.Add(1)
	require.NoError(t, m.RegisterIdempotency(stats))

	expected := `
# HELP test_events_duplicate_total Redelivered events skipped
# TYPE test_events_duplicate_total counter
test_events_duplicate_total 1
# HELP test_events_processed_total Events applied by idempotent handlers
# TYPE test_events_processed_total counter
test_events_processed_total 3
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"test_events_processed_total", "test_events_duplicate_total"))

	assert.Error(t, m.RegisterIdempotency(stats), "registering twice collides")
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("test")
	m.ObservePropagation(stock.EventTypeTaskUtilised, nil, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_stock_propagations_total{event_type="TaskUtilised",result="ok"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObservePropagation("x", nil, time.Second)
		m.ObserveRollover(1, nil)
		m.ObserveHTTP("GET", "/", 200, time.Second)
		m.TrackActive()()
		assert.NoError(t, m.RegisterDB(nil, "db"))
		assert.NoError(t, m.RegisterStock(nil, 0))
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
