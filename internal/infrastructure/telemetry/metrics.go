// Package telemetry provides Prometheus metrics and OpenTelemetry tracing.
package telemetry

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"github.com/spicemill/stockledger/internal/infrastructure/event"
)

// HTTPDurationBuckets are latency buckets in seconds for HTTP requests
var HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// propagationBuckets are tighter than HTTP: one propagation is a handful of row updates
var propagationBuckets = []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1}

// Metrics owns a Prometheus registry and the stock ledger instruments.
// All methods are safe on a nil *Metrics so callers need no enabled checks.
type Metrics struct {
	registry  *prometheus.Registry
	namespace string

	propagations        *prometheus.CounterVec
	propagationDuration *prometheus.HistogramVec
	rollovers           *prometheus.CounterVec
	rolloverSeeded      prometheus.Counter
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	httpActive          prometheus.Gauge
}

// NewMetrics creates the instruments and registers the Go runtime and
// process collectors
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry:  prometheus.NewRegistry(),
		namespace: namespace,
		propagations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stock",
			Name:      "propagations_total",
			Help:      "Stock propagation attempts by event type and result code",
		}, []string{"event_type", "result"}),
		propagationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "stock",
			Name:      "propagation_duration_seconds",
			Help:      "Time spent applying one event to the stock sheet",
			Buckets:   propagationBuckets,
		}, []string{"event_type"}),
		rollovers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stock",
			Name:      "rollovers_total",
			Help:      "Scheduled period rollovers by result",
		}, []string{"result"}),
		rolloverSeeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stock",
			Name:      "rollover_seeded_records_total",
			Help:      "Stock status records created by rollovers",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution in seconds",
			Buckets:   HTTPDurationBuckets,
		}, []string{"method", "route"}),
		httpActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "active_requests",
			Help:      "Number of currently active HTTP requests",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.propagations,
		m.propagationDuration,
		m.rollovers,
		m.rolloverSeeded,
		m.httpRequests,
		m.httpDuration,
		m.httpActive,
	)
	return m
}

// Registry returns the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObservePropagation records one propagated event. The result label is "ok"
// or the lower-cased domain error code.
func (m *Metrics) ObservePropagation(eventType string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.propagations.WithLabelValues(eventType, resultLabel(err)).Inc()
	m.propagationDuration.WithLabelValues(eventType).Observe(elapsed.Seconds())
}

// ObserveRollover records a scheduled rollover and how many records it seeded
func (m *Metrics) ObserveRollover(seeded int, err error) {
	if m == nil {
		return
	}
	m.rollovers.WithLabelValues(resultLabel(err)).Inc()
	if err == nil && seeded > 0 {
		m.rolloverSeeded.Add(float64(seeded))
	}
}

// ObserveHTTP records a finished request
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// TrackActive increments the in-flight gauge and returns the matching decrement
func (m *Metrics) TrackActive() func() {
	if m == nil {
		return func() {}
	}
	m.httpActive.Inc()
	return m.httpActive.Dec
}

// RegisterDB exposes database/sql pool statistics
func (m *Metrics) RegisterDB(db *sql.DB, name string) error {
	if m == nil || db == nil {
		return nil
	}
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// RegisterIdempotency exposes the event deduplication counters
func (m *Metrics) RegisterIdempotency(stats *event.IdempotencyMetrics) error {
	if m == nil || stats == nil {
		return nil
	}
	counters := []struct {
		name string
		help string
		read func() int64
	}{
		{"processed_total", "Events applied by idempotent handlers", stats.EventsProcessed.Load},
		{"duplicate_total", "Redelivered events skipped", stats.EventsDuplicate.Load},
		{"failed_total", "Events whose handler returned an error", stats.EventsFailed.Load},
	}
	for _, c := range counters {
		read := c.read
		err := m.registry.Register(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "events",
			Name:      c.name,
			Help:      c.help,
		}, func() float64 { return float64(read()) }))
		if err != nil {
			return err
		}
	}
	return nil
}

// StockSource lists the records of the current period
type StockSource interface {
	Items(ctx context.Context) ([]stock.StockStatusRecord, error)
}

// RegisterStock exposes per-status item counts and per-material closing
// balances, read from source at scrape time
func (m *Metrics) RegisterStock(source StockSource, timeout time.Duration) error {
	if m == nil || source == nil {
		return nil
	}
	return m.registry.Register(newStockCollector(m.namespace, source, timeout))
}

// stockCollector reads the registry on every scrape so gauges never drift
// from the committed sheet
type stockCollector struct {
	source  StockSource
	timeout time.Duration
	items   *prometheus.Desc
	closing *prometheus.Desc
	up      *prometheus.Desc
}

func newStockCollector(namespace string, source StockSource, timeout time.Duration) *stockCollector {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &stockCollector{
		source:  source,
		timeout: timeout,
		items: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "stock", "items"),
			"Materials in the current period by status",
			[]string{"status"}, nil),
		closing: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "stock", "closing_balance"),
			"Closing balance per material in the current period",
			[]string{"material", "category"}, nil),
		up: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "stock", "registry_up"),
			"1 when the stock registry could be read",
			nil, nil),
	}
}

func (c *stockCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.items
	ch <- c.closing
	ch <- c.up
}

func (c *stockCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	records, err := c.source.Items(ctx)
	if err != nil {
		ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 0)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 1)

	summary := stock.Summarize(records)
	for status, n := range map[stock.Status]int{
		stock.StatusNormal:     summary.NormalCount,
		stock.StatusLowStock:   summary.LowStockCount,
		stock.StatusCritical:   summary.CriticalCount,
		stock.StatusOutOfStock: summary.OutOfStockCount,
	} {
		ch <- prometheus.MustNewConstMetric(c.items, prometheus.GaugeValue, float64(n), status.String())
	}
	for i := range records {
		closing, _ := records[i].ClosingBalance.Float64()
		ch <- prometheus.MustNewConstMetric(c.closing, prometheus.GaugeValue, closing,
			records[i].Name, records[i].Category)
	}
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if code := shared.CodeOf(err); code != "" {
		return strings.ToLower(code)
	}
	return "error"
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
