// Package metrics exposes Prometheus instrumentation for a backtest
// run. Adapted from exchange-matching/internal/metrics, narrowed from
// the exchange's order-flow/stream metrics to the core simulation
// loop's own counters.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()
	once     sync.Once

	elapseLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "backtest_elapse_seconds",
		Help:    "Wall-clock time spent inside a single Elapse call.",
		Buckets: prometheus.DefBuckets,
	})
	fillsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtest_fills_total",
			Help: "Total number of fills applied to the simulated account.",
		},
		[]string{"maker"},
	)
	eventsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backtest_events_processed_total",
		Help: "Total number of Elapse steps that returned with data remaining.",
	})
	simulatedEquity = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "backtest_equity",
		Help: "Mark-to-market equity of the simulated account at the last sample.",
	})
	ordersOutstanding = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "backtest_orders_outstanding",
		Help: "Number of non-terminal orders on the local ladder.",
	})
)

// Init registers metrics with the registry once.
func Init() {
	once.Do(func() {
		registry.MustRegister(
			prometheus.NewGoCollector(),
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
			elapseLatency,
			fillsTotal,
			eventsProcessed,
			simulatedEquity,
			ordersOutstanding,
		)
	})
}

// Handler exposes the Prometheus metrics endpoint handler.
func Handler() http.Handler {
	Init()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// ObserveElapse records one Elapse call's wall-clock duration.
func ObserveElapse(d time.Duration) {
	Init()
	elapseLatency.Observe(d.Seconds())
}

// IncFills increments the fills counter, tagged by whether the fill was a maker fill.
func IncFills(maker bool) {
	Init()
	tag := "taker"
	if maker {
		tag = "maker"
	}
	fillsTotal.WithLabelValues(tag).Inc()
}

// IncEventsProcessed increments the Elapse-step counter.
func IncEventsProcessed() {
	Init()
	eventsProcessed.Inc()
}

// SetEquity sets the current mark-to-market equity gauge.
func SetEquity(v float64) {
	Init()
	simulatedEquity.Set(v)
}

// SetOrdersOutstanding sets the current outstanding-order-count gauge.
func SetOrdersOutstanding(n int) {
	Init()
	ordersOutstanding.Set(float64(n))
}
