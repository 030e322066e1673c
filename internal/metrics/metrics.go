package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pass outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeEmptyInput    = "empty_input"
	OutcomeNotRecognized = "not_recognized"
	OutcomeNoData        = "no_data"
)

// Metrics holds the Prometheus collectors for analysis passes.
type Metrics struct {
	Registry *prometheus.Registry

	PassesTotal   *prometheus.CounterVec // labels: outcome
	ProbesTotal   *prometheus.CounterVec // labels: result=hit|probe_ok|probe_miss
	FetchDuration prometheus.Histogram
	PassDuration  prometheus.Histogram
	LastRSI       *prometheus.GaugeVec // labels: symbol
	RefreshSkips  prometheus.Counter
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		PassesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dipwatch_passes_total",
			Help: "Analysis passes by outcome",
		}, []string{"outcome"}),
		ProbesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dipwatch_probes_total",
			Help: "Ticker resolutions by result",
		}, []string{"result"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dipwatch_fetch_duration_seconds",
			Help:    "Market data download latency",
			Buckets: prometheus.DefBuckets,
		}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dipwatch_pass_duration_seconds",
			Help:    "Full resolve/fetch/compute latency",
			Buckets: prometheus.DefBuckets,
		}),
		LastRSI: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dipwatch_last_rsi",
			Help: "Latest RSI seen per symbol",
		}, []string{"symbol"}),
		RefreshSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dipwatch_refresh_skips_total",
			Help: "Auto-refresh ticks skipped because the market was closed",
		}),
	}
	m.Registry.MustRegister(
		m.PassesTotal,
		m.ProbesTotal,
		m.FetchDuration,
		m.PassDuration,
		m.LastRSI,
		m.RefreshSkips,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
