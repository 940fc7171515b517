// Package telemetry exposes Prometheus metrics for decisions, jobs,
// backtests and HTTP traffic.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sku-pricing/internal/model"
)

// Metrics owns its registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	Decisions *prometheus.CounterVec

	JobRuns     *prometheus.CounterVec
	JobDuration prometheus.Histogram
	JobLastRun  prometheus.Gauge

	BacktestDuration *prometheus.HistogramVec
	BacktestRows     *prometheus.CounterVec

	ActiveOverride *prometheus.GaugeVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sku_pricing_decisions_total",
				Help: "Pricing decisions taken, by strategy and reason",
			},
			[]string{"strategy", "reason"},
		),

		JobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sku_pricing_job_runs_total",
				Help: "Daily pricing job runs by result",
			},
			[]string{"result"},
		),

		JobDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sku_pricing_job_duration_seconds",
				Help:    "Duration of daily pricing job runs in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
		),

		JobLastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sku_pricing_job_last_success_timestamp_seconds",
				Help: "Unix time of the last successful pricing job run",
			},
		),

		BacktestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sku_pricing_backtest_duration_seconds",
				Help:    "Duration of backtest runs in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"strategy"},
		),

		BacktestRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sku_pricing_backtest_rows_total",
				Help: "SKU-days simulated by backtests",
			},
			[]string{"strategy"},
		),

		ActiveOverride: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sku_pricing_override_active",
				Help: "1 for the override type currently in effect, else 0",
			},
			[]string{"override_type"},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sku_pricing_http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),

		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sku_pricing_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Decisions,
		m.JobRuns,
		m.JobDuration,
		m.JobLastRun,
		m.BacktestDuration,
		m.BacktestRows,
		m.ActiveOverride,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordDecision(strategy string, reason model.Reason) {
	m.Decisions.WithLabelValues(strategy, string(reason)).Inc()
}

// RecordJobRun records one job run. A nil error counts as success.
func (m *Metrics) RecordJobRun(d time.Duration, err error) {
	m.JobDuration.Observe(d.Seconds())
	if err != nil {
		m.JobRuns.WithLabelValues("error").Inc()
		return
	}
	m.JobRuns.WithLabelValues("success").Inc()
	m.JobLastRun.SetToCurrentTime()
}

// SetOverride marks kind as the resolved override and clears the others.
func (m *Metrics) SetOverride(kind model.OverrideKind) {
	for _, k := range []model.OverrideKind{model.OverridePriceFreeze, model.OverrideForceRuleBased} {
		v := 0.0
		if k == kind {
			v = 1
		}
		m.ActiveOverride.WithLabelValues(string(k)).Set(v)
	}
}

// ObserveBacktest satisfies backtest.Observer.
func (m *Metrics) ObserveBacktest(strategy string, rows int, d time.Duration) {
	m.BacktestDuration.WithLabelValues(strategy).Observe(d.Seconds())
	m.BacktestRows.WithLabelValues(strategy).Add(float64(rows))
}

func (m *Metrics) RecordHTTP(method, route string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
