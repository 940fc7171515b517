package telemetry

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sku-pricing/internal/model"
)

func value(t *testing.T, c prometheus.Metric) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	switch {
	case m.Counter != nil:
		return m.GetCounter().GetValue()
	case m.Gauge != nil:
		return m.GetGauge().GetValue()
	}
	return 0
}

func TestRecordDecision(t *testing.T) {
	m := New()
	m.RecordDecision("ml", model.ReasonRevenueMaximization)
	m.RecordDecision("ml", model.ReasonRevenueMaximization)
	m.RecordDecision("static", model.ReasonPriceFreeze)

	assert.Equal(t, 2.0, value(t, m.Decisions.WithLabelValues("ml", "revenue_maximization")))
	assert.Equal(t, 1.0, value(t, m.Decisions.WithLabelValues("static", "price_freeze")))
}

func TestRecordJobRun(t *testing.T) {
	m := New()
	m.RecordJobRun(time.Second, nil)
	m.RecordJobRun(time.Second, errors.New("boom"))

	assert.Equal(t, 1.0, value(t, m.JobRuns.WithLabelValues("success")))
	assert.Equal(t, 1.0, value(t, m.JobRuns.WithLabelValues("error")))
	assert.Greater(t, value(t, m.JobLastRun), 0.0)
}

func TestSetOverride(t *testing.T) {
	m := New()
	m.SetOverride(model.OverridePriceFreeze)
	assert.Equal(t, 1.0, value(t, m.ActiveOverride.WithLabelValues("PRICE_FREEZE")))
	assert.Equal(t, 0.0, value(t, m.ActiveOverride.WithLabelValues("FORCE_RULE_BASED")))

	m.SetOverride(model.OverrideNone)
	assert.Equal(t, 0.0, value(t, m.ActiveOverride.WithLabelValues("PRICE_FREEZE")))
}

func TestObserveBacktest(t *testing.T) {
	m := New()
	m.ObserveBacktest("rule_based", 12, 10*time.Millisecond)
	assert.Equal(t, 12.0, value(t, m.BacktestRows.WithLabelValues("rule_based")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordHTTP("GET", "/health", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `sku_pricing_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.RecordDecision("ml", model.ReasonRevenueMaximization)
	assert.Equal(t, 0.0, value(t, b.Decisions.WithLabelValues("ml", "revenue_maximization")))
}
