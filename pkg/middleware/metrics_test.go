package middleware

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nerrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/navtest"
	"github.com/vango-dev/navcore/pkg/router"
)

func resetGlobalMetricsForTest() {
	globalMetricsMu.Lock()
	globalMetrics = nil
	globalMetricsMu.Unlock()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestPrometheusRecordsNavigations(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()

	h := navtest.New().
		WithRoutes(testRoutes()...).
		WithMiddleware(Prometheus(WithRegistry(reg))).
		Build(t)
	h.Start(t, "")
	h.Navigate(t, "/old")
	_, err := h.Controller.NavigateTo(context.Background(), "/missing")
	require.Error(t, err)

	c := GetMetrics()
	require.NotNil(t, c)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.NavigationsTotal.WithLabelValues("Home", "start", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.NavigationsTotal.WithLabelValues("Docs", "navigate", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.NavigationsTotal.WithLabelValues("none", "navigate", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.NavigationErrors.WithLabelValues("navigate", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.RedirectsTotal.WithLabelValues("Docs")))

	assert.Equal(t, uint64(2), metricHistogramCount(t, c.NavigationDuration.WithLabelValues("navigate")))
	assert.Equal(t, uint64(1), metricHistogramCount(t, c.RedirectHops))
	assert.Equal(t, 3, testutil.CollectAndCount(reg, "navcore_navigations_total"))
}

func TestPrometheusNamespace(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()

	h := navtest.New().
		WithRoutes(testRoutes()...).
		WithMiddleware(Prometheus(WithRegistry(reg), WithNamespace("shop"), WithSubsystem("nav"))).
		Build(t)
	h.Start(t, "")

	assert.Equal(t, 1, testutil.CollectAndCount(reg, "shop_nav_navigations_total"))
	assert.Equal(t, 0, testutil.CollectAndCount(reg, "navcore_navigations_total"))
}

func TestMetricsRecordFunctions(t *testing.T) {
	resetGlobalMetricsForTest()
	RecordHostConnect()
	RecordHistoryError("write")
	assert.Nil(t, GetMetrics())

	_ = Prometheus(WithRegistry(prometheus.NewRegistry()))
	c := GetMetrics()
	require.NotNil(t, c)

	RecordHostConnect()
	RecordHostConnect()
	RecordHostDisconnect()
	RecordHistoryError("write")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.ConnectedHosts))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HistoryErrors.WithLabelValues("write")))
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{context.Canceled, "canceled"},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), "timeout"},
		{&router.NoMatchError{Location: "/x"}, "not_found"},
		{&router.RedirectCycleError{Chain: []string{"/a", "/b", "/a"}}, "redirect_cycle"},
		{nerrors.New("N108"), "invalid_params"},
		{nerrors.New("N204"), "history"},
		{errors.New("something else"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, categorizeError(tt.err))
		})
	}
}
