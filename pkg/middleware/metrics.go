package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	nerrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/navigation"
	"github.com/vango-dev/navcore/pkg/router"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "navcore").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for resolution duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "navcore",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for navigation.
type metrics struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	navigationErrors   *prometheus.CounterVec
	redirectsTotal     *prometheus.CounterVec
	redirectHops       prometheus.Histogram
	connectedHosts     prometheus.Gauge
	historyErrors      *prometheus.CounterVec
}

// globalMetrics is the singleton metrics instance.
// Created on first call to Prometheus().
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigation requests resolved",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "source", "status"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation resolution duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"source"}),

		navigationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_errors_total",
			Help:        "Total number of failed navigation requests",
			ConstLabels: config.ConstLabels,
		}, []string{"source", "error_type"}),

		redirectsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "redirects_total",
			Help:        "Total number of navigations that followed a redirect, by final route",
			ConstLabels: config.ConstLabels,
		}, []string{"route"}),

		redirectHops: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "redirect_hops",
			Help:        "Number of redirects followed per redirected navigation",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 3, 5, 10},
		}),

		connectedHosts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "connected_hosts",
			Help:        "Number of connected history hosts",
			ConstLabels: config.ConstLabels,
		}),

		historyErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "history_errors_total",
			Help:        "Total history host errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Prometheus creates middleware that collects Prometheus metrics for
// navigation requests.
//
// Metrics collected:
//   - navcore_navigations_total: Counter of requests by route, source and status
//   - navcore_navigation_duration_seconds: Histogram of resolution duration
//   - navcore_navigation_errors_total: Counter of failures by error type
//   - navcore_redirects_total: Counter of redirected navigations by final route
//   - navcore_redirect_hops: Histogram of redirect chain length
//   - navcore_connected_hosts: Gauge of connected hosts (RecordHostConnect)
//   - navcore_history_errors_total: Counter of host errors (RecordHistoryError)
//
// Example:
//
//	c := navigation.New(matcher, adapter,
//	    navigation.WithMiddleware(middleware.Prometheus(
//	        middleware.WithNamespace("myapp"),
//	    )),
//	)
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) navigation.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return navigation.MiddlewareFunc(func(ctx context.Context, req *navigation.Request, next func(context.Context) error) error {
		source := req.Source.String()
		start := time.Now()

		err := next(ctx)

		m.navigationDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

		route := "none"
		status := "success"
		if err != nil {
			status = "error"
			m.navigationErrors.WithLabelValues(source, categorizeError(err)).Inc()
		} else if req.Active != nil {
			route = routeLabel(req.Active)
			if hops := len(req.Active.RedirectedFrom); hops > 0 {
				m.redirectsTotal.WithLabelValues(route).Inc()
				m.redirectHops.Observe(float64(hops))
			}
		}
		m.navigationsTotal.WithLabelValues(route, source, status).Inc()

		return err
	})
}

// routeLabel uses the route name, falling back to its pattern for unnamed
// routes, so labels stay bounded by the table size.
func routeLabel(active *router.ActiveRoute) string {
	if name := active.Name(); name != "" {
		return name
	}
	return active.Route.Path
}

// categorizeError returns a bounded label for err.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, router.ErrNoMatch):
		return "not_found"
	case errors.Is(err, router.ErrRedirectCycle):
		return "redirect_cycle"
	case nerrors.HasCode(err, "N108"):
		return "invalid_params"
	case nerrors.HasCode(err, "N204"):
		return "history"
	default:
		return "internal"
	}
}

// =============================================================================
// Metrics Recording Functions
// =============================================================================

// RecordHostConnect records a history host connecting.
func RecordHostConnect() {
	if m := current(); m != nil {
		m.connectedHosts.Inc()
	}
}

// RecordHostDisconnect records a history host disconnecting.
func RecordHostDisconnect() {
	if m := current(); m != nil {
		m.connectedHosts.Dec()
	}
}

// RecordHistoryError records a history host error.
func RecordHistoryError(errorType string) {
	if m := current(); m != nil {
		m.historyErrors.WithLabelValues(errorType).Inc()
	}
}

func current() *metrics {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	return globalMetrics
}

// =============================================================================
// Metrics Collector
// =============================================================================

// Collector exposes the navigation metrics for custom registrations.
type Collector struct {
	NavigationsTotal   *prometheus.CounterVec
	NavigationDuration *prometheus.HistogramVec
	NavigationErrors   *prometheus.CounterVec
	RedirectsTotal     *prometheus.CounterVec
	RedirectHops       prometheus.Histogram
	ConnectedHosts     prometheus.Gauge
	HistoryErrors      *prometheus.CounterVec
}

// GetMetrics returns the global metrics collector.
// Returns nil if Prometheus middleware has not been initialized.
func GetMetrics() *Collector {
	m := current()
	if m == nil {
		return nil
	}
	return &Collector{
		NavigationsTotal:   m.navigationsTotal,
		NavigationDuration: m.navigationDuration,
		NavigationErrors:   m.navigationErrors,
		RedirectsTotal:     m.redirectsTotal,
		RedirectHops:       m.redirectHops,
		ConnectedHosts:     m.connectedHosts,
		HistoryErrors:      m.historyErrors,
	}
}
