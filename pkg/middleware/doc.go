// Package middleware provides navigation middleware for observability.
//
// This package includes:
//   - OpenTelemetry tracing of every navigation request
//   - Prometheus metrics for resolutions, redirects and history hosts
//   - Logging and panic recovery
//
// # OpenTelemetry Middleware
//
// Each request gets a span named after its target, with the request ID,
// source and history mode as attributes; the resolved route, pattern and
// location are added once resolution finished.
//
//	navigation.WithMiddleware(
//	    middleware.OpenTelemetry(
//	        middleware.WithTracerName("my-app"),
//	        middleware.WithRequestFilter(func(req *navigation.Request) bool {
//	            return req.Source != navigation.SourceStart
//	        }),
//	    ),
//	)
//
// # Prometheus Metrics
//
//   - navcore_navigations_total: Requests by route, source and status
//   - navcore_navigation_duration_seconds: Resolution duration histogram
//   - navcore_redirects_total: Redirected navigations by final route
//   - navcore_connected_hosts: Currently connected history hosts
//
// Expose them with promhttp:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # Ordering
//
// Middleware runs first to last. Put Recover first so it sees panics from
// everything after it, and Logging before guards so rejected requests are
// logged.
package middleware
