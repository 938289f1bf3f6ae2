package navigation

import (
	"log/slog"
	"net/url"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMiddleware appends middleware to the resolution chain.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *Controller) {
		c.middleware = append(c.middleware, mw...)
	}
}

// WithFallback names the route activated when a location matches nothing.
// The fallback receives the unmatched location as the "location" param and
// the addressable location is not written. Without it, unmatched locations
// fail the request.
func WithFallback(name string) Option {
	return func(c *Controller) {
		c.fallback = name
	}
}

// NavigateOptions configures a single navigation.
type NavigateOptions struct {
	// Replace replaces the current history entry instead of pushing.
	Replace bool

	// Query is merged into the location's query string.
	Query url.Values
}

// NavigateOption is a functional option for navigation calls.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithQuery adds query parameters to the navigation location.
func WithQuery(query url.Values) NavigateOption {
	return func(o *NavigateOptions) {
		o.Query = query
	}
}

func buildNavigateOptions(opts []NavigateOption) NavigateOptions {
	var o NavigateOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
