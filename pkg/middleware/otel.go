package middleware

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/navcore/pkg/navigation"
)

// Default tracer name for navcore.
const defaultTracerName = "navcore"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "navcore").
	TracerName string

	// TracerProvider supplies the tracer.
	// Default: the global provider from otel.GetTracerProvider().
	TracerProvider trace.TracerProvider

	// IncludeParams records the resolved route parameters as attributes.
	// Parameters may carry user data, so this is disabled by default.
	IncludeParams bool

	// Filter determines which requests to trace.
	// If nil, all requests are traced.
	Filter func(req *navigation.Request) bool

	// AttributeExtractor extracts custom attributes from the request.
	AttributeExtractor func(req *navigation.Request) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithIncludeParams enables recording route parameters.
func WithIncludeParams(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeParams = include
	}
}

// WithRequestFilter sets a filter for which requests to trace.
func WithRequestFilter(filter func(req *navigation.Request) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a function to extract custom attributes.
func WithAttributeExtractor(extractor func(req *navigation.Request) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// OpenTelemetry creates middleware that traces every navigation request.
//
// The span starts before resolution and ends when the chain returns. The
// span context is passed down the chain, so later middleware and guards can
// start child spans from their ctx.
//
// Example:
//
//	c := navigation.New(matcher, adapter,
//	    navigation.WithMiddleware(middleware.OpenTelemetry(
//	        middleware.WithTracerName("my-app"),
//	    )),
//	)
func OpenTelemetry(opts ...OTelOption) navigation.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(config.TracerName)

	return navigation.MiddlewareFunc(func(ctx context.Context, req *navigation.Request, next func(context.Context) error) error {
		if config.Filter != nil && !config.Filter(req) {
			return next(ctx)
		}

		attrs := []attribute.KeyValue{
			attribute.String("navcore.request_id", req.ID),
			attribute.String("navcore.source", req.Source.String()),
			attribute.String("navcore.target", req.Target()),
			attribute.String("navcore.mode", req.Mode.String()),
			attribute.Int64("navcore.generation", int64(req.Generation)),
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(req)...)
		}

		spanCtx, span := tracer.Start(ctx, formatSpanName(req),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		err := next(spanCtx)

		if active := req.Active; active != nil {
			span.SetAttributes(
				attribute.String("navcore.route", active.Name()),
				attribute.String("navcore.pattern", active.Route.Path),
				attribute.String("navcore.location", active.Location),
				attribute.Int("navcore.redirects", len(active.RedirectedFrom)),
			)
			if config.IncludeParams {
				for k, v := range active.Params {
					span.SetAttributes(attribute.String("navcore.param."+k, v))
				}
			}
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	})
}

// SpanFromContext returns the navigation span carried by ctx.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// formatSpanName creates a span name from the request.
func formatSpanName(req *navigation.Request) string {
	target := req.Target()
	if target == "" {
		target = "/"
	}
	return fmt.Sprintf("navigate %s", target)
}
