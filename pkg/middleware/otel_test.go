package middleware

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/navcore/pkg/navigation"
	"github.com/vango-dev/navcore/pkg/navtest"
)

// recordingProvider hands out tracers that keep every span in memory.
type recordingProvider struct {
	noop.TracerProvider

	mu    sync.Mutex
	names []string
	spans []*recordedSpan
}

func (p *recordingProvider) Tracer(name string, _ ...trace.TracerOption) trace.Tracer {
	p.mu.Lock()
	p.names = append(p.names, name)
	p.mu.Unlock()
	return &recordingTracer{provider: p}
}

func (p *recordingProvider) recorded() []*recordedSpan {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*recordedSpan(nil), p.spans...)
}

type recordingTracer struct {
	noop.Tracer
	provider *recordingProvider
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordedSpan{name: name, kind: cfg.SpanKind(), attrs: cfg.Attributes()}

	t.provider.mu.Lock()
	t.provider.spans = append(t.provider.spans, s)
	t.provider.mu.Unlock()

	return trace.ContextWithSpan(ctx, s), s
}

type recordedSpan struct {
	noop.Span

	name   string
	kind   trace.SpanKind
	attrs  []attribute.KeyValue
	status codes.Code
	errs   []error
	ended  bool
}

func (s *recordedSpan) SetAttributes(kv ...attribute.KeyValue) { s.attrs = append(s.attrs, kv...) }
func (s *recordedSpan) SetStatus(code codes.Code, _ string)    { s.status = code }
func (s *recordedSpan) RecordError(err error, _ ...trace.EventOption) {
	s.errs = append(s.errs, err)
}
func (s *recordedSpan) End(...trace.SpanEndOption) { s.ended = true }

func (s *recordedSpan) attr(key string) (attribute.Value, bool) {
	for _, kv := range s.attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestOpenTelemetrySpans(t *testing.T) {
	tp := &recordingProvider{}

	var inner trace.Span
	inspect := navigation.MiddlewareFunc(func(ctx context.Context, req *navigation.Request, next func(context.Context) error) error {
		inner = SpanFromContext(ctx)
		return next(ctx)
	})

	h := navtest.New().
		WithRoutes(testRoutes()...).
		WithMiddleware(OpenTelemetry(WithTracerProvider(tp), WithIncludeParams(true)), inspect).
		Build(t)
	h.Start(t, "")
	h.Navigate(t, "/users/7")
	_, err := h.Controller.NavigateTo(context.Background(), "/missing")
	require.Error(t, err)

	assert.Equal(t, []string{"navcore"}, tp.names)
	spans := tp.recorded()
	require.Len(t, spans, 3)

	resolved := spans[1]
	assert.Same(t, spans[2], inner.(*recordedSpan))
	assert.Equal(t, "navigate /users/7", resolved.name)
	assert.Equal(t, trace.SpanKindInternal, resolved.kind)
	assert.Equal(t, codes.Ok, resolved.status)
	assert.True(t, resolved.ended)

	v, found := resolved.attr("navcore.route")
	require.True(t, found)
	assert.Equal(t, "User", v.AsString())
	v, _ = resolved.attr("navcore.source")
	assert.Equal(t, "navigate", v.AsString())
	v, _ = resolved.attr("navcore.param.id")
	assert.Equal(t, "7", v.AsString())

	failed := spans[2]
	assert.Equal(t, codes.Error, failed.status)
	assert.Len(t, failed.errs, 1)
	_, found = failed.attr("navcore.route")
	assert.False(t, found)
}

func TestOpenTelemetryFilterAndExtractor(t *testing.T) {
	tp := &recordingProvider{}
	mw := OpenTelemetry(
		WithTracerProvider(tp),
		WithTracerName("my-app"),
		WithRequestFilter(func(req *navigation.Request) bool {
			return req.Source != navigation.SourceStart
		}),
		WithAttributeExtractor(func(req *navigation.Request) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	)

	h := navtest.New().WithRoutes(testRoutes()...).WithMiddleware(mw).Build(t)
	h.Start(t, "")
	h.Navigate(t, "/docs")

	assert.Equal(t, []string{"my-app"}, tp.names)
	spans := tp.recorded()
	require.Len(t, spans, 1)

	v, found := spans[0].attr("test.attr")
	require.True(t, found)
	assert.Equal(t, "ok", v.AsString())
	_, found = spans[0].attr("navcore.param.id")
	assert.False(t, found)
}

func TestFormatSpanName(t *testing.T) {
	tests := []struct {
		req  *navigation.Request
		want string
	}{
		{&navigation.Request{Source: navigation.SourceNavigate, Location: "/x"}, "navigate /x"},
		{&navigation.Request{Source: navigation.SourceName, Name: "User"}, "navigate User"},
		{&navigation.Request{Source: navigation.SourceStart}, "navigate /"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSpanName(tt.req))
	}
}
