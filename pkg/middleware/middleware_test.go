package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/navcore/pkg/navigation"
	"github.com/vango-dev/navcore/pkg/navtest"
	"github.com/vango-dev/navcore/pkg/router"
)

func testRoutes() []router.Route {
	return []router.Route{
		{Path: "/", Name: "Home", Component: "Home"},
		{Path: "/old", Redirect: "/docs"},
		{Path: "/docs", Name: "Docs", Component: "Docs"},
		{Path: "/users/:id:int", Name: "User", Component: "User"},
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := navtest.New().WithRoutes(testRoutes()...).WithMiddleware(Logging(logger)).Build(t)
	h.Start(t, "")
	h.Navigate(t, "/old")
	_, err := h.Controller.NavigateTo(context.Background(), "/missing")
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "navigation resolved")
	assert.Contains(t, out, "route=Docs")
	assert.Contains(t, out, "redirected_from=[/old]")
	assert.Contains(t, out, "level=WARN msg=\"navigation failed\"")
	assert.Contains(t, out, "target=/missing")
}

func TestLoggingCanceled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := navigation.ComposeMiddleware(ctx, &navigation.Request{Location: "/x"},
		[]navigation.Middleware{Logging(logger)},
		func(ctx context.Context) error { return ctx.Err() })

	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, buf.String(), "navigation canceled")
	assert.NotContains(t, buf.String(), "WARN")
}

func TestRecover(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	boom := errors.New("boom")

	tests := []struct {
		name    string
		value   any
		wantMsg string
		wantIs  error
	}{
		{"string", "bad guard", "navigation panic: bad guard", nil},
		{"error", boom, "navigation panic: boom", boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := navigation.ComposeMiddleware(context.Background(), &navigation.Request{},
				[]navigation.Middleware{Recover(logger)},
				func(context.Context) error { panic(tt.value) })

			var pe *PanicError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantMsg, err.Error())
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestRecoverInController(t *testing.T) {
	panicky := navigation.MiddlewareFunc(func(ctx context.Context, req *navigation.Request, next func(context.Context) error) error {
		if req.Location == "/docs" {
			panic("guard exploded")
		}
		return next(ctx)
	})

	h := navtest.New().WithRoutes(testRoutes()...).WithMiddleware(Recover(nil), panicky).Build(t)
	h.Start(t, "")

	_, err := h.Controller.NavigateTo(context.Background(), "/docs")
	assert.True(t, strings.Contains(err.Error(), "guard exploded"))
	assert.Equal(t, navigation.StateFailed, h.Controller.State())
	navtest.ExpectActive(t, h.Controller, "Home")
}
