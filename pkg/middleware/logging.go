package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vango-dev/navcore/pkg/navigation"
)

// Logging creates middleware that logs every navigation request.
// Successful resolutions log at Debug, failures at Warn and canceled
// requests at Debug. A nil logger uses slog.Default().
func Logging(logger *slog.Logger) navigation.Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return navigation.MiddlewareFunc(func(ctx context.Context, req *navigation.Request, next func(context.Context) error) error {
		start := time.Now()
		err := next(ctx)

		attrs := []any{
			"request_id", req.ID,
			"source", req.Source.String(),
			"target", req.Target(),
			"duration", time.Since(start),
		}

		switch {
		case err == nil && req.Active != nil:
			attrs = append(attrs, "route", req.Active.Name(), "location", req.Active.Location)
			if len(req.Active.RedirectedFrom) > 0 {
				attrs = append(attrs, "redirected_from", req.Active.RedirectedFrom)
			}
			logger.DebugContext(ctx, "navigation resolved", attrs...)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			logger.DebugContext(ctx, "navigation canceled", append(attrs, "error", err)...)
		case err != nil:
			logger.WarnContext(ctx, "navigation failed", append(attrs, "error", err)...)
		}

		return err
	})
}

// Recover creates middleware that turns a panic further down the chain into
// a *PanicError.
func Recover(logger *slog.Logger) navigation.Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return navigation.MiddlewareFunc(func(ctx context.Context, req *navigation.Request, next func(context.Context) error) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "navigation panic", "request_id", req.ID, "target", req.Target(), "panic", r)
				err = &PanicError{Value: r}
			}
		}()
		return next(ctx)
	})
}

// PanicError wraps a value recovered from a panicking middleware.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("navigation panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
