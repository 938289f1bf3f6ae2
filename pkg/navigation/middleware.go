package navigation

import "context"

// Middleware wraps route resolution. Calling next resolves the request;
// returning an error without calling next aborts it.
type Middleware interface {
	Handle(ctx context.Context, req *Request, next func(context.Context) error) error
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(ctx context.Context, req *Request, next func(context.Context) error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(ctx context.Context, req *Request, next func(context.Context) error) error {
	return f(ctx, req, next)
}

// ComposeMiddleware builds a handler chain from middleware and a final handler.
// Middleware is executed in order (first to last), with the handler at the end.
func ComposeMiddleware(ctx context.Context, req *Request, mw []Middleware, handler func(context.Context) error) error {
	if len(mw) == 0 {
		return handler(ctx)
	}

	chain := handler
	for i := len(mw) - 1; i >= 0; i-- {
		m := mw[i]
		next := chain
		chain = func(ctx context.Context) error {
			return m.Handle(ctx, req, next)
		}
	}

	return chain(ctx)
}

// Chain creates a middleware that combines multiple middleware in order.
func Chain(middleware ...Middleware) Middleware {
	return MiddlewareFunc(func(ctx context.Context, req *Request, next func(context.Context) error) error {
		return ComposeMiddleware(ctx, req, middleware, next)
	})
}

// Skip bypasses mw when condition holds.
func Skip(condition func(*Request) bool, mw Middleware) Middleware {
	return MiddlewareFunc(func(ctx context.Context, req *Request, next func(context.Context) error) error {
		if condition(req) {
			return next(ctx)
		}
		return mw.Handle(ctx, req, next)
	})
}

// Only runs mw only when condition holds.
func Only(condition func(*Request) bool, mw Middleware) Middleware {
	return MiddlewareFunc(func(ctx context.Context, req *Request, next func(context.Context) error) error {
		if !condition(req) {
			return next(ctx)
		}
		return mw.Handle(ctx, req, next)
	})
}
