package navtest

import (
	"context"
	"sync"

	"github.com/vango-dev/navcore/pkg/navigation"
)

// Gate is a middleware that holds matching requests until Release.
type Gate struct {
	match   func(*navigation.Request) bool
	entered chan *navigation.Request
	release chan struct{}
	once    sync.Once
}

// NewGate creates a gate for requests accepted by match. A nil match holds
// every request.
func NewGate(match func(*navigation.Request) bool) *Gate {
	return &Gate{
		match:   match,
		entered: make(chan *navigation.Request, 16),
		release: make(chan struct{}),
	}
}

// ForLocation matches requests for location.
func ForLocation(location string) func(*navigation.Request) bool {
	return func(req *navigation.Request) bool {
		return req.Location == location
	}
}

// Handle implements navigation.Middleware.
func (g *Gate) Handle(ctx context.Context, req *navigation.Request, next func(context.Context) error) error {
	if g.match != nil && !g.match(req) {
		return next(ctx)
	}

	g.entered <- req
	select {
	case <-g.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return next(ctx)
}

// Entered delivers each request as it reaches the gate.
func (g *Gate) Entered() <-chan *navigation.Request {
	return g.entered
}

// Release lets held and future requests through.
func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}
