// Package navigation drives the active route of a single-page application.
//
// A Controller turns navigation requests (programmatic calls and history
// changes reported by the host) into an active route: it resolves the
// location with a router.Matcher, swaps the active route, writes the
// canonical location through a history.Adapter and notifies subscribers.
//
// Requests may overlap. Each one gets a generation number when it starts and
// only the latest request is allowed to commit; earlier requests that finish
// afterwards return ErrSuperseded and change nothing. A failed request leaves
// both the active route and the addressable location as they were.
//
//	c := navigation.New(matcher, history.New(host, logger),
//	    navigation.WithLogger(logger),
//	    navigation.WithMiddleware(middleware.Logging(logger)),
//	)
//	if _, err := c.Start(ctx, ""); err != nil { ... }
//	unsubscribe := c.Subscribe(func(ev navigation.Event) { ... })
//	active, err := c.NavigateTo(ctx, "/publish-video")
package navigation
