// Package navtest provides testing helpers for navigation controllers.
//
// The navtest package reduces boilerplate when testing navigation by wiring
// a route table, an in-memory history host and a controller together, and
// by recording the events the controller delivers.
//
// # Quick Start
//
//	func TestPublishCenter(t *testing.T) {
//	    h := navtest.New().WithRoutes(routes...).Build(t)
//	    h.Start(t, "")
//	    h.Navigate(t, "/publish-center")
//	    navtest.ExpectActive(t, h.Controller, "PublishVideo")
//	    navtest.ExpectLocation(t, h.Host, "#/publish-video")
//	}
//
// # Simulating slow resolution
//
// A Gate is a middleware that holds matching requests until released, which
// makes overlapping requests deterministic:
//
//	gate := navtest.NewGate(navtest.ForLocation("/x"))
//	h := navtest.New().WithRoutes(routes...).WithMiddleware(gate).Build(t)
//	go h.Controller.NavigateTo(ctx, "/x")
//	<-gate.Entered()
//	h.Controller.NavigateTo(ctx, "/y")
//	gate.Release()
package navtest
