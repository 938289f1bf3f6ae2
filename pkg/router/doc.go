// Package router implements the route table and matcher of navcore.
//
// The router provides:
//   - An immutable route table, validated all-or-nothing at construction
//   - A segment tree for matching locations against route patterns
//   - Deterministic precedence (literal > constrained > parameter > wildcard)
//   - Redirect (alias) resolution with a hop bound
//   - Parameter extraction, constraint checks and typed binding
//   - Reverse building of locations from route names
//
// # Patterns
//
// Route paths are made of segments:
//
//	/about                 literal
//	/users/:id             parameter (any single segment)
//	/users/:id:int         constrained parameter
//	/files/*rest           wildcard tail (one or more segments, last only)
//
// Constraints: int, uint, float, slug, alpha, alphanum, date, hex, uuid,
// domain. "string" is accepted as an alias for an unconstrained parameter.
// Tables can register more with WithConstraint.
//
// # Usage
//
//	table, err := router.NewTable([]router.Route{
//	    {Path: "/", Name: "Dashboard", Component: dashboard},
//	    {Path: "/publish-center", Redirect: "/publish-video"},
//	    {Path: "/publish-video", Name: "PublishVideo", Component: publish,
//	        Props: router.Props{"fixedPublishType": "video"}},
//	})
//	if err != nil {
//	    // errors.Is(err, router.ErrValidation)
//	}
//
//	m := router.NewMatcher(table)
//	active, err := m.Resolve("#/publish-center")
//	// active.Route.Name == "PublishVideo"
//	// active.Props["fixedPublishType"] == "video"
//	// active.RedirectedFrom == []string{"/publish-center"}
package router
