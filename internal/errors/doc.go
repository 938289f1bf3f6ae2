// Package errors provides structured, coded diagnostics for navcore.
//
// Every diagnostic carries a registered code that maps to:
//   - A category (routing, navigation, config)
//   - A short message describing the problem
//   - A longer explanation
//
// Diagnostics can be enriched with the offending source (a route index,
// a config file), a suggestion, and a wrapped cause:
//
//	err := errors.New("N101").
//	    WithSource("routes[4]").
//	    WithDetail(`name "PublishVideo" is already used by routes[3]`)
//
//	fmt.Print(err.Format())
//	// Output:
//	// ERROR N101: Duplicate route name
//	//
//	//   routes[4]
//	//
//	//   name "PublishVideo" is already used by routes[3]
//
// The package is internal: public packages expose typed errors
// (router.ValidationError, router.NoMatchError, ...) that wrap these
// diagnostics, so callers match with errors.Is / errors.As against the
// public sentinels.
package errors
