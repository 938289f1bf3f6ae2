package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Routing Errors (N100-N199)
	// ============================================

	"N100": {
		Category: CategoryRouting,
		Message:  "No route matches location",
		Detail:   "No registered route matches the location. Register a fallback route to render a not-found view.",
	},
	"N101": {
		Category: CategoryRouting,
		Message:  "Duplicate route name",
		Detail:   "Route names must be unique within a route table.",
	},
	"N102": {
		Category: CategoryRouting,
		Message:  "Duplicate route path",
		Detail:   "Two routes declare the same path pattern. Parameter names are ignored when comparing patterns.",
	},
	"N103": {
		Category: CategoryRouting,
		Message:  "Route must have exactly one of component or redirect",
		Detail:   "A route either renders a component or redirects to another location, never both and never neither.",
	},
	"N104": {
		Category: CategoryRouting,
		Message:  "Invalid route pattern",
		Detail:   "Patterns are made of literal segments, :name parameters, :name:constraint parameters and a final *name wildcard.",
	},
	"N105": {
		Category: CategoryRouting,
		Message:  "Unknown parameter constraint",
		Detail:   "The constraint after the parameter name is not registered.",
	},
	"N106": {
		Category: CategoryRouting,
		Message:  "Redirect target does not match any route",
		Detail:   "A redirect must point at a location that resolves to a registered route.",
	},
	"N107": {
		Category: CategoryRouting,
		Message:  "Redirect cycle",
		Detail:   "Following redirects did not reach a renderable route within the hop limit.",
	},
	"N108": {
		Category: CategoryRouting,
		Message:  "Cannot build path",
		Detail:   "A parameter required by the route pattern is missing or violates its constraint.",
	},
	"N109": {
		Category: CategoryRouting,
		Message:  "Invalid location",
		Detail:   "The location could not be canonicalized.",
	},

	// ============================================
	// Navigation Errors (N200-N299)
	// ============================================

	"N201": {
		Category: CategoryNavigation,
		Message:  "Navigation already started",
		Detail:   "Start must be called exactly once per controller.",
	},
	"N202": {
		Category: CategoryNavigation,
		Message:  "Navigation not started",
		Detail:   "Call Start with the initial location before navigating.",
	},
	"N203": {
		Category: CategoryNavigation,
		Message:  "Navigation superseded",
		Detail:   "A later navigation request started before this one completed; its result was discarded.",
	},
	"N204": {
		Category: CategoryNavigation,
		Message:  "History host failure",
		Detail:   "The history host rejected a location update.",
	},

	// ============================================
	// Configuration Errors (N300-N399)
	// ============================================

	"N301": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "The configuration file does not exist.",
	},
	"N302": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration could not be parsed.",
	},
	"N303": {
		Category: CategoryConfig,
		Message:  "Unknown component",
		Detail:   "The route references a component that is not in the component registry.",
	},
	"N304": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"N305": {
		Category: CategoryConfig,
		Message:  "Configuration fetch failed",
		Detail:   "The configuration object could not be read from its remote store.",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
// It is meant to be called from init functions only.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
