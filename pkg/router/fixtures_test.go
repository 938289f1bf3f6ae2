package router

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// view is an opaque component handle for tests.
type view struct{ name string }

var (
	dashboardView = &view{"Dashboard"}
	accountView   = &view{"AccountManagement"}
	materialView  = &view{"MaterialManagement"}
	publishView   = &view{"PublishCenter"}
	aboutView     = &view{"About"}
)

// publishRoutes mirrors the upload console's route configuration.
func publishRoutes() []Route {
	return []Route{
		{Path: "/", Name: "Dashboard", Component: dashboardView},
		{Path: "/account-management", Name: "AccountManagement", Component: accountView},
		{Path: "/material-management", Name: "MaterialManagement", Component: materialView},
		{Path: "/publish-center", Redirect: "/publish-video"},
		{Path: "/publish-video", Name: "PublishVideo", Component: publishView, Props: Props{"fixedPublishType": "video"}},
		{Path: "/publish-image", Name: "PublishImage", Component: publishView, Props: Props{"fixedPublishType": "image"}},
		{Path: "/about", Name: "About", Component: aboutView},
	}
}

func mustTable(t *testing.T, routes []Route, opts ...TableOption) *Table {
	t.Helper()
	table, err := NewTable(routes, opts...)
	require.NoError(t, err)
	return table
}
