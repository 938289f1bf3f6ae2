package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nerrors "github.com/vango-dev/navcore/internal/errors"
)

func TestNewTableLookupByName(t *testing.T) {
	routes := publishRoutes()
	table := mustTable(t, routes)

	assert.Equal(t, len(routes), table.Len())
	for _, r := range routes {
		if r.Name == "" {
			continue
		}
		got, ok := table.LookupByName(r.Name)
		require.True(t, ok, r.Name)
		assert.Equal(t, r, got)
		assert.Same(t, r.Component, got.Component)
	}

	for _, name := range []string{"PublishCenter", "publishvideo", "", "NotFound"} {
		_, ok := table.LookupByName(name)
		assert.False(t, ok, name)
	}
}

func TestNewTableRoutesInOrder(t *testing.T) {
	routes := publishRoutes()
	table := mustTable(t, routes)
	assert.Equal(t, routes, table.Routes())
}

func TestNewTableCopiesDefinitions(t *testing.T) {
	props := Props{"fixedPublishType": "video", "tags": []any{"a"}}
	routes := []Route{{Path: "/v", Name: "V", Component: publishView, Props: props, Meta: map[string]string{"title": "V"}}}
	table := mustTable(t, routes)

	props["fixedPublishType"] = "image"
	props["tags"].([]any)[0] = "b"
	routes[0].Meta["title"] = "changed"

	got, _ := table.LookupByName("V")
	assert.Equal(t, "video", got.Props["fixedPublishType"])
	assert.Equal(t, []any{"a"}, got.Props["tags"])
	assert.Equal(t, "V", got.Meta["title"])

	got.Props["fixedPublishType"] = "mutated"
	again, _ := table.LookupByName("V")
	assert.Equal(t, "video", again.Props["fixedPublishType"])
}

func TestNewTableValidation(t *testing.T) {
	tests := []struct {
		name   string
		routes []Route
		codes  []string
	}{
		{
			name: "duplicate name",
			routes: []Route{
				{Path: "/a", Name: "Same", Component: aboutView},
				{Path: "/b", Name: "Same", Component: aboutView},
			},
			codes: []string{"N101"},
		},
		{
			name: "duplicate path",
			routes: []Route{
				{Path: "/a", Component: aboutView},
				{Path: "/a/", Component: dashboardView},
			},
			codes: []string{"N102"},
		},
		{
			name: "duplicate param shape",
			routes: []Route{
				{Path: "/users/:id", Component: aboutView},
				{Path: "/users/:uid", Component: aboutView},
			},
			codes: []string{"N102"},
		},
		{
			name:   "component and redirect",
			routes: []Route{{Path: "/a", Component: aboutView, Redirect: "/b"}},
			codes:  []string{"N103"},
		},
		{
			name:   "neither component nor redirect",
			routes: []Route{{Path: "/a", Name: "A"}},
			codes:  []string{"N103"},
		},
		{
			name:   "wildcard not last",
			routes: []Route{{Path: "/files/*rest/x", Component: aboutView}},
			codes:  []string{"N104"},
		},
		{
			name:   "duplicate parameter",
			routes: []Route{{Path: "/a/:id/:id", Component: aboutView}},
			codes:  []string{"N104"},
		},
		{
			name:   "missing parameter name",
			routes: []Route{{Path: "/a/:", Component: aboutView}},
			codes:  []string{"N104"},
		},
		{
			name:   "query in pattern",
			routes: []Route{{Path: "/a?x=1", Component: aboutView}},
			codes:  []string{"N104"},
		},
		{
			name:   "unknown constraint",
			routes: []Route{{Path: "/a/:id:weird", Component: aboutView}},
			codes:  []string{"N105"},
		},
		{
			name: "redirect placeholder not declared",
			routes: []Route{
				{Path: "/old/:id", Redirect: "/new/:slug"},
				{Path: "/new/:slug", Component: aboutView},
			},
			codes: []string{"N104"},
		},
		{
			name:   "redirect pointing nowhere",
			routes: []Route{{Path: "/publish-center", Redirect: "/publish-video"}},
			codes:  []string{"N106"},
		},
		{
			name: "several problems at once",
			routes: []Route{
				{Path: "/a", Name: "A", Component: aboutView},
				{Path: "/a", Name: "A", Component: aboutView},
				{Path: "/c"},
			},
			codes: []string{"N101", "N102", "N103"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable(tt.routes)
			require.Error(t, err)
			assert.Nil(t, table)
			assert.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			var codes []string
			for _, p := range verr.Problems {
				codes = append(codes, p.Code)
			}
			assert.ElementsMatch(t, tt.codes, codes)
		})
	}
}

func TestNewTableDuplicateNameIsAtomic(t *testing.T) {
	routes := append(publishRoutes(), Route{Path: "/about-us", Name: "About", Component: aboutView})

	table, err := NewTable(routes)
	require.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, table)
	assert.True(t, nerrors.HasCode(err, "N101"))
	assert.Contains(t, err.Error(), "routes[7]")
}

func TestNewTableStaticRedirectCycle(t *testing.T) {
	_, err := NewTable([]Route{
		{Path: "/a", Redirect: "/b"},
		{Path: "/b", Redirect: "/a"},
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, ErrRedirectCycle)
	assert.True(t, nerrors.HasCode(err, "N107"))
}

func TestNewTableRedirectChainBeyondLimit(t *testing.T) {
	routes := []Route{
		{Path: "/a", Redirect: "/b"},
		{Path: "/b", Redirect: "/c"},
		{Path: "/c", Redirect: "/d"},
		{Path: "/d", Component: aboutView},
	}

	_, err := NewTable(routes, WithRedirectLimit(2))
	assert.ErrorIs(t, err, ErrRedirectCycle)

	_, err = NewTable(routes, WithRedirectLimit(3))
	assert.NoError(t, err)
}

func TestNewTableCustomConstraint(t *testing.T) {
	even := ConstraintFunc(func(s string) bool {
		return len(s) > 0 && (s[len(s)-1]-'0')%2 == 0
	})
	table := mustTable(t, []Route{
		{Path: "/n/:n:even", Name: "Even", Component: aboutView},
		{Path: "/n/:n", Name: "Any", Component: dashboardView},
	}, WithConstraint("even", even))

	m := NewMatcher(table)
	active, err := m.Resolve("/n/4")
	require.NoError(t, err)
	assert.Equal(t, "Even", active.Name())

	active, err = m.Resolve("/n/3")
	require.NoError(t, err)
	assert.Equal(t, "Any", active.Name())
}

func TestMatchByPathRanking(t *testing.T) {
	table := mustTable(t, []Route{
		{Path: "/users/*rest", Name: "Rest", Component: aboutView},     // 0
		{Path: "/users/:id", Name: "User", Component: aboutView},       // 1
		{Path: "/users/:id:int", Name: "UserID", Component: aboutView}, // 2
		{Path: "/users/42", Name: "FortyTwo", Component: aboutView},    // 3
		{Path: "/:section/42", Name: "Section", Component: aboutView},  // 4
	})

	candidates, err := table.MatchByPath("#/users/42")
	require.NoError(t, err)

	var names []string
	for _, c := range candidates {
		names = append(names, c.Route.Name)
	}
	assert.Equal(t, []string{"FortyTwo", "UserID", "User", "Rest", "Section"}, names)
	assert.Equal(t, map[string]string{"id": "42"}, candidates[1].Params)
	assert.Equal(t, map[string]string{"rest": "42"}, candidates[3].Params)
	assert.Equal(t, 3, candidates[0].Index())
}

func TestMatchByPathTieBreaksByRegistrationOrder(t *testing.T) {
	table := mustTable(t, []Route{
		{Path: "/c/:v:hex", Name: "Hex", Component: aboutView},
		{Path: "/c/:v:int", Name: "Int", Component: aboutView},
	})

	candidates, err := table.MatchByPath("/c/12")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Hex", candidates[0].Route.Name)
	assert.Equal(t, "Int", candidates[1].Route.Name)

	candidates, err = table.MatchByPath("/c/ff")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Hex", candidates[0].Route.Name)
}

func TestMatchByPathInvalidLocation(t *testing.T) {
	table := mustTable(t, publishRoutes())

	_, err := table.MatchByPath("/../etc")
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.True(t, nerrors.HasCode(err, "N109"))

	candidates, err := table.MatchByPath("/nothing/here")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestBuildPath(t *testing.T) {
	table := mustTable(t, []Route{
		{Path: "/", Name: "Home", Component: dashboardView},
		{Path: "/users/:id:int", Name: "User", Component: aboutView},
		{Path: "/docs/*page", Name: "Docs", Component: aboutView},
		{Path: "/tags/:tag", Name: "Tag", Component: aboutView},
	})

	tests := []struct {
		name   string
		route  string
		params map[string]string
		query  map[string][]string
		want   string
	}{
		{name: "root", route: "Home", want: "/"},
		{name: "param", route: "User", params: map[string]string{"id": "7"}, want: "/users/7"},
		{name: "wildcard", route: "Docs", params: map[string]string{"page": "guide/intro"}, want: "/docs/guide/intro"},
		{name: "escaped", route: "Tag", params: map[string]string{"tag": "a b"}, want: "/tags/a%20b"},
		{name: "query", route: "Home", query: map[string][]string{"tab": {"x"}}, want: "/?tab=x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.BuildPath(tt.route, tt.params, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := table.BuildPath("User", map[string]string{"id": "x"}, nil)
	assert.True(t, nerrors.HasCode(err, "N108"))

	_, err = table.BuildPath("User", nil, nil)
	assert.True(t, nerrors.HasCode(err, "N108"))

	_, err = table.BuildPath("Missing", nil, nil)
	assert.ErrorIs(t, err, ErrNoMatch)
}
