package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		raw      string
		wantRaw  string
		wantKey  string
		wantRank []int
	}{
		{"/", "/", "/", []int{}},
		{"", "/", "/", []int{}},
		{"/about/", "/about", "/about", []int{rankLiteral}},
		{"/users/:id", "/users/:id", "/users/:", []int{rankLiteral, rankParam}},
		{"/users/:id:int", "/users/:id:int", "/users/:int", []int{rankLiteral, rankConstrained}},
		{"/users/:id:string", "/users/:id:string", "/users/:", []int{rankLiteral, rankParam}},
		{"/files/*rest", "/files/*rest", "/files/*", []int{rankLiteral, rankWildcard}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			p, err := parsePattern(tt.raw, newConstraintSet(nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantRaw, p.raw)
			assert.Equal(t, tt.wantKey, p.key())
			assert.Equal(t, tt.wantRank, p.ranks())
		})
	}
}

func TestParsePatternErrors(t *testing.T) {
	for _, raw := range []string{
		"/a?b=1",
		"/*rest/tail",
		"/a/:",
		"/a/*",
		"/:id/:id",
		"/../x",
		"/a/:id:nope",
	} {
		_, err := parsePattern(raw, newConstraintSet(nil))
		assert.Error(t, err, raw)
	}

	// Without a constraint set, names are kept but not resolved.
	p, err := parsePattern("/a/:id:nope", nil)
	require.NoError(t, err)
	assert.Nil(t, p.segments[1].check)
}

func TestPatternParamNamesAndStatic(t *testing.T) {
	p, err := parsePattern("/a/:x/b/*rest", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "rest"}, p.paramNames())
	assert.False(t, p.isStatic())

	s, err := parsePattern("/a/b", nil)
	require.NoError(t, err)
	assert.True(t, s.isStatic())
	assert.Nil(t, s.paramNames())
}

func TestPatternBuild(t *testing.T) {
	p, err := parsePattern("/users/:id:int/files/*rest", newConstraintSet(nil))
	require.NoError(t, err)

	got, err := p.build(map[string]string{"id": "3", "rest": "/a b/c/"})
	require.NoError(t, err)
	assert.Equal(t, "/users/3/files/a%20b/c", got)

	_, err = p.build(map[string]string{"id": "x", "rest": "a"})
	assert.ErrorContains(t, err, "violates constraint")

	_, err = p.build(map[string]string{"id": "3"})
	assert.ErrorContains(t, err, `missing parameter "rest"`)
}
