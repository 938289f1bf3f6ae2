package router

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinConstraints(t *testing.T) {
	tests := []struct {
		name  string
		valid []string
		bad   []string
	}{
		{"int", []string{"0", "42"}, []string{"", "-1", "4a"}},
		{"uint", []string{"7"}, []string{"x"}},
		{"float", []string{"3.14", "42", ".5"}, []string{"1.", "a"}},
		{"slug", []string{"my-post-title", "abc"}, []string{"-x", "a--b", "a_b"}},
		{"alpha", []string{"hello"}, []string{"hello1"}},
		{"alphanum", []string{"abc123"}, []string{"abc-123"}},
		{"date", []string{"2024-01-15"}, []string{"2024-1-15"}},
		{"hex", []string{"deadBEEF"}, []string{"xyz"}},
		{"uuid", []string{"550e8400-e29b-41d4-a716-446655440000"}, []string{
			"550e8400e29b41d4a716446655440000",
			"urn:uuid:550e8400-e29b-41d4-a716-446655440000",
			"nope",
		}},
		{"domain", []string{"example.com", "sub.example.co.uk"}, []string{"-bad.com", strings.Repeat("a.", 127) + "com"}},
	}

	set := newConstraintSet(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := set.lookup(tt.name)
			require.True(t, ok)
			for _, v := range tt.valid {
				assert.True(t, c.MatchString(v), v)
			}
			for _, v := range tt.bad {
				assert.False(t, c.MatchString(v), v)
			}
		})
	}
}

func TestConstraintSetOverride(t *testing.T) {
	never := ConstraintFunc(func(string) bool { return false })
	set := newConstraintSet(map[string]Constraint{"int": never, "even": never})

	c, ok := set.lookup("int")
	require.True(t, ok)
	assert.False(t, c.MatchString("1"))

	_, ok = set.lookup("even")
	assert.True(t, ok)

	_, ok = newConstraintSet(nil).lookup("even")
	assert.False(t, ok)
}
