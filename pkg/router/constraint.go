package router

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// Constraint validates a single parameter value.
// *regexp.Regexp satisfies this interface.
type Constraint interface {
	MatchString(string) bool
}

// ConstraintFunc adapts a function to Constraint.
type ConstraintFunc func(string) bool

// MatchString implements Constraint.
func (f ConstraintFunc) MatchString(s string) bool {
	return f(s)
}

// lengthConstraint wraps a regexp with an additional maximum length.
type lengthConstraint struct {
	re     *regexp.Regexp
	maxLen int
}

func (c *lengthConstraint) MatchString(s string) bool {
	return len(s) <= c.maxLen && c.re.MatchString(s)
}

// uuidConstraint accepts canonical 36-character UUIDs only; uuid.Validate
// alone also accepts the urn and braced forms.
var uuidConstraint = ConstraintFunc(func(s string) bool {
	return len(s) == 36 && uuid.Validate(s) == nil
})

// unconstrained is the name that maps to a plain parameter.
const unconstrained = "string"

// builtinConstraints maps constraint names to their matchers.
// Used in route patterns: ":name:constraint".
var builtinConstraints = func() map[string]Constraint {
	raw := map[string]string{
		"int":      `[0-9]+`,
		"uint":     `[0-9]+`,
		"float":    `[0-9]*\.?[0-9]+`,
		"slug":     `[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*`,
		"alpha":    `[a-zA-Z]+`,
		"alphanum": `[a-zA-Z0-9]+`,
		"date":     `[0-9]{4}-[0-9]{2}-[0-9]{2}`,
		"hex":      `[0-9a-fA-F]+`,
		// RFC 1035/1123: labels 1-63 chars, total up to 253 chars.
		"domain": `(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?`,
	}

	maxLengths := map[string]int{
		"domain": 253,
	}

	m := make(map[string]Constraint, len(raw)+1)
	for name, pattern := range raw {
		re := regexp.MustCompile(fmt.Sprintf("^%s$", pattern))
		if maxLen, ok := maxLengths[name]; ok {
			m[name] = &lengthConstraint{re: re, maxLen: maxLen}
		} else {
			m[name] = re
		}
	}
	m["uuid"] = uuidConstraint

	return m
}()

// constraintSet resolves constraint names for one table.
type constraintSet map[string]Constraint

func newConstraintSet(extra map[string]Constraint) constraintSet {
	set := make(constraintSet, len(builtinConstraints)+len(extra))
	for name, c := range builtinConstraints {
		set[name] = c
	}
	for name, c := range extra {
		set[name] = c
	}
	return set
}

func (s constraintSet) lookup(name string) (Constraint, bool) {
	c, ok := s[name]
	return c, ok
}
