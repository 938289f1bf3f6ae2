package router

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vango-dev/navcore/pkg/routepath"
)

type segmentKind int

const (
	segLiteral segmentKind = iota
	segParam
	segWildcard
)

// Specificity of a segment, compared position by position when ranking
// candidates. Higher wins.
const (
	rankWildcard = iota
	rankParam
	rankConstrained
	rankLiteral
)

// segment is one parsed path segment of a pattern.
type segment struct {
	kind segmentKind

	// value is the literal text (segLiteral).
	value string

	// name is the parameter name (segParam, segWildcard).
	name string

	// constraint is the constraint name, empty when unconstrained.
	constraint string
	check      Constraint
}

func (s segment) rank() int {
	switch s.kind {
	case segLiteral:
		return rankLiteral
	case segParam:
		if s.check != nil {
			return rankConstrained
		}
		return rankParam
	default:
		return rankWildcard
	}
}

// key identifies the segment shape; parameter names are not part of it.
func (s segment) key() string {
	switch s.kind {
	case segLiteral:
		return s.value
	case segParam:
		return ":" + s.constraint
	default:
		return "*"
	}
}

// pattern is a parsed route path.
type pattern struct {
	raw      string
	segments []segment
}

// parsePattern parses and canonicalizes a route path.
// Constraint names are resolved against set; a nil set skips resolution.
func parsePattern(raw string, set constraintSet) (*pattern, error) {
	if strings.ContainsAny(raw, "?#") {
		return nil, fmt.Errorf("pattern %q must not contain a query or fragment", raw)
	}
	clean, err := routepath.CleanPath(raw)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", raw, err)
	}

	parts := routepath.SplitSegments(clean)
	p := &pattern{raw: clean, segments: make([]segment, 0, len(parts))}
	seen := make(map[string]bool, len(parts))

	for i, part := range parts {
		var seg segment
		switch {
		case strings.HasPrefix(part, "*"):
			if i != len(parts)-1 {
				return nil, fmt.Errorf("pattern %q: wildcard %q must be the last segment", raw, part)
			}
			seg = segment{kind: segWildcard, name: part[1:]}

		case strings.HasPrefix(part, ":"):
			name, constraint, _ := strings.Cut(part[1:], ":")
			if constraint == unconstrained {
				constraint = ""
			}
			seg = segment{kind: segParam, name: name, constraint: constraint}
			if constraint != "" && set != nil {
				check, ok := set.lookup(constraint)
				if !ok {
					return nil, &unknownConstraintError{pattern: raw, constraint: constraint}
				}
				seg.check = check
			}

		default:
			decoded, err := url.PathUnescape(part)
			if err != nil {
				return nil, fmt.Errorf("pattern %q: %w", raw, err)
			}
			seg = segment{kind: segLiteral, value: decoded}
		}

		if seg.kind != segLiteral {
			if seg.name == "" {
				return nil, fmt.Errorf("pattern %q: missing parameter name in %q", raw, part)
			}
			if seen[seg.name] {
				return nil, fmt.Errorf("pattern %q: duplicate parameter %q", raw, seg.name)
			}
			seen[seg.name] = true
		}
		p.segments = append(p.segments, seg)
	}

	return p, nil
}

type unknownConstraintError struct {
	pattern    string
	constraint string
}

func (e *unknownConstraintError) Error() string {
	return fmt.Sprintf("pattern %q: unknown constraint %q", e.pattern, e.constraint)
}

// key identifies the pattern shape for duplicate detection.
func (p *pattern) key() string {
	keys := make([]string, len(p.segments))
	for i, s := range p.segments {
		keys[i] = s.key()
	}
	return "/" + strings.Join(keys, "/")
}

// ranks returns the specificity vector of the pattern.
func (p *pattern) ranks() []int {
	r := make([]int, len(p.segments))
	for i, s := range p.segments {
		r[i] = s.rank()
	}
	return r
}

// paramNames returns the parameter names in order.
func (p *pattern) paramNames() []string {
	var names []string
	for _, s := range p.segments {
		if s.kind != segLiteral {
			names = append(names, s.name)
		}
	}
	return names
}

// isStatic reports whether the pattern has no parameters.
func (p *pattern) isStatic() bool {
	for _, s := range p.segments {
		if s.kind != segLiteral {
			return false
		}
	}
	return true
}

// extract binds the raw path segments to the pattern's parameters.
// It returns false when a segment fails to decode or violates its constraint.
func (p *pattern) extract(parts []string) (map[string]string, bool) {
	params := make(map[string]string)
	for i, s := range p.segments {
		switch s.kind {
		case segLiteral:
			continue
		case segParam:
			v, err := routepath.DecodeSegment(parts[i], false)
			if err != nil {
				return nil, false
			}
			if s.check != nil && !s.check.MatchString(v) {
				return nil, false
			}
			params[s.name] = v
		case segWildcard:
			rest := parts[i:]
			decoded := make([]string, len(rest))
			for j, part := range rest {
				v, err := routepath.DecodeSegment(part, true)
				if err != nil {
					return nil, false
				}
				decoded[j] = v
			}
			params[s.name] = strings.Join(decoded, "/")
		}
	}
	return params, true
}

// build fills the pattern with params and returns the escaped path.
func (p *pattern) build(params map[string]string) (string, error) {
	if len(p.segments) == 0 {
		return "/", nil
	}
	var sb strings.Builder
	for _, s := range p.segments {
		sb.WriteByte('/')
		switch s.kind {
		case segLiteral:
			sb.WriteString(url.PathEscape(s.value))
		case segParam:
			v, ok := params[s.name]
			if !ok || v == "" {
				return "", fmt.Errorf("missing parameter %q for %q", s.name, p.raw)
			}
			if s.check != nil && !s.check.MatchString(v) {
				return "", fmt.Errorf("parameter %q value %q violates constraint %q", s.name, v, s.constraint)
			}
			sb.WriteString(url.PathEscape(v))
		case segWildcard:
			v, ok := params[s.name]
			v = strings.Trim(v, "/")
			if !ok || v == "" {
				return "", fmt.Errorf("missing parameter %q for %q", s.name, p.raw)
			}
			pieces := strings.Split(v, "/")
			for i, piece := range pieces {
				pieces[i] = url.PathEscape(piece)
			}
			sb.WriteString(strings.Join(pieces, "/"))
		}
	}
	return sb.String(), nil
}
