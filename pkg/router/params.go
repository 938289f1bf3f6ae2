package router

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// kindWildcard marks a wildcard parameter in ActiveRoute.kinds.
const kindWildcard = "*"

// paramKinds maps each parameter of p to the constraint it was matched
// with: "" when unconstrained, kindWildcard for a wildcard tail.
func paramKinds(p *pattern) map[string]string {
	kinds := make(map[string]string)
	for _, s := range p.segments {
		switch s.kind {
		case segParam:
			kinds[s.name] = s.constraint
		case segWildcard:
			kinds[s.name] = kindWildcard
		}
	}
	return kinds
}

// typedParam converts value to the Go type its constraint guarantees.
// Custom and unconstrained parameters stay strings.
func typedParam(kind, value string) (any, error) {
	switch kind {
	case "int":
		return strconv.ParseInt(value, 10, 64)
	case "uint":
		return strconv.ParseUint(value, 10, 64)
	case "float":
		return strconv.ParseFloat(value, 64)
	case "uuid":
		return uuid.Parse(value)
	case "date":
		return time.Parse(time.DateOnly, value)
	case kindWildcard:
		if value == "" {
			return []string(nil), nil
		}
		return strings.Split(value, "/"), nil
	default:
		return value, nil
	}
}

// Values returns the parameters converted by their declared constraints:
//
//	:id:int     int64
//	:n:uint     uint64
//	:x:float    float64
//	:ref:uuid   uuid.UUID
//	:day:date   time.Time
//	*rest       []string
//
// Every other parameter, including the fallback's "location", is a string.
func (a *ActiveRoute) Values() (map[string]any, error) {
	out := make(map[string]any, len(a.Params))
	for name, raw := range a.Params {
		v, err := typedParam(a.kinds[name], raw)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// Bind fills the `param`-tagged fields of the struct target points to.
//
//	var p struct {
//	    Category string    `param:"category"`
//	    ID       int       `param:"id"`   // from :id:int
//	    Day      time.Time `param:"day"`  // from :day:date
//	    Rest     []string  `param:"rest"` // from *rest
//	}
//
// A string field takes any parameter verbatim. Other fields take the type
// the parameter's constraint produces (see Values); integer and float
// fields may be narrower as long as the value fits. Tagging a parameter
// the route does not declare is an error.
func (a *ActiveRoute) Bind(target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind target must be a non-nil pointer to struct, got %T", target)
	}
	v = v.Elem()

	for i := 0; i < v.NumField(); i++ {
		field := v.Type().Field(i)
		name := field.Tag.Get("param")
		if name == "" || !field.IsExported() {
			continue
		}

		raw, ok := a.Params[name]
		if !ok {
			if _, declared := a.kinds[name]; declared {
				continue
			}
			return fmt.Errorf("field %s: route %q has no parameter %q", field.Name, a.Route.Path, name)
		}

		if err := assignParam(v.Field(i), a.kinds[name], raw); err != nil {
			return fmt.Errorf("field %s: param %q: %w", field.Name, name, err)
		}
	}
	return nil
}

func assignParam(dst reflect.Value, kind, raw string) error {
	if dst.Kind() == reflect.String {
		dst.SetString(raw)
		return nil
	}

	typed, err := typedParam(kind, raw)
	if err != nil {
		return err
	}
	src := reflect.ValueOf(typed)

	switch {
	case src.Type() == dst.Type():
		dst.Set(src)
	case src.Kind() == reflect.Int64 && isInt(dst.Kind()):
		if dst.OverflowInt(src.Int()) {
			return fmt.Errorf("%d overflows %s", src.Int(), dst.Type())
		}
		dst.SetInt(src.Int())
	case src.Kind() == reflect.Uint64 && isUint(dst.Kind()):
		if dst.OverflowUint(src.Uint()) {
			return fmt.Errorf("%d overflows %s", src.Uint(), dst.Type())
		}
		dst.SetUint(src.Uint())
	case src.Kind() == reflect.Float64 && isFloat(dst.Kind()):
		if dst.OverflowFloat(src.Float()) {
			return fmt.Errorf("%g overflows %s", src.Float(), dst.Type())
		}
		dst.SetFloat(src.Float())
	default:
		return fmt.Errorf("%s cannot be stored in a %s field", describeKind(kind), dst.Type())
	}
	return nil
}

func describeKind(kind string) string {
	switch kind {
	case "":
		return "unconstrained parameter"
	case kindWildcard:
		return "wildcard parameter"
	default:
		return kind + " parameter"
	}
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}
