package routeconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	nerrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/navigation"
	"github.com/vango-dev/navcore/pkg/router"
)

// Format is a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file name or object key.
// Anything but ".json" is read as YAML.
func FormatOf(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Document is a declarative route configuration.
type Document struct {
	// MaxRedirects is the redirect hop bound (default: router.DefaultMaxRedirects).
	MaxRedirects int `yaml:"maxRedirects,omitempty" json:"maxRedirects,omitempty"`

	// Fallback names the route shown when nothing matches.
	Fallback string `yaml:"fallback,omitempty" json:"fallback,omitempty"`

	// Constraints declares extra parameter constraints as regular expressions.
	Constraints map[string]string `yaml:"constraints,omitempty" json:"constraints,omitempty"`

	Routes []RouteSpec `yaml:"routes" json:"routes"`

	// source describes where the document was loaded from.
	source string
}

// RouteSpec is one route entry.
type RouteSpec struct {
	Path      string            `yaml:"path" json:"path"`
	Name      string            `yaml:"name,omitempty" json:"name,omitempty"`
	Component string            `yaml:"component,omitempty" json:"component,omitempty"`
	Redirect  string            `yaml:"redirect,omitempty" json:"redirect,omitempty"`
	Props     map[string]any    `yaml:"props,omitempty" json:"props,omitempty"`
	Meta      map[string]string `yaml:"meta,omitempty" json:"meta,omitempty"`
}

// Registry maps component names to component handles.
type Registry map[string]router.Component

// Parse decodes a document. Unknown fields are rejected.
func Parse(data []byte, format Format) (*Document, error) {
	doc := &Document{}
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(doc)
	case FormatYAML, "":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(doc)
		if err == io.EOF {
			err = nil
		}
	default:
		return nil, nerrors.New("N302").WithDetailf("unsupported format %q", format)
	}
	if err != nil {
		return nil, nerrors.New("N302").
			WithDetail(err.Error()).
			WithSuggestion(fmt.Sprintf("Check that the document is valid %s", strings.ToUpper(string(formatOrYAML(format))))).
			Wrap(err)
	}
	return doc, nil
}

func formatOrYAML(f Format) Format {
	if f == "" {
		return FormatYAML
	}
	return f
}

// Load reads and decodes a document from r.
func Load(r io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nerrors.New("N302").Wrap(err)
	}
	return Parse(data, format)
}

// LoadFile reads a document from path. The format follows the extension.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nerrors.New("N301").
				WithSource(path).
				WithDetail("No route configuration found at " + path).
				WithSuggestion("Pass the routes file with --routes (-c) or set NAVCORE_ROUTES")
		}
		return nil, nerrors.New("N302").WithSource(path).Wrap(err)
	}

	doc, err := Parse(data, FormatOf(path))
	if err != nil {
		if e, ok := err.(*nerrors.Error); ok {
			e.WithSource(path)
		}
		return nil, err
	}
	doc.source = path
	return doc, nil
}

// Source returns where the document was loaded from, if known.
func (d *Document) Source() string {
	return d.source
}

// Validate checks document-level settings. Route problems are reported by
// Build, which validates the whole table at once.
func (d *Document) Validate() error {
	if d.MaxRedirects < 0 {
		return d.invalid("maxRedirects must not be negative, got %d", d.MaxRedirects)
	}
	for _, name := range sortedKeys(d.Constraints) {
		if _, err := compileConstraint(d.Constraints[name]); err != nil {
			return d.invalid("constraint %q: %v", name, err)
		}
	}
	if d.Fallback != "" {
		found := false
		for _, r := range d.Routes {
			if r.Name == d.Fallback {
				found = true
				break
			}
		}
		if !found {
			return d.invalid("fallback %q does not name a route", d.Fallback)
		}
	}
	return nil
}

func (d *Document) invalid(format string, args ...any) error {
	e := nerrors.New("N304").WithDetailf(format, args...)
	if d.source != "" {
		e.WithSource(d.source)
	}
	return e
}

// Definitions binds component names through reg and returns the route
// definitions. A nil registry binds each component to its own name.
// Every unknown component is reported.
func (d *Document) Definitions(reg Registry) ([]router.Route, error) {
	routes := make([]router.Route, 0, len(d.Routes))
	var unknown []error

	for i, spec := range d.Routes {
		r := router.Route{
			Path:     spec.Path,
			Name:     spec.Name,
			Redirect: spec.Redirect,
			Props:    router.Props(spec.Props),
			Meta:     spec.Meta,
		}
		if spec.Component != "" {
			if reg == nil {
				r.Component = spec.Component
			} else if c, ok := reg[spec.Component]; ok {
				r.Component = c
			} else {
				unknown = append(unknown, nerrors.New("N303").
					WithSource(fmt.Sprintf("routes[%d] %s", i, spec.Path)).
					WithDetailf("component %q is not registered", spec.Component))
				continue
			}
		}
		routes = append(routes, r)
	}

	if len(unknown) > 0 {
		return nil, componentErrors(unknown)
	}
	return routes, nil
}

// TableOptions returns the router options the document declares.
func (d *Document) TableOptions() ([]router.TableOption, error) {
	var opts []router.TableOption
	if d.MaxRedirects > 0 {
		opts = append(opts, router.WithRedirectLimit(d.MaxRedirects))
	}
	for _, name := range sortedKeys(d.Constraints) {
		re, err := compileConstraint(d.Constraints[name])
		if err != nil {
			return nil, d.invalid("constraint %q: %v", name, err)
		}
		opts = append(opts, router.WithConstraint(name, re))
	}
	return opts, nil
}

// NavigationOptions returns the controller options the document declares.
func (d *Document) NavigationOptions() []navigation.Option {
	if d.Fallback == "" {
		return nil
	}
	return []navigation.Option{navigation.WithFallback(d.Fallback)}
}

// Build validates the document and returns its route table.
func (d *Document) Build(reg Registry) (*router.Table, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	routes, err := d.Definitions(reg)
	if err != nil {
		return nil, err
	}
	opts, err := d.TableOptions()
	if err != nil {
		return nil, err
	}
	return router.NewTable(routes, opts...)
}

// Encode writes the document in format.
func (d *Document) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("routeconfig: unsupported format %q", format)
	}
}

func compileConstraint(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}
	return regexp.Compile("^(?:" + expr + ")$")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// componentErrors reports every unknown component at once.
type componentErrors []error

func (e componentErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d unknown components:\n  %s", len(e), strings.Join(msgs, "\n  "))
}

func (e componentErrors) Unwrap() []error { return e }
