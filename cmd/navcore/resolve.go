package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	nerrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/router"
)

func resolveCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve LOCATION...",
		Short: "Resolve locations against the route table",
		Long: `Resolve each location the way the navigation controller would,
following redirects, and print the route it lands on.

Examples:
  navcore resolve -c routes.yaml '#/users/42' /publish-center
  navcore resolve '#/search?q=go'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd.Context(), opts)
			if err != nil {
				return err
			}
			matcher := router.NewMatcher(p.table, router.WithLogger(newLogger(p.cfg)))

			out := cmd.OutOrStdout()
			failed := 0
			for _, loc := range args {
				if !printResolution(out, matcher, p.doc.Fallback, loc) {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d locations did not resolve", failed, len(args))
			}
			return nil
		},
	}

	return cmd
}

// printResolution prints the outcome for one location and reports
// whether it resolved.
func printResolution(w io.Writer, m *router.Matcher, fallback, loc string) bool {
	active, err := m.Resolve(loc)
	if err != nil {
		failure(w, "%s", loc)
		var e *nerrors.Error
		if errors.As(err, &e) {
			info(w, "%s %s", e.Code, err.Error())
		} else {
			info(w, "%s", err.Error())
		}
		if fallback != "" && errors.Is(err, router.ErrNoMatch) {
			info(w, "fallback: %s", cyan(fallback))
		}
		return false
	}

	name := active.Name()
	if name == "" {
		name = "(unnamed)"
	}
	success(w, "%s → %s %s", loc, cyan(name), faint(fmt.Sprint(active.Component())))
	info(w, "location: %s", active.Fragment())
	if len(active.Params) > 0 {
		info(w, "params: %s", formatMap(active.Params))
	}
	if active.Redirected() {
		info(w, "redirected from: %s", yellow(strings.Join(active.RedirectedFrom, " → ")))
	}
	return true
}

func formatMap(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + m[k]
	}
	return strings.Join(parts, " ")
}
