package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navcore/internal/config"
	nerrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/routeconfig"
	"github.com/vango-dev/navcore/pkg/router"
)

// project is a loaded route configuration and its table.
type project struct {
	cfg   *config.Config
	doc   *routeconfig.Document
	table *router.Table
}

func loadProject(ctx context.Context, opts *globalOptions) (*project, error) {
	cfg, err := opts.load()
	if err != nil {
		return nil, err
	}
	doc, err := loadDocument(ctx, cfg.RoutesPath())
	if err != nil {
		return nil, err
	}
	table, err := doc.Build(nil)
	if err != nil {
		return nil, err
	}
	return &project{cfg: cfg, doc: doc, table: table}, nil
}

func routesCmd(opts *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Check and list the route table",
		Long: `Load the route configuration, check it, and list its routes in
registration order.

With --output the checked configuration is written back as YAML or JSON,
which also converts between the two formats.

Examples:
  navcore routes -c routes.yaml
  navcore routes -c s3://config/routes.yaml -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd.Context(), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch strings.ToLower(output) {
			case "":
				printRoutes(out, p)
				return nil
			case "yaml", "yml":
				return p.doc.Encode(out, routeconfig.FormatYAML)
			case "json":
				return p.doc.Encode(out, routeconfig.FormatJSON)
			default:
				return nerrors.New("N304").
					WithDetailf("unknown output format %q", output).
					WithSuggestion("Use --output yaml or --output json")
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the configuration as yaml or json")

	return cmd
}

func printRoutes(w io.Writer, p *project) {
	routes := p.table.Routes()
	success(w, "%d routes from %s", len(routes), p.doc.Source())
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tPATH\tTARGET")
	for _, r := range routes {
		name := r.Name
		if name == "" {
			name = faint("-")
		} else {
			name = cyan(name)
		}
		target := fmt.Sprint(r.Component)
		if r.IsRedirect() {
			target = yellow("→ " + r.Redirect)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", name, r.Path, target)
	}
	tw.Flush()

	fmt.Fprintln(w)
	if p.doc.Fallback != "" {
		info(w, "fallback: %s", p.doc.Fallback)
	}
	info(w, "max redirects: %d", router.NewMatcher(p.table).MaxRedirects())
}
