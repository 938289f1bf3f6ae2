package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	nerrors "github.com/vango-dev/navcore/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		nerrors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "navcore",
		Short: "Route tables, resolution and a history bridge for single-page apps",
		Long: `navcore resolves addressable locations ("#/users/42") to routes.

It loads a declarative route configuration (YAML or JSON, from disk or
S3), checks it, resolves locations against it, and serves a browser shell
whose history is driven over a WebSocket by a navigation controller.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	opts.register(rootCmd)

	rootCmd.AddCommand(
		routesCmd(opts),
		resolveCmd(opts),
		serveCmd(opts),
		versionCmd(),
	)

	return rootCmd
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	redX   = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	faint  = color.New(color.FgHiBlack).SprintFunc()
)

// success prints a success line.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

// info prints an indented detail line.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "    %s\n", fmt.Sprintf(format, args...))
}

// failure prints a failure line.
func failure(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", redX("✗"), fmt.Sprintf(format, args...))
}
