package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	nerrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/history"
	"github.com/vango-dev/navcore/pkg/middleware"
	"github.com/vango-dev/navcore/pkg/navigation"
	"github.com/vango-dev/navcore/pkg/routepath"
	"github.com/vango-dev/navcore/pkg/router"
)

//go:embed shell.html
var shellHTML string

var shellTemplate = template.Must(template.New("shell").Parse(shellHTML))

// socketPath is also hard-coded in shell.html.
const socketPath = "/ws"

func serveCmd(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a browser shell driven by the navigation controller",
		Long: `Serve a shell page whose address bar is managed over a WebSocket.

Each connected tab gets its own navigation controller. The tab reports its
location and popstate events; the server answers with history writes and
the active route.

Examples:
  navcore serve -c routes.yaml
  navcore serve -c routes.yaml --addr :9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if addr != "" {
				p.cfg.Addr = addr
			}
			return runServe(p)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from navcore.yaml)")

	return cmd
}

func runServe(p *project) error {
	logger := newLogger(p.cfg)
	b := newBridge(p, logger)

	srv := &http.Server{
		Addr:              p.cfg.Addr,
		Handler:           b.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "address", p.cfg.Addr, "routes", p.doc.Source())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-shutdown:
		logger.Info("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Shutdown()
		return srv.Shutdown(ctx)
	}
}

// bridge serves the shell page and runs one controller per connected tab.
type bridge struct {
	matcher    *router.Matcher
	navOptions []navigation.Option
	links      []shellLink
	wsConfig   history.WSConfig
	metrics    bool
	upgrader   websocket.Upgrader
	logger     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

type shellLink struct {
	Href  string
	Label string
}

func newBridge(p *project, logger *slog.Logger) *bridge {
	ctx, cancel := context.WithCancel(context.Background())

	navOptions := []navigation.Option{
		navigation.WithLogger(logger),
		navigation.WithMiddleware(
			middleware.Recover(logger),
			middleware.Logging(logger),
			middleware.Prometheus(),
			middleware.OpenTelemetry(),
		),
	}
	navOptions = append(navOptions, p.doc.NavigationOptions()...)

	return &bridge{
		matcher:    router.NewMatcher(p.table, router.WithLogger(logger)),
		navOptions: navOptions,
		links:      shellLinks(p.table),
		wsConfig: history.WSConfig{
			ReadTimeout:       p.cfg.WS.ReadTimeout,
			WriteTimeout:      p.cfg.WS.WriteTimeout,
			HeartbeatInterval: p.cfg.WS.HeartbeatInterval,
			MaxMessageSize:    p.cfg.WS.MaxMessageSize,
			Logger:            logger,
		},
		metrics: p.cfg.MetricsEnabled(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// shellLinks lists the named routes that need no parameters.
func shellLinks(table *router.Table) []shellLink {
	var links []shellLink
	for _, r := range table.Routes() {
		if r.Name == "" || strings.ContainsAny(r.Path, ":*") {
			continue
		}
		links = append(links, shellLink{Href: "#" + r.Path, Label: r.Name})
	}
	return links
}

// Handler returns the HTTP routes.
func (b *bridge) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	if b.logger.Enabled(context.Background(), slog.LevelDebug) {
		r.Use(chimw.Logger)
	}

	r.Get("/", b.serveShell)
	r.Get(socketPath, b.serveSocket)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if b.metrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	return r
}

// Shutdown closes every connected tab.
func (b *bridge) Shutdown() {
	b.cancel()
}

func (b *bridge) serveShell(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct{ Links []shellLink }{b.links}
	if err := shellTemplate.Execute(w, data); err != nil {
		b.logger.Error("shell render failed", "error", err)
	}
}

func (b *bridge) serveSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	logger := b.logger.With("request_id", chimw.GetReqID(r.Context()))
	cfg := b.wsConfig
	cfg.Logger = logger
	host := history.NewWSHost(conn, cfg)

	ctx, cancel := context.WithCancel(b.ctx)
	defer cancel()
	go host.Run(ctx)

	select {
	case <-host.Hello():
	case <-host.Done():
		return
	case <-time.After(cfg.ReadTimeout):
		logger.Warn("no hello from tab")
		host.Close()
		return
	}

	middleware.RecordHostConnect()
	defer middleware.RecordHostDisconnect()

	ctrl := navigation.New(b.matcher, history.New(host, logger), b.navOptions...)
	defer ctrl.Close()

	unsubscribe := ctrl.Subscribe(func(ev navigation.Event) {
		if nerrors.HasCode(ev.Err, "N204") {
			middleware.RecordHistoryError("write")
		}
		if err := host.Render(renderFrame(ev)); err != nil {
			logger.Debug("render failed", "error", err)
		}
	})
	defer unsubscribe()

	if _, err := ctrl.Start(ctx, ""); err != nil {
		logger.Debug("initial navigation failed", "location", host.Location(), "error", err)
	}

	<-host.Done()
}

// renderFrame describes a controller event for the shell page.
func renderFrame(ev navigation.Event) history.Frame {
	if ev.Kind == navigation.EventError || ev.Active == nil {
		f := history.Frame{Op: history.OpError, Location: ev.Location}
		if ev.Err != nil {
			f.Error = ev.Err.Error()
		}
		return f
	}
	active := ev.Active
	f := history.Frame{
		Op:        history.OpActive,
		Location:  active.Fragment(),
		Route:     active.Name(),
		Component: fmt.Sprint(active.Component()),
		Params:    active.Params,
		Props:     map[string]any(active.Props),
	}
	if ev.Fallback {
		// The address bar keeps what the user asked for.
		f.Location = routepath.Fragment(ev.Location)
		if ev.Err != nil {
			f.Error = ev.Err.Error()
		}
	}
	return f
}
