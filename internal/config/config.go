package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	nerrors "github.com/vango-dev/navcore/internal/errors"
)

const (
	// ConfigFileName is the name of the settings file.
	ConfigFileName = "navcore.yaml"

	// DefaultAddr is the listen address of the serve command.
	DefaultAddr = ":8080"

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultRoutes is the route configuration path, relative to the settings file.
	DefaultRoutes = "routes.yaml"
)

// Environment variables that override file settings.
const (
	EnvAddr     = "NAVCORE_ADDR"
	EnvLogLevel = "NAVCORE_LOG_LEVEL"
	EnvRoutes   = "NAVCORE_ROUTES"
)

// Config represents navcore.yaml.
type Config struct {
	// Addr is the HTTP listen address for serve.
	Addr string `yaml:"addr,omitempty"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"logLevel,omitempty"`

	// Routes is a file path or an s3://bucket/key URI.
	Routes string `yaml:"routes,omitempty"`

	// Metrics enables the /metrics endpoint.
	Metrics *bool `yaml:"metrics,omitempty"`

	// WS tunes the browser bridge.
	WS WSConfig `yaml:"ws,omitempty"`

	configPath string
}

// WSConfig holds websocket host timings.
type WSConfig struct {
	ReadTimeout       time.Duration `yaml:"readTimeout,omitempty"`
	WriteTimeout      time.Duration `yaml:"writeTimeout,omitempty"`
	HeartbeatInterval time.Duration `yaml:"heartbeatInterval,omitempty"`
	MaxMessageSize    int64         `yaml:"maxMessageSize,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads navcore.yaml from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads settings from the given path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nerrors.New("N301").
				WithSource(path).
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or pass --routes explicitly")
		}
		return nil, nerrors.New("N302").WithSource(path).Wrap(err)
	}

	cfg, err := Parse(data)
	if err != nil {
		if ne, ok := err.(*nerrors.Error); ok {
			ne.WithSource(path)
		}
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes settings from YAML. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, nerrors.New("N302").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid YAML")
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Path returns the path the settings were loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the settings file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Routes == "" {
		c.Routes = DefaultRoutes
	}
	if c.Metrics == nil {
		enabled := true
		c.Metrics = &enabled
	}
	if c.WS.ReadTimeout == 0 {
		c.WS.ReadTimeout = 60 * time.Second
	}
	if c.WS.WriteTimeout == 0 {
		c.WS.WriteTimeout = 10 * time.Second
	}
	if c.WS.HeartbeatInterval == 0 {
		c.WS.HeartbeatInterval = 30 * time.Second
	}
	if c.WS.MaxMessageSize == 0 {
		c.WS.MaxMessageSize = 16 * 1024
	}
}

// ApplyEnv loads the given dotenv files, if present, and applies the
// NAVCORE_* overrides. With no files it looks for .env in the working
// directory. Variables already set in the process win over dotenv values.
func (c *Config) ApplyEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nerrors.New("N302").WithSource(f).Wrap(err)
		}
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvRoutes); v != "" {
		c.Routes = v
	}
	return nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.WS.ReadTimeout < 0 || c.WS.WriteTimeout < 0 || c.WS.HeartbeatInterval < 0 {
		return nerrors.New("N304").
			WithSource(c.configPath).
			WithDetail("ws timeouts must not be negative")
	}
	if c.WS.HeartbeatInterval >= c.WS.ReadTimeout {
		return nerrors.New("N304").
			WithSource(c.configPath).
			WithDetailf("ws.heartbeatInterval (%s) must be shorter than ws.readTimeout (%s)",
				c.WS.HeartbeatInterval, c.WS.ReadTimeout)
	}
	if c.WS.MaxMessageSize < 0 {
		return nerrors.New("N304").
			WithSource(c.configPath).
			WithDetail("ws.maxMessageSize must not be negative")
	}
	return nil
}

// MetricsEnabled reports whether /metrics should be served.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics == nil || *c.Metrics
}

// RoutesPath returns the route configuration location. Relative file
// paths are resolved against the settings directory; s3:// URIs are
// returned unchanged.
func (c *Config) RoutesPath() string {
	if strings.HasPrefix(c.Routes, "s3://") || filepath.IsAbs(c.Routes) || c.Dir() == "" {
		return c.Routes
	}
	return filepath.Join(c.Dir(), c.Routes)
}

// Level returns the configured slog level. Invalid levels fall back to info.
func (c *Config) Level() slog.Level {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ParseLevel parses a log level name.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, nerrors.New("N304").
		WithDetailf("unknown log level %q", s).
		WithSuggestion("Use one of debug, info, warn, error")
}

// Exists reports whether a settings file exists in dir.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up from startDir to the directory holding navcore.yaml.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nerrors.New("N301").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
