package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/vango-dev/navcore/internal/config"
	"github.com/vango-dev/navcore/pkg/routeconfig"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	settings string
	routes   string
	logLevel string
}

func (o *globalOptions) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.settings, "settings", "", "Path to navcore.yaml (default: searched from the working directory)")
	flags.StringVarP(&o.routes, "routes", "c", "", "Route configuration file or s3://bucket/key")
	flags.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// load resolves settings: navcore.yaml, then .env and NAVCORE_*
// variables, then flags.
func (o *globalOptions) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case o.settings != "":
		cfg, err = config.LoadFile(o.settings)
	default:
		cfg = config.New()
		if wd, wdErr := os.Getwd(); wdErr == nil {
			if root, findErr := config.FindProjectRoot(wd); findErr == nil {
				cfg, err = config.Load(root)
			}
		}
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if o.routes != "" {
		// Flags are relative to the working directory, not the settings file.
		cfg.Routes = absPath(o.routes)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns a text logger at the configured level.
func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
}

// loadDocument reads the route configuration from disk or S3.
func loadDocument(ctx context.Context, location string) (*routeconfig.Document, error) {
	if bucket, key, ok := routeconfig.ParseS3URI(location); ok {
		return routeconfig.LoadS3(ctx, newS3Client(), bucket, key)
	}
	return routeconfig.LoadFile(location)
}

// newS3Client builds a client from the standard AWS_* variables.
// AWS_ENDPOINT_URL_S3 points it at an S3-compatible store.
func newS3Client() *s3.Client {
	region := firstNonEmpty(os.Getenv("AWS_REGION"), os.Getenv("AWS_DEFAULT_REGION"), "us-east-1")

	opts := s3.Options{Region: region}
	if id := os.Getenv("AWS_ACCESS_KEY_ID"); id != "" {
		creds := aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "Environment",
		}
		opts.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) { return creds, nil }))
	} else {
		opts.Credentials = aws.AnonymousCredentials{}
	}
	if endpoint := os.Getenv("AWS_ENDPOINT_URL_S3"); endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func absPath(p string) string {
	if _, _, ok := routeconfig.ParseS3URI(p); ok {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
