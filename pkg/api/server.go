package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pcbshop/boardopts/pkg/catalog"
	"github.com/pcbshop/boardopts/pkg/logging"
	"github.com/pcbshop/boardopts/pkg/server"
	"github.com/pcbshop/boardopts/pkg/store"
)

const (
	name           = "pcbshopd"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/pcbshop/boardopts/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Serve starts the API server and blocks until SIGINT or SIGTERM.
// Configuration comes from server.DefaultConfig and its environment overrides.
func Serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := server.DefaultConfig()
	logging.SetDefaultStructuredLoggerWithLevel(name, version, cfg.LogLevel)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	s, err := NewServer(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize server", "error", err)
		return err
	}

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}

// NewServer opens the configured option store and returns a server with the
// catalog routes registered.
func NewServer(ctx context.Context, cfg *server.Config) (*server.Server, error) {
	st, err := store.Open(ctx, cfg.OptionsSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open option store %q: %w", cfg.OptionsSource, err)
	}

	c := catalog.New(st, catalog.WithVendor(cfg.Vendor))
	slog.Info("option catalog ready",
		"source", sourceName(cfg.OptionsSource),
		"vendor", c.Vendor())

	return server.New(
		server.WithName(name),
		server.WithVersion(version),
		server.WithConfig(cfg),
		server.WithHandler(c.Handlers()),
	), nil
}

func sourceName(uri string) string {
	if uri == "" {
		return store.SourceEmbedded
	}
	return uri
}
