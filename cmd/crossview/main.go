package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	corecfg "github.com/crossview-lab/project-crossview/internal/core/config"
	"github.com/crossview-lab/project-crossview/internal/dataset"
	"github.com/crossview-lab/project-crossview/internal/explore"
	"github.com/crossview-lab/project-crossview/internal/server"
)

func main() {
	configPath := flag.String("config", "crossview.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	// 2. Load and normalize the dataset (once per process)
	rows, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		slog.Error("Failed to load dataset", "error", err)
		os.Exit(1)
	}
	ds, stats := dataset.Normalize(rows)
	if ds.Len() == 0 {
		slog.Error("Dataset has no usable rows after normalization", "dropped", stats.Dropped)
		os.Exit(1)
	}

	// 3. Load the state registry
	registry, err := dataset.LoadStateRegistry()
	if err != nil {
		slog.Error("Failed to load state registry", "error", err)
		os.Exit(1)
	}

	// 4. Initialize Exploration (filter/aggregate/sample pipeline)
	exploreSvc := explore.NewService(ds, registry, explore.Options{
		CacheSize:         cfg.Explore.CacheSize,
		MaxTopN:           cfg.Explore.MaxTopN,
		MaxSampleRows:     cfg.Explore.MaxSampleRows,
		DefaultTopN:       cfg.Explore.DefaultTopN,
		DefaultSampleRows: cfg.Explore.DefaultSampleRows,
	})

	// 5. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), ds, cfg.Server.Mode)
	exploreSvc.RegisterRoutes(srv.Engine)

	// 6. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler → triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
