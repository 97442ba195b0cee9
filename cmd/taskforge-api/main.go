// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/taskforge/taskforge/internal/clients/vectorizer"
	"github.com/taskforge/taskforge/internal/logging"
	"github.com/taskforge/taskforge/internal/server"
	"github.com/taskforge/taskforge/internal/storage"
	"github.com/taskforge/taskforge/internal/taskforge-api/config"
	"github.com/taskforge/taskforge/internal/taskforge-api/events"
	"github.com/taskforge/taskforge/internal/taskforge-api/handlers"
	"github.com/taskforge/taskforge/internal/taskforge-api/metrics"
	"github.com/taskforge/taskforge/internal/taskforge-api/services"
	"github.com/taskforge/taskforge/internal/taskforge-api/tracking"
)

func main() {
	flags := pflag.NewFlagSet("taskforge-api", pflag.ExitOnError)
	configPath := flags.String("config", "", "path to the YAML config file")
	flags.String("host", "", "listen address, overrides config")
	flags.Int("port", 0, "HTTP server port, overrides config")
	flags.String("db-path", "", "SQLite database path, overrides config")
	_ = flags.Parse(os.Args[1:])

	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(*configPath, flags, bootLogger)
	if err != nil {
		bootLogger.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	baseLogger := logging.New(cfg.Logging.ToLoggingConfig())
	slog.SetDefault(baseLogger)

	// Create shutdown context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := storage.Open(cfg.Storage.DatabasePath, baseLogger)
	if err != nil {
		baseLogger.Error("Failed to open storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	tracker := tracking.New(baseLogger)

	var vec *vectorizer.Client
	if cfg.Vectorizer.AutoIndex && cfg.Vectorizer.Endpoint != "" {
		vec = vectorizer.New(cfg.Vectorizer.Endpoint, cfg.Vectorizer.Collection, baseLogger)
	}

	hub := events.NewHub(baseLogger)
	go hub.Run()

	var m *metrics.Metrics
	if cfg.Monitoring.MetricsEnabled {
		m = metrics.New()
	}

	svcs, err := services.NewServices(store, tracker, vec, hub, m, baseLogger)
	if err != nil {
		baseLogger.Error("Failed to initialize services", slog.Any("error", err))
		os.Exit(1)
	}

	// Execution settings are accepted for config compatibility; tasks are
	// records here, nothing spawns processes.
	baseLogger.Info("Queue configured",
		slog.String("database", cfg.Storage.DatabasePath),
		slog.Int("max_concurrent", cfg.Execution.MaxConcurrent),
		slog.Duration("default_timeout", cfg.Execution.DefaultTimeout))

	// A non-zero metrics port moves /metrics onto a dedicated listener.
	handlerMetrics := m
	if m != nil && cfg.Monitoring.MetricsPort != 0 {
		handlerMetrics = nil
		go serveMetrics(ctx, cfg.Monitoring.MetricsPort, m, baseLogger)
	}

	handler := handlers.New(svcs, hub, handlerMetrics, baseLogger.With("component", "handlers"))

	srv := server.New(cfg.Server.ToServerConfig(), handler.Routes(), baseLogger)
	if err := srv.Run(ctx); err != nil {
		baseLogger.Error("Server error", slog.Any("error", err))
		os.Exit(1)
	}
}

func serveMetrics(ctx context.Context, port int, m *metrics.Metrics, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())

	srv := server.New(server.Config{Addr: fmt.Sprintf(":%d", port)}, mux, logger.With("component", "metrics"))
	if err := srv.Run(ctx); err != nil {
		logger.Error("Metrics server error", slog.Any("error", err))
	}
}
