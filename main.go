// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/AlexKsun/celebration/catalog"
	"github.com/AlexKsun/celebration/cliparse"
	"github.com/AlexKsun/celebration/db"
	"github.com/AlexKsun/celebration/envconfig"
	"github.com/AlexKsun/celebration/kvstore"
	"github.com/AlexKsun/celebration/middleware"
	"github.com/AlexKsun/celebration/router"
)

// buildEnv is injected at build time:
//
//	go build -ldflags "-X main.buildEnv=GAS_URL=https://...;AUTH_PASSWORD=..."
var buildEnv string

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database and create the schema
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database setup failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Resolve runtime configuration
	resolver := envconfig.New(envconfig.Options{
		Build:       envconfig.BuildLayer(buildEnv, os.LookupEnv),
		EnvFile:     cfg.EnvFile,
		Development: cfg.Development,
		Overrides:   kvstore.NewSQL(dbConn, kvstore.AdminNamespace, kvstore.DefaultQuota),
	})
	resolver.Load(context.Background())
	if resolver.ConsoleLog() {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	if endpoint, err := resolver.EndpointURL(); err != nil {
		slog.Warn("submissions disabled until an endpoint is configured", "error", err)
	} else {
		slog.Info("Remote endpoint resolved", "endpoint", endpoint, "override", resolver.HasOverride())
	}

	// Create router
	loader := catalog.NewLoader(cfg.CatalogSource, nil)
	mux, err := router.NewRouter(dbConn, cfg, resolver, loader, router.Options{})
	if err != nil {
		slog.Error("router setup failed", "error", err)
		os.Exit(1)
	}

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "development", cfg.Development, "catalog", cfg.CatalogSource)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
