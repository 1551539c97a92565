package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/loansplit/loansplit/internal/api"
	"github.com/loansplit/loansplit/internal/auth"
	"github.com/loansplit/loansplit/internal/config"
	"github.com/loansplit/loansplit/internal/metrics"
	"github.com/loansplit/loansplit/internal/storage/memory"
	"github.com/loansplit/loansplit/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel)

	registry := prometheus.NewRegistry()
	opts := api.Options{
		Metrics:  metrics.New(registry),
		Registry: registry,
	}
	if cfg.AuthSecret != "" {
		opts.JWT = auth.NewJWTManager(cfg.AuthSecret, cfg.TokenTTL)
		opts.AdminPasswordHash = cfg.AdminPasswordHash
		slog.Info("Bearer-token auth enabled", "token_ttl", cfg.TokenTTL)
	}

	server := api.NewServer(memory.New(), opts)

	slog.Info("Server starting", "address", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, server.Handler(cfg.CORSOrigins)); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
