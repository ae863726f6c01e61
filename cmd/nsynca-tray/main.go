// Package main is the entry point for the nsynca desktop tray.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nsynca/nsynca/internal/config"
	"github.com/nsynca/nsynca/internal/logging"
	"github.com/nsynca/nsynca/internal/orchestrator"
	"github.com/nsynca/nsynca/internal/telemetry"
	"github.com/nsynca/nsynca/internal/tray"
)

func main() {
	envFile := flag.String("env-file", config.EnvFileName, "path of the .env file holding secrets")
	logLevel := flag.String("log-level", "INFO", "log level: DEBUG, INFO, WARNING, ERROR, CRITICAL")
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		logging.Setup(slog.LevelInfo)
		slog.Error("Invalid flag", "err", err)
		os.Exit(2)
	}
	logging.Setup(level)

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	logDir := cfg.LogsDir()
	if err := config.EnsureDir(logDir); err != nil {
		slog.Error("Failed to create log directory", "dir", logDir, "err", err)
		os.Exit(1)
	}
	closer, err := logging.SetupFile(filepath.Join(logDir, config.AppLogFileName), level)
	if err != nil {
		slog.Error("Failed to open log file", "err", err)
		os.Exit(1)
	}
	defer closer.Close()

	tel, changed := telemetry.New(&cfg.Settings.Telemetry)
	if changed {
		if err := config.SaveSettings(cfg.Settings); err != nil {
			slog.Warn("Failed to save telemetry install id", "err", err)
		}
	}
	defer tel.Close()

	store := config.NewHistoryStore(logDir)
	orch := orchestrator.NewFromConfig(cfg, store, tel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Tray started", "logs", logDir)
	tray.Run(ctx, orch, store)
}
