// Package main is the entry point for the smartscreend client daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/jmylchreest/smartscreen/internal/config"
	"github.com/jmylchreest/smartscreen/internal/daemon"
)

const appName = "smartscreend"

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/smartscreen/smartscreend.toml)")
	noBus := flag.Bool("no-bus", false, "Do not export the control interface on the session bus")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(appName, "version", version)
		os.Exit(0)
	}

	if *configPath == "" {
		*configPath = config.ConfigPath()
	}

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(*configPath, !*noBus, level, logger); err != nil {
		logger.Error("smartscreend failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, bus bool, level *slog.LevelVar, logger *slog.Logger) error {
	logger.Info("starting smartscreend", "version", version, "config", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	lvl, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	level.Set(lvl)

	provider := sdkmetric.NewMeterProvider()
	otel.SetMeterProvider(provider)
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("error shutting down meter provider", "error", err)
		}
	}()

	d, err := daemon.New(cfg, daemon.Options{
		ConfigPath: configPath,
		Bus:        bus,
		Notify:     daemon.DesktopNotify(),
		Level:      level,
		Logger:     logger,
		Meter:      otel.Meter(appName),
		Version:    version,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := d.Run(ctx); err != nil {
		return err
	}
	logger.Info("smartscreend stopped")
	return nil
}
