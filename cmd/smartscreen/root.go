// Package main provides the CLI entrypoint for smartscreen.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/smartscreen/internal/config"
	"github.com/jmylchreest/smartscreen/internal/dbus"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

var (
	globalOpts struct {
		verbose    bool
		configPath string
		timeout    time.Duration
	}
	logger *slog.Logger
	caller *dbus.Caller
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "smartscreen",
	Short: "Control a running smartscreend",
	Long: `smartscreen controls the smart screen client daemon over D-Bus.

It connects and disconnects the voice service, starts and stops
interactions, and reports the connection and dialog state.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/smartscreen/smartscreend.toml)")
	rootCmd.PersistentFlags().DurationVar(&globalOpts.timeout, "timeout", 10*time.Second,
		"How long to wait for the daemon")

	cobra.OnInitialize(setupLogger)
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// daemon returns the bus caller, connecting on first use.
func daemon() (*dbus.Caller, error) {
	if caller != nil {
		return caller, nil
	}
	c, err := dbus.NewCaller()
	if err != nil {
		return nil, fmt.Errorf("is smartscreend running? %w", err)
	}
	caller = c
	return caller, nil
}

// callContext bounds one daemon call by --timeout.
func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), globalOpts.timeout)
}

// loadConfig reads the config the daemon would use.
func loadConfig() (*config.Config, string, error) {
	path := globalOpts.configPath
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, path, nil
}
