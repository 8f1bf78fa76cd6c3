package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/smartscreen/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration and stored data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}
		return writeConfig(cmd.OutOrStdout(), cfg, path, time.Now())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := globalOpts.configPath
		if path == "" {
			path = config.ConfigPath()
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
}

// writeConfig prints cfg as TOML followed by the state of each store file.
func writeConfig(w io.Writer, cfg *config.Config, path string, now time.Time) error {
	fmt.Fprintf(w, "# %s\n", path)
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, labelStyle.Render("# stores"))
	for _, name := range []string{
		config.StoreSettings, config.StoreMessages, config.StoreAlerts,
		config.StoreNotifications, config.StoreMisc,
	} {
		file := cfg.Storage.Path(name)
		info, err := os.Stat(file)
		if err != nil {
			fmt.Fprintf(w, "# %-14s %s (not created)\n", name, file)
			continue
		}
		fmt.Fprintf(w, "# %-14s %s %s, %s\n", name, file,
			humanize.Bytes(uint64(info.Size())), humanize.RelTime(info.ModTime(), now, "ago", "from now"))
	}
	return nil
}
