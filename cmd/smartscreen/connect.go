package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var connectOpts struct {
	reset bool
}

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to the voice service",
	Long: `Enable the voice service connection.

With --reset the device's default endpoint is registered before the
connection is enabled. Registration only happens once per daemon run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := daemon()
		if err != nil {
			return err
		}
		ctx, cancel := callContext()
		defer cancel()

		if err := c.Connect(ctx, connectOpts.reset); err != nil {
			return fmt.Errorf("connect failed: %w", err)
		}
		logger.Debug("connect requested", "reset", connectOpts.reset)
		return nil
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Disconnect from the voice service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := daemon()
		if err != nil {
			return err
		}
		ctx, cancel := callContext()
		defer cancel()
		return c.Disconnect(ctx)
	},
}

func init() {
	rootCmd.AddCommand(connectCmd, disconnectCmd)
	connectCmd.Flags().BoolVar(&connectOpts.reset, "reset", false,
		"Register the default endpoint before connecting")
}
