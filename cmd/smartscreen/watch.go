package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/smartscreen/internal/dbus"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print connection and dialog changes as they happen",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := daemon()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		return c.Watch(ctx, func(ev dbus.Event) {
			fmt.Fprintf(out, "%s %s\n", labelStyle.Render(time.Now().Format(time.TimeOnly)), ev)
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
