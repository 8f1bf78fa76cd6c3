package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// trigger runs one recognition trigger and reports whether it was accepted.
func trigger(cmd *cobra.Command, method, keyword string) error {
	c, err := daemon()
	if err != nil {
		return err
	}
	ctx, cancel := callContext()
	defer cancel()

	accepted, err := c.Trigger(ctx, method, keyword)
	if err != nil {
		return fmt.Errorf("%s failed: %w", method, err)
	}
	if !accepted {
		return fmt.Errorf("%s was not accepted", method)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "accepted")
	return nil
}

var wakeCmd = &cobra.Command{
	Use:   "wake [keyword]",
	Short: "Start an interaction as if the wake word was heard",
	Long: `Start an interaction as if keyword (default "alexa") was detected.

While the daemon is offline the keyword "stop" stops local playback
and every other keyword is ignored.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keyword := "alexa"
		if len(args) == 1 {
			keyword = args[0]
		}
		return trigger(cmd, "WakeWord", keyword)
	},
}

var tapCmd = &cobra.Command{
	Use:   "tap",
	Short: "Start a tap-to-talk interaction",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return trigger(cmd, "TapToTalk", "")
	},
}

var tapEndCmd = &cobra.Command{
	Use:   "tap-end",
	Short: "Stop capturing a tap-to-talk interaction",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return trigger(cmd, "TapToTalkEnd", "")
	},
}

var holdCmd = &cobra.Command{
	Use:       "hold start|end",
	Short:     "Start or end a press-and-hold interaction",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"start", "end"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "start" {
			return trigger(cmd, "HoldToTalkStart", "")
		}
		return trigger(cmd, "HoldToTalkEnd", "")
	},
}

// simple builds a command that invokes a no-argument method.
func simple(use, short, method string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := daemon()
			if err != nil {
				return err
			}
			ctx, cancel := callContext()
			defer cancel()
			return c.Invoke(ctx, method)
		},
	}
}

var firmwareCmd = &cobra.Command{
	Use:   "firmware VERSION",
	Short: "Report a new firmware version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid firmware version %q: %w", args[0], err)
		}
		c, err := daemon()
		if err != nil {
			return err
		}
		ctx, cancel := callContext()
		defer cancel()
		return c.SetFirmwareVersion(ctx, int32(v))
	},
}

func init() {
	rootCmd.AddCommand(
		wakeCmd, tapCmd, tapEndCmd, holdCmd, firmwareCmd,
		simple("force-exit", "End the current interaction", "ForceExit"),
		simple("stop", "Stop whatever is playing in the foreground", "StopForegroundActivity"),
		simple("stop-alert", "Stop a sounding alert", "StopAlert"),
		simple("clear-card", "Dismiss the on-screen card", "ClearCard"),
	)
}
