package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/smartscreen/internal/dbus"
)

var statusOpts struct {
	format string
}

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text    string `json:"text"`
	Alt     string `json:"alt,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
	Class   string `json:"class,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the connection and dialog state",
	Long: `Show the daemon's connection and dialog state.

Formats:
  text    human readable (default)
  json    one JSON object
  yaml    one YAML document
  waybar  Waybar custom module JSON:

  "custom/smartscreen": {
    "exec": "smartscreen status --format waybar",
    "interval": 5,
    "return-type": "json",
    "on-click": "smartscreen tap"
  }`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVarP(&statusOpts.format, "format", "f", "text",
		"Output format (text, json, yaml, waybar)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	c, err := daemon()
	if err != nil {
		if statusOpts.format == "waybar" {
			return writeStatus(out, "waybar", dbus.Status{Status: "UNAVAILABLE"})
		}
		return err
	}
	ctx, cancel := callContext()
	defer cancel()

	st, err := c.Status(ctx)
	if err != nil {
		if statusOpts.format == "waybar" {
			return writeStatus(out, "waybar", dbus.Status{Status: "UNAVAILABLE"})
		}
		return fmt.Errorf("failed to get status: %w", err)
	}
	return writeStatus(out, statusOpts.format, st)
}

// writeStatus renders st in format.
func writeStatus(w io.Writer, format string, st dbus.Status) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(st)
	case "waybar":
		return json.NewEncoder(w).Encode(waybarStatus(st))
	case "text", "":
		_, err := io.WriteString(w, renderStatus(st))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// waybarStatus maps st onto a Waybar module. The class is the lower-cased
// connection status, or the dialog state while an interaction is running.
func waybarStatus(st dbus.Status) WaybarStatus {
	class := strings.ToLower(st.Status)
	if st.Connected && st.Dialog != "" && st.Dialog != "IDLE" {
		class = strings.ToLower(st.Dialog)
	}

	tooltip := "Connection: " + st.Status
	if st.Reason != "" && st.Reason != "NONE" {
		tooltip += " (" + st.Reason + ")"
	}
	if st.Gateway != "" {
		tooltip += "\nGateway: " + st.Gateway
	}
	if st.Dialog != "" {
		tooltip += "\nDialog: " + st.Dialog
	}

	return WaybarStatus{
		Text:    statusGlyph(st),
		Alt:     class,
		Tooltip: tooltip,
		Class:   class,
	}
}

func statusGlyph(st dbus.Status) string {
	switch {
	case !st.Connected && st.Status == "PENDING":
		return "…"
	case !st.Connected:
		return "✕"
	case st.Dialog == "LISTENING" || st.Dialog == "EXPECTING":
		return "●"
	case st.Dialog == "THINKING" || st.Dialog == "SPEAKING":
		return "◐"
	default:
		return "○"
	}
}

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// renderStatus formats st for a terminal.
func renderStatus(st dbus.Status) string {
	style := badStyle
	switch {
	case st.Connected:
		style = okStyle
	case st.Status == "PENDING":
		style = warnStyle
	}

	var b strings.Builder
	row := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-11s", label+":")), value)
	}
	row("Connection", style.Render(st.Status))
	if st.Reason != "" && st.Reason != "NONE" {
		row("Reason", st.Reason)
	}
	if st.Gateway != "" {
		row("Gateway", st.Gateway)
	}
	if st.Dialog != "" {
		row("Dialog", st.Dialog)
	}
	return b.String()
}
