// Package daemon runs smartscreend. It assembles the client from the
// configuration file, exports it on the session bus, and keeps it in step
// with configuration changes.
package daemon
