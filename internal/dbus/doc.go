// Package dbus exposes the smart screen client on the session bus so local
// tools can drive connections and interactions, and provides the matching
// caller used by the smartscreen CLI.
package dbus
