package daemon

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	godbus "github.com/godbus/dbus/v5"

	"github.com/jmylchreest/smartscreen/internal/connection"
)

// NotificationLevel indicates the urgency of a desktop notification.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages (low urgency).
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for warning messages (normal urgency).
	NotificationLevelWarning
	// NotificationLevelError is for error messages (critical urgency).
	NotificationLevelError
)

// Icon returns the freedesktop icon name for the level.
func (l NotificationLevel) Icon() string {
	switch l {
	case NotificationLevelWarning:
		return "dialog-warning"
	case NotificationLevelError:
		return "dialog-error"
	default:
		return "dialog-information"
	}
}

// Urgency returns the freedesktop urgency hint for the level.
func (l NotificationLevel) Urgency() byte {
	switch l {
	case NotificationLevelInfo:
		return 0
	case NotificationLevelError:
		return 2
	default:
		return 1
	}
}

// NotifyFunc delivers one desktop notification.
type NotifyFunc func(summary, body string, level NotificationLevel) error

// DesktopNotify sends notifications to org.freedesktop.Notifications on the
// session bus.
func DesktopNotify() NotifyFunc {
	return func(summary, body string, level NotificationLevel) error {
		conn, err := godbus.SessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		hints := map[string]godbus.Variant{
			"urgency":       godbus.MakeVariant(level.Urgency()),
			"category":      godbus.MakeVariant("device"),
			"transient":     godbus.MakeVariant(true),
			"desktop-entry": godbus.MakeVariant(appName),
		}
		obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
		return obj.Call("org.freedesktop.Notifications.Notify", 0,
			appName, uint32(0), level.Icon(), summary, body, []string{}, hints, int32(5000)).Err
	}
}

// Notifier reports daemon events as desktop notifications. The same key is
// not repeated within the minimum interval.
type Notifier struct {
	mu     sync.Mutex
	logger *slog.Logger
	send   NotifyFunc

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration
	now            func() time.Time

	enabled bool
	lost    bool
}

// NewNotifier creates a notifier. A nil send drops every notification.
func NewNotifier(send NotifyFunc, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		logger:         logger,
		send:           send,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		now:            time.Now,
		enabled:        true,
	}
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notifications with the
// same key.
func (n *Notifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify sends a notification unless key was used within the minimum interval.
func (n *Notifier) Notify(key, summary, body string, level NotificationLevel) {
	n.mu.Lock()
	if !n.enabled || n.send == nil {
		n.mu.Unlock()
		return
	}
	now := n.now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("notification rate-limited", "key", key, "summary", summary)
		return
	}
	n.lastNotifyTime[key] = now
	send := n.send
	n.mu.Unlock()

	n.logger.Debug("sending notification", "key", key, "summary", summary, "level", level)
	if err := send(summary, body, level); err != nil {
		n.logger.Warn("failed to send notification", "key", key, "error", err)
	}
}

// OnConnectionStatusChanged reports unexpected connection loss and the
// recovery that follows it.
func (n *Notifier) OnConnectionStatusChanged(status connection.Status, reason connection.ChangeReason) {
	switch status {
	case connection.StatusConnected:
		n.mu.Lock()
		recovered := n.lost
		n.lost = false
		n.mu.Unlock()
		if recovered {
			n.Notify("connection", "Reconnected", "The voice service is reachable again.", NotificationLevelInfo)
		}
	default:
		if !unexpected(reason) {
			return
		}
		n.mu.Lock()
		already := n.lost
		n.lost = true
		n.mu.Unlock()
		if !already {
			n.Notify("connection", "Connection Lost", "Voice service unavailable: "+reason.String(), NotificationLevelWarning)
		}
	}
}

func unexpected(reason connection.ChangeReason) bool {
	switch reason {
	case connection.ReasonServerSideDisconnect,
		connection.ReasonConnectionTimedOut,
		connection.ReasonInternetUnavailable:
		return true
	default:
		return false
	}
}

// NotifyConfigReloaded reports a successful configuration reload.
func (n *Notifier) NotifyConfigReloaded() {
	n.Notify("config-reload", "Configuration Reloaded",
		appName+" configuration has been reloaded.", NotificationLevelInfo)
}

// NotifyRestartRequired reports settings that only apply after a restart.
func (n *Notifier) NotifyRestartRequired(sections []string) {
	n.Notify("config-restart", "Restart Required",
		fmt.Sprintf("Changes to %v apply after %s restarts.", sections, appName), NotificationLevelWarning)
}

// NotifyStartup reports that the daemon is running.
func (n *Notifier) NotifyStartup(version string) {
	n.Notify("startup", appName+" Started", "Smart screen client v"+version+" is running.", NotificationLevelInfo)
}
