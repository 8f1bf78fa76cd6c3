package daemon

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/smartscreen/internal/connection"
)

func TestNotifier_RateLimitsByKey(t *testing.T) {
	notes := &notifyLog{}
	n := NewNotifier(notes.send, quiet())
	now := time.Unix(1000, 0)
	n.now = func() time.Time { return now }

	n.Notify("a", "first", "", NotificationLevelInfo)
	n.Notify("a", "again", "", NotificationLevelInfo)
	n.Notify("b", "other", "", NotificationLevelInfo)

	now = now.Add(6 * time.Second)
	n.Notify("a", "later", "", NotificationLevelInfo)

	assert.Equal(t, []string{"first", "other", "later"}, notes.summaries())
}

func TestNotifier_Disabled(t *testing.T) {
	notes := &notifyLog{}
	n := NewNotifier(notes.send, quiet())
	n.SetEnabled(false)
	n.Notify("a", "dropped", "", NotificationLevelError)
	assert.Empty(t, notes.summaries())

	assert.NotPanics(t, func() { NewNotifier(nil, quiet()).Notify("a", "x", "", NotificationLevelInfo) })
}

func TestNotifier_SendErrorIsLogged(t *testing.T) {
	n := NewNotifier(func(string, string, NotificationLevel) error { return errors.New("no bus") }, quiet())
	assert.NotPanics(t, func() { n.NotifyConfigReloaded() })
}

func TestNotifier_ConnectionLossAndRecovery(t *testing.T) {
	notes := &notifyLog{}
	n := NewNotifier(notes.send, quiet())
	n.SetMinInterval(0)

	// Expected transitions are quiet
	n.OnConnectionStatusChanged(connection.StatusPending, connection.ReasonClientRequest)
	n.OnConnectionStatusChanged(connection.StatusConnected, connection.ReasonClientRequest)
	n.OnConnectionStatusChanged(connection.StatusDisconnected, connection.ReasonClientDisabled)
	assert.Empty(t, notes.summaries())

	n.OnConnectionStatusChanged(connection.StatusPending, connection.ReasonServerSideDisconnect)
	n.OnConnectionStatusChanged(connection.StatusPending, connection.ReasonConnectionTimedOut)
	n.OnConnectionStatusChanged(connection.StatusConnected, connection.ReasonNone)
	n.OnConnectionStatusChanged(connection.StatusConnected, connection.ReasonNone)

	assert.Equal(t, []string{"Connection Lost", "Reconnected"}, notes.summaries())
	assert.Equal(t, NotificationLevelWarning, notes.sent[0].level)
}

func TestNotificationLevel(t *testing.T) {
	assert.Equal(t, byte(0), NotificationLevelInfo.Urgency())
	assert.Equal(t, byte(1), NotificationLevelWarning.Urgency())
	assert.Equal(t, byte(2), NotificationLevelError.Urgency())
	assert.Equal(t, "dialog-error", NotificationLevelError.Icon())
	assert.Equal(t, "dialog-information", NotificationLevelInfo.Icon())
}
