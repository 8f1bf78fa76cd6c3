package dbus_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/client"
	sdbus "github.com/jmylchreest/smartscreen/internal/dbus"
	"github.com/jmylchreest/smartscreen/internal/future"
	"github.com/jmylchreest/smartscreen/internal/loopback"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newServer(t *testing.T) (*sdbus.ControlServer, *client.Client, *loopback.Backend) {
	t.Helper()
	b := loopback.NewBackend(quiet())
	c, err := client.Build(b.Request())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return sdbus.NewControlServer(c, time.Second, quiet()), c, b
}

func TestControlServer_ConnectAndStatus(t *testing.T) {
	s, c, _ := newServer(t)

	status, reason, connected, _, dialog, derr := s.GetStatus()
	require.Nil(t, derr)
	assert.Equal(t, "DISCONNECTED", status)
	assert.Equal(t, "NONE", reason)
	assert.False(t, connected)
	assert.Equal(t, "IDLE", dialog)

	require.Nil(t, s.Connect(false))
	assert.True(t, c.IsConnected())

	status, reason, connected, gateway, _, derr := s.GetStatus()
	require.Nil(t, derr)
	assert.Equal(t, "CONNECTED", status)
	assert.Equal(t, "CLIENT_REQUEST", reason)
	assert.True(t, connected)
	assert.Equal(t, "https://gateway.loopback", gateway)

	gw, derr := s.GetGateway()
	require.Nil(t, derr)
	assert.Equal(t, gateway, gw)

	require.Nil(t, s.Disconnect())
	assert.False(t, c.IsConnected())
}

func TestControlServer_ConnectAfterCloseFails(t *testing.T) {
	s, c, _ := newServer(t)
	c.Close()

	derr := s.Connect(true)
	require.NotNil(t, derr)
	assert.Equal(t, sdbus.ErrorFailed, derr.Name)
}

func TestControlServer_WakeWord(t *testing.T) {
	s, c, b := newServer(t)

	// Offline: ignored
	accepted, derr := s.WakeWord("alexa")
	require.Nil(t, derr)
	assert.False(t, accepted)
	assert.Empty(t, b.Recognizer.Requests())

	require.NoError(t, c.Connect(false))
	accepted, derr = s.WakeWord("alexa")
	require.Nil(t, derr)
	assert.True(t, accepted)

	reqs := b.Recognizer.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, sdbus.DefaultProvider, reqs[0].Provider)
	assert.Equal(t, "alexa", reqs[0].Keyword)
	assert.Equal(t, capability.IndexUnspecified, reqs[0].Begin)
	assert.Equal(t, capability.DialogListening, c.DialogState())
}

func TestControlServer_TalkTriggers(t *testing.T) {
	s, _, b := newServer(t)

	provider := capability.AudioProvider{Name: "usb-array", Format: "LPCM16"}
	s.SetProvider(provider)

	for _, trigger := range []func() (bool, *dbus.Error){s.TapToTalk, s.HoldToTalkStart, s.HoldToTalkEnd, s.TapToTalkEnd} {
		accepted, derr := trigger()
		require.Nil(t, derr)
		assert.True(t, accepted)
	}

	reqs := b.Recognizer.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, capability.InitiatorTap, reqs[0].Initiator)
	assert.Equal(t, capability.InitiatorPressAndHold, reqs[1].Initiator)
	assert.Equal(t, provider, reqs[1].Provider)
	assert.Equal(t, 2, b.Recorder.Count("recognizer.stopCapture"))
}

func TestControlServer_RejectedTrigger(t *testing.T) {
	s, _, b := newServer(t)
	b.Recognizer.SetResult(false)

	accepted, derr := s.TapToTalk()
	require.Nil(t, derr)
	assert.False(t, accepted)
}

// stalled never resolves a tap.
type stalled struct {
	*client.Client
}

func (stalled) NotifyOfTapToTalk(capability.AudioProvider, capability.Index, time.Time) *future.Future[bool] {
	f, _ := future.New[bool]()
	return f
}

func TestControlServer_TriggerTimeout(t *testing.T) {
	_, c, _ := newServer(t)
	s := sdbus.NewControlServer(stalled{c}, 20*time.Millisecond, quiet())

	accepted, derr := s.TapToTalk()
	require.NotNil(t, derr)
	assert.Equal(t, sdbus.ErrorTimeout, derr.Name)
	assert.False(t, accepted)
}

func TestControlServer_Actions(t *testing.T) {
	s, c, b := newServer(t)

	require.Nil(t, s.StopForegroundActivity())
	assert.Equal(t, 1, b.Recorder.Count("audio-focus-manager.stopForegroundActivity"))

	b.Alerts.Ring("wake-up")
	require.Nil(t, s.StopAlert())
	assert.Equal(t, 1, b.Recorder.Count("alerts.onLocalStop"))

	require.Nil(t, s.ClearCard())
	assert.Positive(t, b.Recorder.Count("presentation.clearCard"))

	require.Nil(t, s.ForceExit())
	assert.Equal(t, capability.DialogIdle, c.DialogState())
}

func TestControlServer_SetFirmwareVersion(t *testing.T) {
	s, _, b := newServer(t)

	require.Nil(t, s.SetFirmwareVersion(12))
	require.NotNil(t, b.SoftwareInfoSender())
	assert.Equal(t, capability.FirmwareVersion(12), b.SoftwareInfoSender().Version())

	derr := s.SetFirmwareVersion(-4)
	require.NotNil(t, derr)
	assert.Equal(t, sdbus.ErrorRejected, derr.Name)
}

func TestControlServer_SignalsWithoutBus(t *testing.T) {
	s, _, _ := newServer(t)

	assert.Error(t, s.EmitDialogStateChanged(capability.DialogThinking))
	assert.NotPanics(t, func() { s.OnDialogStateChanged(capability.DialogThinking) })
	assert.Nil(t, s.Connection())
	assert.NoError(t, s.Stop())
}
