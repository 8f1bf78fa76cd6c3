package client_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/endpoint"
)

func TestPresentationPassThrough(t *testing.T) {
	b := newBackend()
	c := build(t, b)
	b.Recorder.Reset()

	c.SendUserEvent(`{"arguments":[]}`)
	c.SendDataSourceFetchRequest("dynamicIndexList", "{}")
	c.SendRuntimeError("{}")
	c.HandleVisualContext(7, "{}")
	c.HandleRenderDocumentResult("doc-1", true, "")
	c.HandleExecuteCommandsResult("doc-1", false, "timeout")
	c.HandleActivityEvent("button", capability.ActivityOneTime)
	c.ClearExecuteCommands("doc-1")
	c.SetDocumentIdleTimeout(30 * time.Second)

	assert.Equal(t, []string{
		"presentation.sendUserEvent",
		"presentation.sendDataSourceFetchRequest:dynamicIndexList",
		"presentation.sendRuntimeError",
		"presentation.visualContext",
		"presentation.renderDocumentResult:doc-1",
		"presentation.executeCommandsResult:doc-1",
		"presentation.activityEvent:button",
		"presentation.clearExecuteCommands:doc-1",
		"presentation.setDocumentIdleTimeout",
	}, b.Recorder.Calls())
	assert.Equal(t, 30*time.Second, b.Presentation.IdleTimeout())
}

func TestRenderTelemetryPassThrough(t *testing.T) {
	b := newBackend()
	c := build(t, b)
	b.Recorder.Reset()

	c.SetDeviceWindowState(`{"defaultWindowId":"main"}`)
	c.HandleRenderComplete(true)
	c.HandleDropFrameCount(3, true)
	c.HandlePresentationEvent(capability.RenderInflateEnd, true)

	assert.Equal(t, []string{
		"presentation.setWindowState",
		"presentation.renderComplete",
		"presentation.dropFrameCount:3",
		"presentation.renderingEvent:INFLATE_END",
	}, b.Recorder.Calls())
	assert.Equal(t, `{"defaultWindowId":"main"}`, b.Presentation.WindowState())
}

func TestRenderTelemetryIgnoredWhenNotPresenting(t *testing.T) {
	b := newBackend()
	c := build(t, b)
	b.Recorder.Reset()

	c.HandleRenderComplete(false)
	c.HandleDropFrameCount(12, false)
	c.HandlePresentationEvent(capability.RenderTextMeasure, false)

	assert.Empty(t, b.Recorder.WithPrefix("presentation."))
}

func TestCommsPassThrough(t *testing.T) {
	b := newBackend()
	c := build(t, b)

	assert.True(t, c.IsCommsEnabled())
	c.AcceptCommsCall()
	c.SendDTMF("5")
	c.StopCommsCall()

	assert.Equal(t, []string{
		"call-manager.acceptCall",
		"call-manager.sendDTMF:5",
		"call-manager.stopCall",
	}, b.Recorder.WithPrefix("call-manager.")[len(b.Recorder.WithPrefix("call-manager."))-3:])

	b.CallManager.SetCallState(capability.CallActive)
	assert.Equal(t, capability.CallActive, b.MultiRoomMusic.CallState())
}

func TestObserverRegistration(t *testing.T) {
	b := newBackend()
	c := build(t, b)

	dialog := &dialogLog{}
	c.AddDialogStateObserver(dialog)
	assert.Equal(t, []capability.DialogState{capability.DialogIdle}, dialog.states, "current state is delivered on add")

	status := &statusLog{}
	c.AddConnectionObserver(status)
	assert.Len(t, status.changes, 1)
	c.RemoveConnectionObserver(status)

	alerts := &alertLog{}
	c.AddAlertsObserver(alerts)
	b.Alerts.Ring("a")
	c.RemoveAlertsObserver(alerts)
	b.Alerts.Ring("b")
	assert.Equal(t, []string{"a"}, alerts.tokens)

	c.AddInternetConnectionObserver(alerts)
	b.Internet.SetConnected(false)
	assert.Equal(t, []bool{false}, alerts.internet)
	c.RemoveInternetConnectionObserver(alerts)

	assert.False(t, c.AddBluetoothDeviceObserver(nil), "bluetooth is not configured")
	assert.False(t, c.RemoveBluetoothDeviceObserver(nil))
	assert.True(t, c.AddCallStateObserver(b.MultiRoomMusic))
	assert.True(t, c.RemoveCallStateObserver(b.MultiRoomMusic))
}

func TestSettingsAndRegistration(t *testing.T) {
	b := newBackend()
	c := build(t, b)

	assert.True(t, c.SettingsManager().SetSetting("locale", "en-GB"))
	v, ok := c.SettingsManager().Setting("locale")
	assert.True(t, ok)
	assert.Equal(t, "en-GB", v)

	c.RegistrationManager().Logout()
	assert.True(t, b.Recorder.Before("registration-manager.logout", "customer-data.clearData"))

	c.PlaybackRouter().NextButtonPressed()
	assert.Equal(t, 1, b.Recorder.Count("playback-router.next"))
}

func TestCreateEndpointBuilder(t *testing.T) {
	c := build(t, newBackend())

	eb := c.CreateEndpointBuilder(endpoint.Identity{ClientID: "peripheral", ProductID: "lamp", SerialNumber: "7"})
	eb.WithCapability(lampPower{})
	d, err := eb.Build()

	require.NoError(t, err)
	assert.Equal(t, "peripheral::lamp::7", d.ID())
	assert.NotEqual(t, c.DefaultEndpointID(), d.ID())
}

type lampPower struct{}

func (lampPower) Configurations() []endpoint.Configuration {
	return []endpoint.Configuration{{Type: "AlexaInterface", Interface: "Alexa.PowerController", Version: "3"}}
}

type alertLog struct {
	tokens   []string
	internet []bool
}

func (l *alertLog) OnAlertStateChange(token string, state capability.AlertState, _ string) {
	if state == capability.AlertStarted {
		l.tokens = append(l.tokens, token)
	}
}

func (l *alertLog) OnInternetConnectionChanged(connected bool) {
	l.internet = append(l.internet, connected)
}
