package client_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/client"
	"github.com/jmylchreest/smartscreen/internal/connection"
	"github.com/jmylchreest/smartscreen/internal/endpoint"
)

func TestConnect_RegistersEndpointBeforeEnabling(t *testing.T) {
	b := newBackend()
	c := build(t, b)

	require.NoError(t, c.Connect(true))

	rec := b.Recorder
	assert.True(t, rec.Before("endpoint-manager.registerEndpoint", "endpoint-manager.waitForPendingRegistrationsToEnqueue"))
	assert.True(t, rec.Before("endpoint-manager.waitForPendingRegistrationsToEnqueue", "gateway-manager.setGatewayAssigner"))
	assert.True(t, rec.Before("gateway-manager.setGatewayAssigner", "message-router.enable"))
	assert.True(t, c.IsConnected())
	assert.Equal(t, endpoint.StateEnqueued, c.EndpointState())

	d := b.Endpoints.Endpoint()
	require.NotNil(t, d)
	assert.Equal(t, c.DefaultEndpointID(), d.ID())
	var keys []string
	for _, cfg := range d.Configurations() {
		keys = append(keys, cfg.Key())
	}
	assert.Contains(t, keys, "SpeechRecognizer@2.3")
	assert.Contains(t, keys, "Alexa.Presentation.APL@1.4")
	assert.Contains(t, keys, "AudioActivityTracker@1.0")

	b.Endpoints.Resolve(endpoint.RegistrationSucceeded)
	assert.Eventually(t, func() bool {
		return c.EndpointState() == endpoint.StateSucceeded
	}, time.Second, 5*time.Millisecond)
}

func TestConnect_RegistersOnlyOnce(t *testing.T) {
	b := newBackend()
	b.Endpoints.Preset(endpoint.RegistrationSucceeded)
	c := build(t, b)

	require.NoError(t, c.Connect(true))
	c.Disconnect()
	require.NoError(t, c.Connect(true))

	assert.Equal(t, 1, b.Recorder.Count("endpoint-manager.registerEndpoint"))
	assert.Equal(t, 2, b.Recorder.Count("message-router.enable"))
	assert.True(t, c.IsConnected())
}

func TestConnect_WithoutResetSkipsRegistration(t *testing.T) {
	b := newBackend()
	c := build(t, b)

	require.NoError(t, c.Connect(false))

	assert.Zero(t, b.Recorder.Count("endpoint-manager.registerEndpoint"))
	assert.Equal(t, endpoint.StateNotBuilt, c.EndpointState())
	assert.True(t, c.IsConnected())
}

func TestConnect_ImmediateRegistrationFailureDoesNotEnable(t *testing.T) {
	b := newBackend()
	b.Endpoints.Preset(endpoint.RegistrationConfigurationError)
	c := build(t, b)

	err := c.Connect(true)

	require.ErrorIs(t, err, endpoint.ErrRegistrationFailed)
	assert.Zero(t, b.Recorder.Count("message-router.enable"))
	assert.Zero(t, b.Recorder.Count("gateway-manager.setGatewayAssigner"))
	assert.False(t, c.IsConnected())
	assert.Equal(t, endpoint.StateFailed, c.EndpointState())
}

func TestConnect_AfterCloseFails(t *testing.T) {
	b := newBackend()
	c := build(t, b)
	c.Close()

	assert.ErrorIs(t, c.Connect(true), client.ErrClosed)
	assert.Zero(t, b.Recorder.Count("endpoint-manager.registerEndpoint"))
}

func TestDisconnect(t *testing.T) {
	b := newBackend()
	c := build(t, b)
	require.NoError(t, c.Connect(false))
	require.Equal(t, connection.StatusConnected, b.DoNotDisturb.Status())

	c.Disconnect()

	status, reason := c.ConnectionStatus()
	assert.Equal(t, connection.StatusDisconnected, status)
	assert.Equal(t, connection.ReasonClientDisabled, reason)
	assert.Equal(t, connection.StatusDisconnected, b.DoNotDisturb.Status())
	assert.Equal(t, connection.StatusDisconnected, b.CallManager.Status())
}

func TestCapabilitiesPublishedEnablesConnection(t *testing.T) {
	b := newBackend()
	c := build(t, b)
	require.NoError(t, c.Connect(false))
	c.Disconnect()
	require.False(t, c.IsConnected())

	b.Capabilities.Publish(capability.CapabilitiesRetriableError, "throttled")
	assert.False(t, c.IsConnected())

	b.Capabilities.Publish(capability.CapabilitiesSuccess, "")
	assert.True(t, c.IsConnected())
}

func TestInternetRestoreReconnects(t *testing.T) {
	b := newBackend()
	c := build(t, b)
	b.Router.SetReachable(false)
	require.NoError(t, c.Connect(false))

	status, _ := c.ConnectionStatus()
	require.Equal(t, connection.StatusPending, status)

	b.Internet.SetConnected(false)
	b.Router.SetReachable(true)
	b.Internet.SetConnected(true)

	assert.True(t, c.IsConnected())
}

func TestServerSideDisconnectReachesObservers(t *testing.T) {
	b := newBackend()
	obs := &statusLog{}
	c := build(t, b, func(r *client.Request) {
		r.Observers.Connection = []connection.StatusObserver{obs}
	})
	require.NoError(t, c.Connect(false))

	b.Router.Drop()

	last := obs.last()
	assert.Equal(t, connection.StatusDisconnected, last.status)
	assert.Equal(t, connection.ReasonServerSideDisconnect, last.reason)
	assert.Equal(t, capability.DialogIdle, c.DialogState())
}

func TestInboundMessagesReachSequencer(t *testing.T) {
	b := newBackend()
	c := build(t, b)
	require.NoError(t, c.Connect(false))

	b.Router.Deliver("ctx-1", `{"directive":{}}`)

	assert.Equal(t, []string{`{"directive":{}}`}, b.Sequencer.Messages())
}

func TestGatewayAssignment(t *testing.T) {
	b := newBackend()
	c := build(t, b)
	assert.Equal(t, "https://gateway.loopback", c.Gateway())

	require.NoError(t, c.Connect(true))
	require.True(t, b.Gateways.Assign("https://gateway.eu"))

	assert.Equal(t, "https://gateway.eu", c.Gateway())
}

type statusChange struct {
	status connection.Status
	reason connection.ChangeReason
}

type statusLog struct {
	changes []statusChange
}

func (l *statusLog) OnConnectionStatusChanged(status connection.Status, reason connection.ChangeReason) {
	l.changes = append(l.changes, statusChange{status, reason})
}

func (l *statusLog) last() statusChange {
	if len(l.changes) == 0 {
		return statusChange{}
	}
	return l.changes[len(l.changes)-1]
}
