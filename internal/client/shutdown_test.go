package client_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/client"
	"github.com/jmylchreest/smartscreen/internal/connection"
)

func TestShutdownOrder(t *testing.T) {
	c := build(t, newBackend())

	assert.Equal(t, []string{
		"client",
		"directive-sequencer",
		"speaker-manager",
		"presentation",
		"template-runtime",
		"recognizer",
		"audio-player",
		"external-media-player",
		"speech-synthesizer",
		"alerts",
		"playback-controller",
		"software-info-sender",
		"connection",
		"message-router",
		"certified-sender",
		"exception-sender",
		"audio-activity-tracker",
		"visual-activity-tracker",
		"playback-router",
		"notifications",
		"interaction-model",
		"captions",
		"bluetooth",
		"user-inactivity-monitor",
		"multi-room-music",
		"call-manager",
		"api-gateway",
		"interface-agent",
		"phone-call-controller",
		"meeting-client-controller",
		"do-not-disturb",
		"visual-characteristics",
		"equalizer-controller",
		"equalizer",
		"revoke-authorization",
		"system-handlers",
		"endpoint-coordinator",
		"device-setting-storage",
	}, c.ShutdownOrder())
}

func TestClose_ShutsDownInOrder(t *testing.T) {
	b := newBackend()
	c := build(t, b)
	require.NoError(t, c.Connect(false))

	c.Close()

	var shutdowns []string
	for _, call := range b.Recorder.Calls() {
		if name, ok := strings.CutSuffix(call, ".shutdown"); ok {
			shutdowns = append(shutdowns, name)
		}
	}
	assert.Equal(t, []string{
		"directive-sequencer",
		"speaker-manager",
		"presentation",
		"template-runtime",
		"recognizer",
		"audio-player",
		"external-media-player",
		"speech-synthesizer",
		"alerts",
		"playback-controller",
		"message-router",
		"certified-sender",
		"exception-sender",
		"audio-activity-tracker",
		"visual-activity-tracker",
		"playback-router",
		"notifications",
		"interaction-model",
		"captions",
		"user-inactivity-monitor",
		"multi-room-music",
		"call-manager",
		"api-gateway",
		"interface-agent",
		"phone-call-controller",
		"meeting-client-controller",
		"do-not-disturb",
		"visual-characteristics",
		"revoke-authorization",
		"system",
		"interaction-model-handler",
	}, shutdowns)

	status, reason := c.ConnectionStatus()
	assert.Equal(t, connection.StatusDisconnected, status)
	assert.Equal(t, connection.ReasonShutdown, reason)
	assert.Equal(t, 1, b.Recorder.Count("message-router.disable"))
	assert.False(t, b.Settings.IsOpen())
}

func TestClose_DetachesObserversBeforeSubjectShutdown(t *testing.T) {
	b := newBackend()
	c := build(t, b)

	c.Close()

	rec := b.Recorder
	for _, subject := range []string{"recognizer", "speech-synthesizer", "interaction-model", "presentation", "call-manager"} {
		assert.True(t, rec.Before(subject+".removeObserver", subject+".shutdown"), subject)
	}
	assert.True(t, rec.Before("capabilities-delegate.removeObserver", "directive-sequencer.shutdown"))

	for _, e := range c.Wiring() {
		assert.False(t, e.Attached, "%s -> %s", e.Subject, e.Observer)
	}
	assert.Empty(t, b.Internet.Observers())
	assert.Empty(t, b.Capabilities.Observers())
	assert.Empty(t, b.Recognizer.Observers())
	assert.Empty(t, b.Presentation.Observers())
}

func TestClose_IsIdempotent(t *testing.T) {
	b := newBackend()
	c := build(t, b)

	c.Close()
	c.Close()

	assert.Equal(t, 1, b.Recorder.Count("recognizer.shutdown"))
	assert.Equal(t, 1, b.Recorder.Count("message-router.shutdown"))
}

func TestClose_ContinuesPastPanickingStep(t *testing.T) {
	b := newBackend()
	c := build(t, b, func(r *client.Request) {
		r.Factories.CertifiedSender = func(*client.Env) (capability.Shutdowner, error) {
			return panicker{}, nil
		}
	})

	assert.NotPanics(t, c.Close)

	assert.Equal(t, 1, b.Recorder.Count("exception-sender.shutdown"))
	assert.Equal(t, 1, b.Recorder.Count("interaction-model-handler.shutdown"))
	assert.False(t, b.Settings.IsOpen())
}

type panicker struct{}

func (panicker) Shutdown() { panic("boom") }
