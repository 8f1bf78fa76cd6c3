package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/connection"
)

type stateLog struct {
	states []capability.DialogState
}

func (l *stateLog) OnDialogStateChanged(s capability.DialogState) {
	l.states = append(l.states, s)
}

func TestAggregator_FullInteraction(t *testing.T) {
	obs := &stateLog{}
	a := NewAggregator([]capability.DialogStateObserver{obs}, nil)

	a.OnConnectionStatusChanged(connection.StatusConnected, connection.ReasonClientRequest)
	a.OnRecognizerStateChanged(capability.RecognizerRecognizing)
	a.OnRecognizerStateChanged(capability.RecognizerBusy)
	a.OnRecognizerStateChanged(capability.RecognizerIdle)
	a.OnSynthesizerStateChanged(capability.SynthesizerGainingFocus)
	a.OnSynthesizerStateChanged(capability.SynthesizerPlaying)
	a.OnSynthesizerStateChanged(capability.SynthesizerFinished)

	assert.Equal(t, []capability.DialogState{
		capability.DialogListening,
		capability.DialogThinking,
		capability.DialogSpeaking,
		capability.DialogFinished,
		capability.DialogIdle,
	}, obs.states)
}

func TestAggregator_IdleWithoutResponse(t *testing.T) {
	obs := &stateLog{}
	a := NewAggregator([]capability.DialogStateObserver{obs}, nil)

	a.OnRecognizerStateChanged(capability.RecognizerExpectingSpeech)
	a.OnRecognizerStateChanged(capability.RecognizerIdle)
	assert.Equal(t, []capability.DialogState{capability.DialogExpecting, capability.DialogIdle}, obs.states)

	obs.states = nil
	a.OnRequestProcessingStarted()
	a.OnRequestProcessingCompleted()
	assert.Equal(t, []capability.DialogState{capability.DialogThinking, capability.DialogIdle}, obs.states)
}

func TestAggregator_DisconnectForcesIdle(t *testing.T) {
	a := NewAggregator(nil, nil)
	a.OnRecognizerStateChanged(capability.RecognizerRecognizing)
	assert.Equal(t, capability.DialogListening, a.State())

	a.OnConnectionStatusChanged(connection.StatusDisconnected, connection.ReasonServerSideDisconnect)
	assert.Equal(t, capability.DialogIdle, a.State())
}

func TestAggregator_ObserverRegistration(t *testing.T) {
	a := NewAggregator(nil, nil)
	a.OnRequestProcessingStarted()

	obs := &stateLog{}
	a.AddObserver(obs)
	a.AddObserver(obs)
	assert.Equal(t, []capability.DialogState{capability.DialogThinking}, obs.states)

	a.RemoveObserver(obs)
	a.OnRequestProcessingCompleted()
	assert.Len(t, obs.states, 1)
}
