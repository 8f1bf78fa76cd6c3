// Package dialog folds recognizer, speech and connection activity into a
// single dialog state for observers such as visual renderers.
package dialog

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/connection"
	"github.com/jmylchreest/smartscreen/internal/observer"
)

// Aggregator derives the dialog state and fans it out.
type Aggregator struct {
	logger    *slog.Logger
	mu        sync.Mutex
	state     capability.DialogState
	observers *observer.Set[capability.DialogStateObserver]
}

var (
	_ capability.RecognizerObserver  = (*Aggregator)(nil)
	_ capability.SynthesizerObserver = (*Aggregator)(nil)
	_ capability.InteractionObserver = (*Aggregator)(nil)
	_ connection.StatusObserver      = (*Aggregator)(nil)
)

// NewAggregator returns an idle aggregator with the given observers.
func NewAggregator(observers []capability.DialogStateObserver, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Aggregator{
		logger:    logger,
		state:     capability.DialogIdle,
		observers: observer.NewSet[capability.DialogStateObserver](),
	}
	for _, o := range observers {
		if o != nil {
			a.observers.Add(o)
		}
	}
	return a
}

// State returns the current dialog state.
func (a *Aggregator) State() capability.DialogState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// AddObserver registers o and tells it the current state.
func (a *Aggregator) AddObserver(o capability.DialogStateObserver) {
	if o == nil || !a.observers.Add(o) {
		return
	}
	o.OnDialogStateChanged(a.State())
}

// RemoveObserver unregisters o.
func (a *Aggregator) RemoveObserver(o capability.DialogStateObserver) {
	if o != nil {
		a.observers.Remove(o)
	}
}

// OnRecognizerStateChanged maps capture state onto the dialog.
func (a *Aggregator) OnRecognizerStateChanged(state capability.RecognizerState) {
	switch state {
	case capability.RecognizerRecognizing:
		a.set(capability.DialogListening)
	case capability.RecognizerExpectingSpeech:
		a.set(capability.DialogExpecting)
	case capability.RecognizerBusy:
		a.set(capability.DialogThinking)
	case capability.RecognizerIdle:
		// The recognizer goes idle while the response is on its way, so a
		// thinking dialog stays thinking.
		a.mu.Lock()
		thinking := a.state == capability.DialogThinking
		a.mu.Unlock()
		if !thinking {
			a.set(capability.DialogIdle)
		}
	}
}

// OnSynthesizerStateChanged maps speech output onto the dialog.
func (a *Aggregator) OnSynthesizerStateChanged(state capability.SynthesizerState) {
	switch state {
	case capability.SynthesizerPlaying:
		a.set(capability.DialogSpeaking)
	case capability.SynthesizerFinished, capability.SynthesizerInterrupted:
		if a.State() == capability.DialogSpeaking {
			a.set(capability.DialogFinished)
			a.set(capability.DialogIdle)
		}
	}
}

// OnRequestProcessingStarted marks the dialog as waiting for a response.
func (a *Aggregator) OnRequestProcessingStarted() {
	a.set(capability.DialogThinking)
}

// OnRequestProcessingCompleted ends a thinking dialog with no speech.
func (a *Aggregator) OnRequestProcessingCompleted() {
	if a.State() == capability.DialogThinking {
		a.set(capability.DialogIdle)
	}
}

// OnConnectionStatusChanged drops the dialog when the connection goes.
func (a *Aggregator) OnConnectionStatusChanged(status connection.Status, _ connection.ChangeReason) {
	if status != connection.StatusConnected {
		a.set(capability.DialogIdle)
	}
}

func (a *Aggregator) set(state capability.DialogState) {
	a.mu.Lock()
	if a.state == state {
		a.mu.Unlock()
		return
	}
	a.state = state
	a.mu.Unlock()

	a.logger.Debug("dialog state changed", "state", state)
	a.observers.Notify(func(o capability.DialogStateObserver) {
		o.OnDialogStateChanged(state)
	})
}
