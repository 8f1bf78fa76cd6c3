package capability

import (
	"math"
	"time"

	"github.com/jmylchreest/smartscreen/internal/future"
)

// DialogState is the user-visible state of the current interaction.
type DialogState uint8

const (
	DialogIdle DialogState = iota
	DialogListening
	DialogExpecting
	DialogThinking
	DialogSpeaking
	DialogFinished
)

// String returns a human-readable state name.
func (s DialogState) String() string {
	switch s {
	case DialogIdle:
		return "IDLE"
	case DialogListening:
		return "LISTENING"
	case DialogExpecting:
		return "EXPECTING"
	case DialogThinking:
		return "THINKING"
	case DialogSpeaking:
		return "SPEAKING"
	case DialogFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// DialogStateObserver receives dialog state transitions.
type DialogStateObserver interface {
	OnDialogStateChanged(state DialogState)
}

// Initiator says what started a recognition.
type Initiator uint8

const (
	InitiatorWakeword Initiator = iota
	InitiatorTap
	InitiatorPressAndHold
)

// String returns a human-readable initiator name.
func (i Initiator) String() string {
	switch i {
	case InitiatorWakeword:
		return "WAKEWORD"
	case InitiatorTap:
		return "TAP"
	case InitiatorPressAndHold:
		return "PRESS_AND_HOLD"
	default:
		return "UNKNOWN"
	}
}

// Index is a sample position in an audio stream.
type Index uint64

// IndexUnspecified marks a stream position that was not supplied.
const IndexUnspecified Index = math.MaxUint64

// AudioProvider describes the audio stream a recognition reads from.
type AudioProvider struct {
	Name            string
	Format          string
	AlwaysReadable  bool
	CanOverride     bool
	CanBeOverridden bool
}

// RecognizeRequest carries everything a recognition needs.
type RecognizeRequest struct {
	Provider      AudioProvider
	Initiator     Initiator
	StartOfSpeech time.Time
	Begin         Index
	End           Index
	Keyword       string
	Metadata      []byte
}

// RecognizerState is the state of the speech recognizer.
type RecognizerState uint8

const (
	RecognizerIdle RecognizerState = iota
	RecognizerExpectingSpeech
	RecognizerRecognizing
	RecognizerBusy
)

// RecognizerObserver receives recognizer state changes.
type RecognizerObserver interface {
	OnRecognizerStateChanged(state RecognizerState)
}

// Recognizer captures user speech and streams it to the service.
type Recognizer interface {
	Agent
	Subject[RecognizerObserver]
	Recognize(req RecognizeRequest) *future.Future[bool]
	StopCapture() *future.Future[bool]
	ResetState()
}

// SynthesizerState is the state of speech output.
type SynthesizerState uint8

const (
	SynthesizerFinished SynthesizerState = iota
	SynthesizerPlaying
	SynthesizerInterrupted
	SynthesizerGainingFocus
	SynthesizerLosingFocus
)

// SynthesizerObserver receives speech output state changes.
type SynthesizerObserver interface {
	OnSynthesizerStateChanged(state SynthesizerState)
}

// SpeechSynthesizer plays speech returned by the service.
type SpeechSynthesizer interface {
	Agent
	Subject[SynthesizerObserver]
}

// InteractionObserver receives request processing boundaries.
type InteractionObserver interface {
	OnRequestProcessingStarted()
	OnRequestProcessingCompleted()
}

// InteractionModel tracks multi-turn request processing.
type InteractionModel interface {
	Agent
	Subject[InteractionObserver]
}
