package loopback

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/future"
)

// Recognizer records recognitions and drives its observers through a
// listening cycle.
type Recognizer struct {
	*Observable[capability.RecognizerObserver]
	earcon capability.MediaPlayer
	logger *slog.Logger

	mu       sync.Mutex
	requests []capability.RecognizeRequest
	result   bool
}

// NewRecognizer returns a recognizer that accepts every request. A non-nil
// earcon is played when capture starts.
func NewRecognizer(rec *Recorder, earcon capability.MediaPlayer, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recognizer{
		Observable: newObservable[capability.RecognizerObserver](rec, "recognizer", "SpeechRecognizer", "2.3"),
		earcon:     earcon,
		logger:     logger,
		result:     true,
	}
}

// SetResult sets what later recognitions resolve to.
func (r *Recognizer) SetResult(ok bool) {
	r.mu.Lock()
	r.result = ok
	r.mu.Unlock()
}

// Recognize records req and starts listening.
func (r *Recognizer) Recognize(req capability.RecognizeRequest) *future.Future[bool] {
	r.record("recognize:" + req.Initiator.String())
	r.mu.Lock()
	r.requests = append(r.requests, req)
	ok := r.result
	r.mu.Unlock()

	if ok {
		if r.earcon != nil {
			if err := r.earcon.Play("wakeword"); err != nil {
				r.logger.Warn("failed to play earcon", "error", err)
			}
		}
		r.setState(capability.RecognizerRecognizing)
	}
	return future.Resolved(ok)
}

// StopCapture ends capture and waits for the response.
func (r *Recognizer) StopCapture() *future.Future[bool] {
	r.record("stopCapture")
	r.setState(capability.RecognizerBusy)
	return future.Resolved(true)
}

// ResetState abandons the current recognition.
func (r *Recognizer) ResetState() {
	r.record("resetState")
	r.setState(capability.RecognizerIdle)
}

// Requests returns the recognitions received so far.
func (r *Recognizer) Requests() []capability.RecognizeRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]capability.RecognizeRequest(nil), r.requests...)
}

func (r *Recognizer) setState(s capability.RecognizerState) {
	r.Notify(func(o capability.RecognizerObserver) { o.OnRecognizerStateChanged(s) })
}

// SpeechSynthesizer plays speech on demand.
type SpeechSynthesizer struct {
	*Observable[capability.SynthesizerObserver]
	player capability.MediaPlayer
}

// NewSpeechSynthesizer returns a synthesizer playing through player.
func NewSpeechSynthesizer(rec *Recorder, player capability.MediaPlayer) *SpeechSynthesizer {
	return &SpeechSynthesizer{
		Observable: newObservable[capability.SynthesizerObserver](rec, "speech-synthesizer", "SpeechSynthesizer", "1.3"),
		player:     player,
	}
}

// Speak plays source and reports the speech lifecycle.
func (s *SpeechSynthesizer) Speak(source string) error {
	s.record("speak")
	s.notify(capability.SynthesizerPlaying)
	defer s.notify(capability.SynthesizerFinished)
	if s.player == nil {
		return nil
	}
	if err := s.player.Play(source); err != nil {
		return fmt.Errorf("failed to play speech: %w", err)
	}
	return nil
}

func (s *SpeechSynthesizer) notify(state capability.SynthesizerState) {
	s.Notify(func(o capability.SynthesizerObserver) { o.OnSynthesizerStateChanged(state) })
}

// InteractionModel reports request processing.
type InteractionModel struct {
	*Observable[capability.InteractionObserver]
}

// NewInteractionModel returns an interaction model.
func NewInteractionModel(rec *Recorder) *InteractionModel {
	return &InteractionModel{newObservable[capability.InteractionObserver](rec, "interaction-model", "InteractionModel", "1.2")}
}

// Process reports a request that produces no speech.
func (m *InteractionModel) Process() {
	m.Notify(func(o capability.InteractionObserver) { o.OnRequestProcessingStarted() })
	m.Notify(func(o capability.InteractionObserver) { o.OnRequestProcessingCompleted() })
}

// FocusManager grants every request immediately.
type FocusManager struct {
	*Component
	mu         sync.Mutex
	grant      bool
	foreground map[string]capability.ChannelObserver
}

// NewFocusManager returns a focus manager named name.
func NewFocusManager(rec *Recorder, name string) *FocusManager {
	return &FocusManager{
		Component:  newComponent(rec, name, "", ""),
		grant:      true,
		foreground: make(map[string]capability.ChannelObserver),
	}
}

// SetGrant controls whether acquisitions succeed.
func (f *FocusManager) SetGrant(grant bool) {
	f.mu.Lock()
	f.grant = grant
	f.mu.Unlock()
}

// AcquireChannel gives o the foreground of channel.
func (f *FocusManager) AcquireChannel(channel string, o capability.ChannelObserver, interfaceName string) bool {
	f.record("acquireChannel:" + channel + ":" + interfaceName)
	f.mu.Lock()
	if !f.grant {
		f.mu.Unlock()
		return false
	}
	previous := f.foreground[channel]
	f.foreground[channel] = o
	f.mu.Unlock()

	if previous != nil && previous != o {
		previous.OnFocusChanged(capability.FocusNone, capability.MixingMustPause)
	}
	o.OnFocusChanged(capability.FocusForeground, capability.MixingPrimary)
	return true
}

// ReleaseChannel takes the channel back from o.
func (f *FocusManager) ReleaseChannel(channel string, o capability.ChannelObserver) bool {
	f.record("releaseChannel:" + channel)
	f.mu.Lock()
	held := f.foreground[channel] == o
	if held {
		delete(f.foreground, channel)
	}
	f.mu.Unlock()

	if held {
		o.OnFocusChanged(capability.FocusNone, capability.MixingMustPause)
	}
	return held
}

// StopForegroundActivity records the stop.
func (f *FocusManager) StopForegroundActivity() {
	f.record("stopForegroundActivity")
}

// MediaPlayer records playback.
type MediaPlayer struct {
	*Component
	mu     sync.Mutex
	played []string
}

// NewMediaPlayer returns a media player named name.
func NewMediaPlayer(rec *Recorder, name string) *MediaPlayer {
	return &MediaPlayer{Component: newComponent(rec, name, "", "")}
}

// Play records source.
func (p *MediaPlayer) Play(source string) error {
	p.record("play:" + source)
	p.mu.Lock()
	p.played = append(p.played, source)
	p.mu.Unlock()
	return nil
}

// Stop records the stop.
func (p *MediaPlayer) Stop() error {
	p.record("stop")
	return nil
}

// Played returns the sources played so far.
func (p *MediaPlayer) Played() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.played...)
}

// MediaPlayerFactory creates loopback players.
type MediaPlayerFactory struct {
	rec *Recorder
}

// CreatePlayer returns a new player.
func (f *MediaPlayerFactory) CreatePlayer(name string) (capability.MediaPlayer, error) {
	return NewMediaPlayer(f.rec, name), nil
}

// ChannelVolume pairs a sink with its speaker type.
type ChannelVolume struct {
	player capability.MediaPlayer
	kind   capability.SpeakerType
}

// SpeakerType returns the volume group.
func (v *ChannelVolume) SpeakerType() capability.SpeakerType { return v.kind }

// Player returns the sink.
func (v *ChannelVolume) Player() capability.MediaPlayer { return v.player }

// ChannelVolumeFactory creates channel volumes, optionally failing.
type ChannelVolumeFactory struct {
	Err error
}

// CreateChannelVolume wraps p.
func (f *ChannelVolumeFactory) CreateChannelVolume(p capability.MediaPlayer, t capability.SpeakerType) (capability.ChannelVolume, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return &ChannelVolume{player: p, kind: t}, nil
}
