package audio

import (
	"path/filepath"
	"sync"

	"github.com/gopxl/beep/v2"
)

// Sink is one named media player mixed onto an Engine. A new Play cuts off
// whatever the sink was playing.
type Sink struct {
	name   string
	engine *Engine
	sounds map[string]string

	mu      sync.Mutex
	ctrl    *beep.Ctrl
	enabled bool
}

// NewSink creates a sink. sounds maps source names such as "wakeword" to
// files; a mapped empty path is silent.
func NewSink(name string, engine *Engine, sounds map[string]string) *Sink {
	if sounds == nil {
		sounds = map[string]string{}
	}
	return &Sink{name: name, engine: engine, sounds: sounds, enabled: true}
}

// Name returns the sink name.
func (s *Sink) Name() string {
	return s.name
}

// SetEnabled mutes or unmutes the sink. Muting stops current playback.
func (s *Sink) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
	if !enabled {
		_ = s.Stop()
	}
}

// SetSounds replaces the named sound table.
func (s *Sink) SetSounds(sounds map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sounds == nil {
		sounds = map[string]string{}
	}
	s.sounds = sounds
}

// Play starts source. Named sources resolve through the sound table;
// anything else without a file extension has nothing to play.
func (s *Sink) Play(source string) error {
	s.mu.Lock()
	enabled := s.enabled
	path, named := s.sounds[source]
	s.mu.Unlock()

	if !enabled {
		return nil
	}
	if !named {
		path = source
		if filepath.Ext(path) == "" {
			s.engine.logger.Debug("no sound for source", "sink", s.name, "source", source)
			return nil
		}
	}
	if path == "" {
		return nil
	}

	stream, err := s.engine.stream(path)
	if err != nil {
		return err
	}
	ctrl := &beep.Ctrl{Streamer: stream}

	s.engine.out.Lock()
	s.mu.Lock()
	if s.ctrl != nil {
		s.ctrl.Streamer = nil
	}
	s.ctrl = ctrl
	s.mu.Unlock()
	s.engine.out.Unlock()

	s.engine.out.Play(ctrl)
	s.engine.logger.Debug("playing", "sink", s.name, "source", source, "path", path)
	return nil
}

// Stop ends current playback. Stopping an idle sink is a no-op.
func (s *Sink) Stop() error {
	s.engine.out.Lock()
	defer s.engine.out.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl != nil {
		s.ctrl.Streamer = nil
		s.ctrl = nil
	}
	return nil
}

// Playing reports whether the sink has a stream that has not been stopped.
func (s *Sink) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl != nil
}
