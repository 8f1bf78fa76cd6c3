package audio

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/jmylchreest/smartscreen/internal/config"
)

// Named sources the sinks resolve through the configured sound table.
const (
	SoundWakeword     = "wakeword"
	SoundAlarm        = "alarm"
	SoundNotification = "notification"
	SoundRingtone     = "ringtone"
)

// Manager owns the engine, the fixed sinks the client is built with, and
// the watcher that re-decodes a named sound when its file is rewritten.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	engine  *Engine
	watcher *SoundWatcher
	config  config.AudioConfig
	sounds  map[string]string

	Speak         *Sink
	Alerts        *Sink
	Notifications *Sink
	Bluetooth     *Sink
	Ringtone      *Sink
	SystemSound   *Sink
}

// NewManager creates a manager writing to out, or the system speaker if nil.
func NewManager(cfg config.AudioConfig, out Output, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	engine := NewEngine(out, logger)
	m := &Manager{
		logger: logger,
		engine: engine,
	}
	m.watcher = NewSoundWatcher(m.reload, logger)
	m.Speak = NewSink("speak", engine, nil)
	m.Alerts = NewSink("alerts", engine, nil)
	m.Notifications = NewSink("notifications", engine, nil)
	m.Bluetooth = NewSink("bluetooth", engine, nil)
	m.Ringtone = NewSink("ringtone", engine, nil)
	m.SystemSound = NewSink("system-sound", engine, nil)

	m.apply(cfg)
	return m
}

// Engine returns the shared engine. It doubles as the player factory.
func (m *Manager) Engine() *Engine {
	return m.engine
}

func (m *Manager) sinks() []*Sink {
	return []*Sink{m.Speak, m.Alerts, m.Notifications, m.Bluetooth, m.Ringtone, m.SystemSound}
}

// apply loads volume and the sound table from cfg.
func (m *Manager) apply(cfg config.AudioConfig) {
	sounds := map[string]string{
		SoundWakeword:     config.ExpandPath(cfg.Sounds.Wakeword),
		SoundAlarm:        config.ExpandPath(cfg.Sounds.Alarm),
		SoundNotification: config.ExpandPath(cfg.Sounds.Notification),
		SoundRingtone:     config.ExpandPath(cfg.Sounds.Ringtone),
	}
	for name, path := range sounds {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found", "sound", name, "path", path)
			sounds[name] = ""
		}
	}

	m.mu.Lock()
	m.config = cfg
	m.sounds = sounds
	m.mu.Unlock()

	m.engine.SetVolume(float64(cfg.Volume) / 100.0)
	for _, s := range m.sinks() {
		s.SetSounds(sounds)
		s.SetEnabled(cfg.Enabled)
	}
	m.watcher.SetSounds(sounds)
}

// reload replaces the cached decode of a rewritten sound file.
func (m *Manager) reload(name, path string) {
	m.engine.InvalidateCache(path)
	if err := m.engine.Preload(path); err != nil {
		m.logger.Warn("sound not reloaded", "reason", "soundReloadFailed", "sound", name, "path", path, "error", err)
		return
	}
	m.logger.Info("sound reloaded", "sound", name, "path", path)
}

// Start preloads the configured sounds and starts the sound watcher.
func (m *Manager) Start(ctx context.Context) error {
	m.preload()
	if err := m.watcher.Start(ctx); err != nil {
		m.logger.Warn("sound hot-reload disabled", "reason", "soundWatchFailed", "error", err)
	}
	m.logger.Info("audio manager started", "enabled", m.Enabled())
	return nil
}

func (m *Manager) preload() {
	m.mu.RLock()
	paths := make([]string, 0, len(m.sounds))
	for _, path := range m.sounds {
		if path != "" {
			paths = append(paths, path)
		}
	}
	m.mu.RUnlock()

	for _, path := range paths {
		if err := m.engine.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
	}
}

// Stop shuts down the watcher and the engine.
func (m *Manager) Stop() {
	m.watcher.Stop()
	m.engine.Close()
	m.logger.Debug("audio manager stopped")
}

// Enabled reports whether local sounds are on.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.Enabled
}

// Sound returns the resolved path for a named sound.
func (m *Manager) Sound(name string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sounds[name]
}

// UpdateConfig applies a hot-reloaded audio configuration.
func (m *Manager) UpdateConfig(cfg config.AudioConfig) {
	m.engine.ClearCache()
	m.apply(cfg)
	m.preload()
	m.logger.Debug("audio manager config updated")
}
