package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/metric"

	"github.com/jmylchreest/smartscreen/internal/audio"
	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/client"
	"github.com/jmylchreest/smartscreen/internal/config"
	"github.com/jmylchreest/smartscreen/internal/connection"
	"github.com/jmylchreest/smartscreen/internal/dbus"
	"github.com/jmylchreest/smartscreen/internal/endpoint"
	"github.com/jmylchreest/smartscreen/internal/loopback"
	"github.com/jmylchreest/smartscreen/internal/storage"
)

const appName = "smartscreend"

// Options configure a Daemon.
type Options struct {
	// ConfigPath is watched for changes. Empty disables the watcher.
	ConfigPath string
	// Output receives local sounds. Nil selects the system speaker.
	Output audio.Output
	// Bus exports the control interface on the session bus.
	Bus bool
	// Notify delivers desktop notifications. Nil disables them.
	Notify NotifyFunc
	// Level is adjusted when the log level is reloaded.
	Level   *slog.LevelVar
	Logger  *slog.Logger
	Meter   metric.Meter
	Version string
}

// Daemon owns the client and everything it is built from.
type Daemon struct {
	opts   Options
	logger *slog.Logger

	mu  sync.RWMutex
	cfg *config.Config

	backend  *loopback.Backend
	audio    *audio.Manager
	stores   map[string]*storage.FileStore
	client   *client.Client
	server   *dbus.ControlServer
	watcher  *config.Watcher
	notifier *Notifier

	closeOnce sync.Once
}

// New builds the client described by cfg. Nothing is started until Run.
func New(cfg *config.Config, opts Options) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	d := &Daemon{
		opts:     opts,
		logger:   logger,
		cfg:      cfg,
		audio:    audio.NewManager(cfg.Audio, opts.Output, logger.With("component", "audio")),
		stores:   make(map[string]*storage.FileStore),
		notifier: NewNotifier(opts.Notify, logger.With("component", "notifier")),
	}

	for _, name := range []string{
		config.StoreSettings, config.StoreMessages, config.StoreAlerts,
		config.StoreNotifications, config.StoreMisc,
	} {
		s := storage.NewFileStore(cfg.Storage.Path(name), logger)
		if name != config.StoreSettings {
			// The client opens and closes the settings store itself
			if err := s.Open(); err != nil {
				d.closeStores()
				return nil, fmt.Errorf("failed to open %s store: %w", name, err)
			}
		}
		d.stores[name] = s
	}

	d.backend = d.newBackend(cfg)
	c, err := client.Build(d.request(cfg))
	if err != nil {
		d.closeStores()
		d.audio.Stop()
		return nil, err
	}
	d.client = c

	if timeout := cfg.Service.DocumentIdleTimeout.Duration(); timeout > 0 {
		c.SetDocumentIdleTimeout(timeout)
	}
	d.server = dbus.NewControlServer(c, cfg.Service.TriggerTimeout.Duration(), logger.With("component", "dbus"))
	return d, nil
}

// newBackend prepares the in-process service for cfg, routing its sounds
// through the local sinks.
func (d *Daemon) newBackend(cfg *config.Config) *loopback.Backend {
	b := loopback.NewBackend(d.logger.With("component", "service"))
	b.Router = loopback.NewRouter(b.Recorder, cfg.Service.Gateway, b.Logger)
	b.Endpoints.Preset(endpoint.RegistrationSucceeded)
	b.Recognizer = loopback.NewRecognizer(b.Recorder, d.audio.SystemSound, b.Logger)
	b.Synthesizer = loopback.NewSpeechSynthesizer(b.Recorder, d.audio.Speak)
	b.Alerts = loopback.NewAlerts(b.Recorder, d.audio.Alerts)
	return b
}

// request maps cfg onto a client request.
func (d *Daemon) request(cfg *config.Config) client.Request {
	req := d.backend.Request()

	id := cfg.Identity()
	req.Device = &id

	req.Audio.SpeakPlayer = d.audio.Speak
	req.Audio.AudioPlayerFactory = d.audio.Engine()
	req.Audio.AlertsPlayer = d.audio.Alerts
	req.Audio.NotificationsPlayer = d.audio.Notifications
	req.Audio.BluetoothPlayer = d.audio.Bluetooth
	req.Audio.RingtonePlayer = d.audio.Ringtone
	req.Audio.SystemSoundPlayer = d.audio.SystemSound

	req.Storage = client.StorageInputs{
		DeviceSettings: d.stores[config.StoreSettings],
		Messages:       d.stores[config.StoreMessages],
		Alerts:         d.stores[config.StoreAlerts],
		Notifications:  d.stores[config.StoreNotifications],
		Misc:           d.stores[config.StoreMisc],
	}

	req.Presentation.MaxVersion = cfg.Service.PresentationMaxVersion
	req.Software = client.SoftwareInputs{
		FirmwareVersion: capability.FirmwareVersion(cfg.Service.FirmwareVersion),
		SendOnConnected: cfg.Service.SendSoftwareInfo,
	}
	req.Features = client.FeatureFlags{
		Telephony:           cfg.Features.Telephony,
		Meetings:            cfg.Features.Meetings,
		Comms:               cfg.Features.Comms,
		MultiRoomMusic:      cfg.Features.MultiRoomMusic,
		Captions:            cfg.Features.Captions,
		RevokeAuthorization: cfg.Features.RevokeAuthorization,
	}
	req.Focus = client.FocusInputs{
		Audio:  cfg.AudioChannels(),
		Visual: cfg.VisualChannels(),
	}
	req.Observers.Connection = []connection.StatusObserver{d.notifier}

	req.Logger = d.logger
	req.Meter = d.opts.Meter
	return req
}

// Client returns the running client.
func (d *Daemon) Client() *client.Client {
	return d.client
}

// Backend returns the in-process service the client talks to.
func (d *Daemon) Backend() *loopback.Backend {
	return d.backend
}

// Config returns the active configuration.
func (d *Daemon) Config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Run starts the daemon and blocks until ctx ends, then tears everything
// down.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.Close()

	if err := d.audio.Start(ctx); err != nil {
		return fmt.Errorf("failed to start audio: %w", err)
	}

	if d.opts.Bus {
		if err := d.server.Start(); err != nil {
			return fmt.Errorf("failed to start D-Bus server: %w", err)
		}
	}

	if d.opts.ConfigPath != "" {
		w, err := config.NewWatcher(d.opts.ConfigPath, d.Apply, d.logger.With("component", "config"))
		if err != nil {
			return fmt.Errorf("failed to create config watcher: %w", err)
		}
		if err := w.Start(); err != nil {
			d.logger.Warn("config hot-reload disabled", "reason", "watcherStartFailed", "error", err)
		} else {
			d.mu.Lock()
			d.watcher = w
			d.mu.Unlock()
		}
	}

	if d.Config().Service.ConnectOnStart {
		if err := d.client.Connect(true); err != nil {
			d.logger.Error("initial connect failed", "reason", "connectFailed", "error", err)
		}
	}

	d.notifier.NotifyStartup(d.opts.Version)
	d.logger.Info(appName+" ready", "gateway", d.client.Gateway(), "features", d.client.Features().Names())

	<-ctx.Done()
	return nil
}

// Apply takes a reloaded configuration. Settings that shape the client's
// structure are reported and left for the next restart.
func (d *Daemon) Apply(cfg *config.Config) {
	d.mu.Lock()
	prev := d.cfg
	d.cfg = cfg
	d.mu.Unlock()

	if d.opts.Level != nil {
		if level, err := config.ParseLevel(cfg.Log.Level); err == nil {
			d.opts.Level.Set(level)
		}
	}

	d.audio.UpdateConfig(cfg.Audio)
	d.server.SetTimeout(cfg.Service.TriggerTimeout.Duration())

	if cfg.Service.DocumentIdleTimeout != prev.Service.DocumentIdleTimeout && cfg.Service.DocumentIdleTimeout > 0 {
		d.client.SetDocumentIdleTimeout(cfg.Service.DocumentIdleTimeout.Duration())
	}
	if cfg.Service.FirmwareVersion != prev.Service.FirmwareVersion && cfg.Service.FirmwareVersion > 0 {
		d.client.SetFirmwareVersion(capability.FirmwareVersion(cfg.Service.FirmwareVersion))
	}

	if sections := restartSections(prev, cfg); len(sections) > 0 {
		d.logger.Warn("configuration change needs restart", "reason", "restartRequired", "sections", sections)
		d.notifier.NotifyRestartRequired(sections)
	}

	d.logger.Info("configuration reloaded")
	d.notifier.NotifyConfigReloaded()
}

// restartSections lists the config sections that changed but are only read
// when the client is built.
func restartSections(prev, next *config.Config) []string {
	var out []string
	if prev.Device != next.Device {
		out = append(out, "device")
	}
	if prev.Features != next.Features {
		out = append(out, "features")
	}
	if !slices.Equal(prev.Focus.Audio, next.Focus.Audio) || !slices.Equal(prev.Focus.Visual, next.Focus.Visual) {
		out = append(out, "focus")
	}
	if prev.Storage != next.Storage {
		out = append(out, "storage")
	}
	if prev.Service.Gateway != next.Service.Gateway ||
		prev.Service.PresentationMaxVersion != next.Service.PresentationMaxVersion ||
		prev.Service.SendSoftwareInfo != next.Service.SendSoftwareInfo {
		out = append(out, "service")
	}
	return out
}

// Close tears down in reverse order of Run. It is safe to call more than once.
func (d *Daemon) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		w := d.watcher
		d.mu.Unlock()
		if w != nil {
			if err := w.Stop(); err != nil {
				d.logger.Warn("error stopping config watcher", "error", err)
			}
		}
		if err := d.server.Stop(); err != nil {
			d.logger.Warn("error stopping D-Bus server", "error", err)
		}
		d.client.Close()
		d.closeStores()
		d.audio.Stop()
		d.logger.Info(appName + " stopped")
	})
}

func (d *Daemon) closeStores() {
	for name, s := range d.stores {
		if err := s.Close(); err != nil {
			d.logger.Warn("error closing store", "store", name, "error", err)
		}
	}
}
