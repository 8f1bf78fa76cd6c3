package daemon

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/config"
	"github.com/jmylchreest/smartscreen/internal/connection"
)

type silentOutput struct{ sync.Mutex }

func (*silentOutput) Init(beep.SampleRate, int) error { return nil }
func (*silentOutput) Play(...beep.Streamer)           {}
func (*silentOutput) Close()                          {}

type sent struct {
	summary string
	level   NotificationLevel
}

type notifyLog struct {
	mu   sync.Mutex
	sent []sent
}

func (l *notifyLog) send(summary, _ string, level NotificationLevel) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = append(l.sent, sent{summary, level})
	return nil
}

func (l *notifyLog) summaries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.sent))
	for i, s := range l.sent {
		out[i] = s.summary
	}
	return out
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.Dir = filepath.Join(t.TempDir(), "data")
	cfg.Service.Gateway = "https://gateway.test"
	cfg.Features.Comms = true
	return cfg
}

func newDaemon(t *testing.T, cfg *config.Config, opts Options) *Daemon {
	t.Helper()
	opts.Output = &silentOutput{}
	opts.Logger = quiet()
	d, err := New(cfg, opts)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

func TestNew_BuildsClientFromConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Device.ClientID = "kitchen"
	cfg.Device.SerialNumber = "SN-7"

	d := newDaemon(t, cfg, Options{})
	c := d.Client()

	assert.Equal(t, "https://gateway.test", c.Gateway())
	assert.Contains(t, c.DefaultEndpointID(), "kitchen")
	assert.True(t, c.IsCommsEnabled())
	assert.NotContains(t, c.Features().Names(), capability.FeatureMeetings)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Audio.Volume = 200

	_, err := New(cfg, Options{Output: &silentOutput{}, Logger: quiet()})
	assert.Error(t, err)
}

func TestNew_BuildFailureReleasesStores(t *testing.T) {
	cfg := testConfig(t)
	cfg.Service.PresentationMaxVersion = "not-a-version"

	_, err := New(cfg, Options{Output: &silentOutput{}, Logger: quiet()})
	assert.Error(t, err)
}

func TestRun_ConnectsAndPersists(t *testing.T) {
	cfg := testConfig(t)
	notes := &notifyLog{}
	d := newDaemon(t, cfg, Options{Notify: notes.send, Version: "1.2.3"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	assert.Eventually(t, d.Client().IsConnected, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"smartscreend Started"}, notes.summaries())
	}, 2*time.Second, 10*time.Millisecond)

	require.True(t, d.Client().SettingsManager().SetSetting("locale", "en-GB"))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	raw, err := os.ReadFile(cfg.Storage.Path(config.StoreSettings))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "en-GB")
	assert.False(t, d.Client().IsConnected())
}

func TestRun_WithoutConnectOnStart(t *testing.T) {
	cfg := testConfig(t)
	cfg.Service.ConnectOnStart = false
	d := newDaemon(t, cfg, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, d.Run(ctx))

	status, _ := d.Client().ConnectionStatus()
	assert.NotEqual(t, connection.StatusConnected, status)
}

func TestApply_HotReload(t *testing.T) {
	cfg := testConfig(t)
	notes := &notifyLog{}
	level := new(slog.LevelVar)
	d := newDaemon(t, cfg, Options{Notify: notes.send, Level: level})

	next := *cfg
	next.Log.Level = "debug"
	next.Service.FirmwareVersion = 42
	next.Service.DocumentIdleTimeout = config.Duration(5 * time.Second)
	next.Audio.Volume = 10
	next.Features.Captions = !cfg.Features.Captions
	d.Apply(&next)

	assert.Equal(t, slog.LevelDebug, level.Level())
	require.NotNil(t, d.Backend().SoftwareInfoSender())
	assert.Equal(t, capability.FirmwareVersion(42), d.Backend().SoftwareInfoSender().Version())
	assert.Equal(t, 5*time.Second, d.Backend().Presentation.IdleTimeout())
	assert.Same(t, &next, d.Config())
	assert.Equal(t, []string{"Restart Required", "Configuration Reloaded"}, notes.summaries())
}

func TestApply_FromWatchedFile(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "smartscreend.toml")
	require.NoError(t, cfg.Save(path))

	d := newDaemon(t, cfg, Options{ConfigPath: path})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	assert.Eventually(t, d.Client().IsConnected, 2*time.Second, 10*time.Millisecond)

	next := *cfg
	next.Service.FirmwareVersion = 77
	require.NoError(t, next.Save(path))

	assert.Eventually(t, func() bool {
		s := d.Backend().SoftwareInfoSender()
		return s != nil && s.Version() == 77
	}, 5*time.Second, 20*time.Millisecond)
}

func TestRestartSections(t *testing.T) {
	a := config.DefaultConfig()
	b := *a
	assert.Empty(t, restartSections(a, &b))

	b.Device.FriendlyName = "Hall"
	b.Focus.Visual = []config.ChannelConfig{{Name: "Visual", Priority: 1}}
	b.Service.Gateway = "https://elsewhere"
	assert.Equal(t, []string{"device", "focus", "service"}, restartSections(a, &b))
}

func TestClose_Idempotent(t *testing.T) {
	d := newDaemon(t, testConfig(t), Options{})
	d.Close()
	d.Close()
	assert.False(t, d.Client().SetFirmwareVersion(3))
}
