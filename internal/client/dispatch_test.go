package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/client"
)

var micProvider = capability.AudioProvider{Name: "mic", Format: "LPCM16", AlwaysReadable: true, CanOverride: true}

func ready(t *testing.T, f interface {
	WaitFor(time.Duration) (bool, bool)
}) bool {
	t.Helper()
	v, ok := f.WaitFor(0)
	require.True(t, ok, "future should already be resolved")
	return v
}

func TestWakeWord_OfflineStopStopsLocally(t *testing.T) {
	b := newBackend()
	c := build(t, b)

	result := c.NotifyOfWakeWord(micProvider, 0, 16000, client.StopKeyword, time.Now(), nil)

	assert.True(t, ready(t, result))
	assert.Equal(t, 1, b.Recorder.Count("audio-focus-manager.stopForegroundActivity"))
	assert.Empty(t, b.Recognizer.Requests())
}

func TestWakeWord_OfflineOtherKeywordIgnored(t *testing.T) {
	b := newBackend()
	c := build(t, b)

	result := c.NotifyOfWakeWord(micProvider, 0, 16000, "alexa", time.Now(), nil)

	assert.False(t, ready(t, result))
	assert.Zero(t, b.Recorder.Count("audio-focus-manager.stopForegroundActivity"))
	assert.Empty(t, b.Recognizer.Requests())
}

func TestWakeWord_OnlineDelegatesToRecognizer(t *testing.T) {
	b := newBackend()
	dialog := &dialogLog{}
	c := build(t, b, func(r *client.Request) {
		r.Observers.Dialog = []capability.DialogStateObserver{dialog}
	})
	require.NoError(t, c.Connect(false))

	start := time.Now()
	result := c.NotifyOfWakeWord(micProvider, 100, 8100, "alexa", start, []byte("meta"))

	assert.True(t, ready(t, result))
	reqs := b.Recognizer.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, capability.RecognizeRequest{
		Provider:      micProvider,
		Initiator:     capability.InitiatorWakeword,
		StartOfSpeech: start,
		Begin:         100,
		End:           8100,
		Keyword:       "alexa",
		Metadata:      []byte("meta"),
	}, reqs[0])
	assert.Equal(t, capability.DialogListening, c.DialogState())
	assert.Contains(t, dialog.states, capability.DialogListening)
	assert.Equal(t, []string{"wakeword"}, b.SystemSoundPlayer.Played())
}

func TestWakeWord_OnlineStopKeywordGoesToService(t *testing.T) {
	b := newBackend()
	c := build(t, b)
	require.NoError(t, c.Connect(false))

	assert.True(t, ready(t, c.NotifyOfWakeWord(micProvider, 0, 10, client.StopKeyword, time.Now(), nil)))
	assert.Zero(t, b.Recorder.Count("audio-focus-manager.stopForegroundActivity"))
	assert.Len(t, b.Recognizer.Requests(), 1)
}

func TestTapAndHoldToTalk(t *testing.T) {
	b := newBackend()
	c := build(t, b)

	assert.True(t, ready(t, c.NotifyOfTapToTalk(micProvider, 42, time.Time{})))
	assert.True(t, ready(t, c.NotifyOfHoldToTalkStart(micProvider, time.Time{})))

	reqs := b.Recognizer.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, capability.InitiatorTap, reqs[0].Initiator)
	assert.Equal(t, capability.Index(42), reqs[0].Begin)
	assert.Equal(t, capability.IndexUnspecified, reqs[0].End)
	assert.Equal(t, capability.InitiatorPressAndHold, reqs[1].Initiator)
	assert.Equal(t, capability.IndexUnspecified, reqs[1].Begin)
	assert.Equal(t, capability.IndexUnspecified, reqs[1].End)

	assert.True(t, ready(t, c.NotifyOfHoldToTalkEnd()))
	assert.True(t, ready(t, c.NotifyOfTapToTalkEnd()))
	assert.Equal(t, 2, b.Recorder.Count("recognizer.stopCapture"))
	assert.Equal(t, capability.DialogThinking, c.DialogState())
}

func TestRecognizerRejectionIsPassedThrough(t *testing.T) {
	b := newBackend()
	b.Recognizer.SetResult(false)
	c := build(t, b)

	assert.False(t, ready(t, c.NotifyOfTapToTalk(micProvider, 0, time.Time{})))
}

func TestTriggersAfterCloseResolveFalse(t *testing.T) {
	b := newBackend()
	c := build(t, b)
	c.Close()

	assert.False(t, ready(t, c.NotifyOfWakeWord(micProvider, 0, 1, client.StopKeyword, time.Now(), nil)))
	assert.False(t, ready(t, c.NotifyOfTapToTalk(micProvider, 0, time.Time{})))
	assert.False(t, ready(t, c.NotifyOfHoldToTalkStart(micProvider, time.Time{})))
	assert.False(t, ready(t, c.NotifyOfHoldToTalkEnd()))
	assert.False(t, ready(t, c.NotifyOfTapToTalkEnd()))
	assert.Empty(t, b.Recognizer.Requests())
	assert.Zero(t, b.Recorder.Count("audio-focus-manager.stopForegroundActivity"))
}

func TestInteractionMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	b := newBackend()
	c := build(t, b, func(r *client.Request) {
		r.Meter = provider.Meter("test")
	})

	c.NotifyOfWakeWord(micProvider, 0, 1, client.StopKeyword, time.Now(), nil)
	c.NotifyOfWakeWord(micProvider, 0, 1, "alexa", time.Now(), nil)
	require.NoError(t, c.Connect(false))
	c.NotifyOfTapToTalk(micProvider, 0, time.Time{})

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	var connects int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				switch m.Name {
				case "smartscreen.interactions":
					trigger, _ := dp.Attributes.Value(attribute.Key("trigger"))
					outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
					counts[trigger.AsString()+"/"+outcome.AsString()] += dp.Value
				case "smartscreen.connects":
					connects += dp.Value
				}
			}
		}
	}

	assert.Equal(t, map[string]int64{
		"wakeword/local_stop": 1,
		"wakeword/ignored":    1,
		"tap/delegated":       1,
	}, counts)
	assert.Equal(t, int64(1), connects)
}

func TestBuildFailureMetric(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	b := newBackend()
	req := b.Request()
	req.Meter = provider.Meter("test")
	req.Device = nil
	_, err := client.Build(req)
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	var found bool
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if m.Name != "smartscreen.build.failures" {
			continue
		}
		sum := m.Data.(metricdata.Sum[int64])
		require.Len(t, sum.DataPoints, 1)
		reason, _ := sum.DataPoints[0].Attributes.Value("reason")
		assert.Equal(t, "nullDeviceInfo", reason.AsString())
		found = true
	}
	assert.True(t, found)
}

type dialogLog struct {
	states []capability.DialogState
}

func (l *dialogLog) OnDialogStateChanged(s capability.DialogState) {
	l.states = append(l.states, s)
}
