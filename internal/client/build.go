package client

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/connection"
	"github.com/jmylchreest/smartscreen/internal/dialog"
	"github.com/jmylchreest/smartscreen/internal/endpoint"
	"github.com/jmylchreest/smartscreen/internal/focus"
	"github.com/jmylchreest/smartscreen/internal/observer"
)

// Build validates req and assembles the client. On any failure it returns a
// *BuildError and no client; components created before the failure are shut
// down again.
func Build(req Request) (*Client, error) {
	logger := req.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m, err := newMetrics(req.Meter)
	if err != nil {
		logger.Error("build failed", "reason", "unableToCreateMetrics", "error", err)
		return nil, &BuildError{Reason: "unableToCreateMetrics", Err: err}
	}

	if berr := req.validate(); berr != nil {
		logger.Error("build failed", "reason", berr.Reason)
		m.buildFailed(berr.Reason)
		return nil, berr
	}

	c := &Client{
		parts:    &Components{},
		logger:   logger,
		wiring:   observer.NewTable(),
		features: capability.NewRegistry(),
		metrics:  m,
	}
	c.env = &Env{Request: &req, Components: c.parts, Logger: logger}
	c.forceExit = &forceExitObserver{client: c}
	c.capabilities = &capabilitiesObserver{client: c}

	if err := c.build(); err != nil {
		reason := "unknown"
		var berr *BuildError
		if errors.As(err, &berr) {
			reason = berr.Reason
		}
		logger.Error("build failed", "reason", reason, "error", err)
		m.buildFailed(reason)
		c.teardown()
		return nil, err
	}

	c.wiring.Apply()
	logger.Info("client built",
		"endpoint", c.parts.DefaultEndpoint.ID(),
		"features", c.features.Names(),
		"edges", len(c.wiring.Edges()),
	)
	return c, nil
}

// mustCreate runs a required factory.
func mustCreate[T any](c *Client, reason string, f Factory[T]) (T, error) {
	v, err := f(c.env)
	if err == nil && isNil(v) {
		err = ErrNoInstance
	}
	if err != nil {
		var zero T
		return zero, &BuildError{Reason: reason, Err: err}
	}
	return v, nil
}

// isNil reports whether v is nil or an interface holding a nil pointer,
// func, map, slice or channel.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// maybeCreate runs an optional factory when enabled. Failures are logged and
// leave the feature absent.
func maybeCreate[T any](c *Client, feature capability.Feature, enabled bool, f Factory[T]) T {
	var zero T
	if !enabled {
		return zero
	}
	if f == nil {
		c.logger.Warn("optional capability not created", "feature", feature, "reason", "nullFactory")
		return zero
	}

	v, err := f(c.env)
	if err == nil && isNil(v) {
		err = ErrNoInstance
	}
	if err != nil {
		c.logger.Warn("optional capability not created", "feature", feature, "reason", "creationFailed", "error", err)
		return zero
	}
	c.features.Set(feature, v)
	return v
}

func (c *Client) build() error {
	req, p, w := c.env.Request, c.parts, c.wiring
	f := &req.Factories
	logger := c.logger
	var err error

	p.Aggregator = dialog.NewAggregator(req.Observers.Dialog, logger.With("component", nameAggregator))

	// Connection plumbing.
	if p.Router, err = mustCreate(c, "unableToCreateMessageRouter", f.MessageRouter); err != nil {
		return err
	}
	if p.Gate, err = connection.NewGate(p.Router, req.Observers.Connection, logger.With("component", nameGate)); err != nil {
		return &BuildError{Reason: "unableToCreateConnectionGate", Err: err}
	}
	link[connection.InternetConnectionObserver](w, nameInternetMonitor, req.Network.InternetMonitor, nameGate, p.Gate)
	link[connection.StatusObserver](w, nameGate, p.Gate, nameCapabilitiesDelegate, req.Network.Capabilities)
	link[capability.CapabilitiesObserver](w, nameCapabilitiesDelegate, req.Network.Capabilities, nameClient, c.capabilities)

	if p.CertifiedSender, err = mustCreate(c, "unableToCreateCertifiedSender", f.CertifiedSender); err != nil {
		return err
	}
	if p.ExceptionSender, err = mustCreate(c, "unableToCreateExceptionSender", f.ExceptionSender); err != nil {
		return err
	}
	if p.Sequencer, err = mustCreate(c, "unableToCreateDirectiveSequencer", f.DirectiveSequencer); err != nil {
		return err
	}
	w.Add(nameGate, nameSequencer,
		func() { p.Gate.AddMessageObserver(p.Sequencer) },
		func() { p.Gate.RemoveMessageObserver(p.Sequencer) },
	)
	if p.RegistrationManager, err = mustCreate(c, "unableToCreateRegistrationManager", f.RegistrationManager); err != nil {
		return err
	}
	p.DefaultEndpoint = endpoint.NewDefaultBuilder(*req.Device)
	if p.EndpointManager, err = mustCreate(c, "unableToCreateEndpointManager", f.EndpointManager); err != nil {
		return err
	}

	if err := req.Storage.DeviceSettings.Open(); err != nil {
		return &BuildError{Reason: "deviceSettingStorageOpenFailed", Err: err}
	}
	c.settingsOpen = true

	if p.DoNotDisturb, err = mustCreate(c, "unableToCreateDoNotDisturb", f.DoNotDisturb); err != nil {
		return err
	}
	link[connection.StatusObserver](w, nameGate, p.Gate, nameDoNotDisturb, p.DoNotDisturb)
	if p.SettingsManager, err = mustCreate(c, "unableToCreateSettingsManager", f.SettingsManager); err != nil {
		return err
	}

	// Audio.
	if p.AudioActivityTracker, err = mustCreate(c, "unableToCreateAudioActivityTracker", f.AudioActivityTracker); err != nil {
		return err
	}
	if p.AudioChannels, err = channels(req.Focus.Audio, focus.DefaultAudioChannels(), focus.DialogChannel); err != nil {
		return &BuildError{Reason: "unableToReadAudioChannelConfiguration", Err: err}
	}
	if p.AudioFocus, err = mustCreate(c, "unableToCreateAudioFocusManager", f.AudioFocusManager); err != nil {
		return err
	}
	p.Captions = maybeCreate(c, capability.FeatureCaptions, req.Features.Captions, f.Captions)
	if p.UserInactivityMonitor, err = mustCreate(c, "unableToCreateUserInactivityMonitor", f.UserInactivityMonitor); err != nil {
		return err
	}
	if p.Recognizer, err = mustCreate(c, "unableToCreateRecognizer", f.Recognizer); err != nil {
		return err
	}
	link[capability.RecognizerObserver](w, nameRecognizer, p.Recognizer, nameAggregator, p.Aggregator)
	if p.SpeechSynthesizer, err = mustCreate(c, "unableToCreateSpeechSynthesizer", f.SpeechSynthesizer); err != nil {
		return err
	}
	link[capability.SynthesizerObserver](w, nameSpeechSynthesizer, p.SpeechSynthesizer, nameAggregator, p.Aggregator)
	if p.PlaybackController, err = mustCreate(c, "unableToCreatePlaybackController", f.PlaybackController); err != nil {
		return err
	}
	if p.PlaybackRouter, err = mustCreate(c, "unableToCreatePlaybackRouter", f.PlaybackRouter); err != nil {
		return err
	}
	if p.ChannelVolumes, err = channelVolumes(&req.Audio); err != nil {
		return &BuildError{Reason: "unableToCreateChannelVolume", Err: err}
	}
	if p.SpeakerManager, err = mustCreate(c, "unableToCreateSpeakerManager", f.SpeakerManager); err != nil {
		return err
	}
	if p.AudioPlayer, err = mustCreate(c, "unableToCreateAudioPlayer", f.AudioPlayer); err != nil {
		return err
	}
	if p.Alerts, err = mustCreate(c, "unableToCreateAlerts", f.Alerts); err != nil {
		return err
	}
	link[connection.StatusObserver](w, nameGate, p.Gate, nameAggregator, p.Aggregator)
	if p.Notifications, err = mustCreate(c, "unableToCreateNotifications", f.Notifications); err != nil {
		return err
	}
	if p.InteractionModel, err = mustCreate(c, "unableToCreateInteractionModel", f.InteractionModel); err != nil {
		return err
	}
	link[capability.InteractionObserver](w, nameInteractionModel, p.InteractionModel, nameAggregator, p.Aggregator)

	// Optional communications.
	p.PhoneCallController = maybeCreate(c, capability.FeatureTelephony, req.Features.Telephony, f.PhoneCallController)
	p.MeetingClientController = maybeCreate(c, capability.FeatureMeetings, req.Features.Meetings, f.MeetingClientController)
	p.CallManager = maybeCreate(c, capability.FeatureComms, req.Features.Comms, f.CallManager)
	if p.CallManager != nil {
		link[connection.StatusObserver](w, nameGate, p.Gate, nameCallManager, p.CallManager)
	}

	if p.ExternalMediaPlayer, err = mustCreate(c, "unableToCreateExternalMediaPlayer", f.ExternalMediaPlayer); err != nil {
		return err
	}
	p.MultiRoomMusic = maybeCreate(c, capability.FeatureMultiRoomMusic, req.Features.MultiRoomMusic, f.MultiRoomMusic)
	if p.MultiRoomMusic != nil && p.CallManager != nil {
		link[capability.CallStateObserver](w, nameCallManager, p.CallManager, nameMultiRoomMusic, p.MultiRoomMusic)
	}

	// Visual.
	if p.VisualActivityTracker, err = mustCreate(c, "unableToCreateVisualActivityTracker", f.VisualActivityTracker); err != nil {
		return err
	}
	if p.VisualChannels, err = channels(req.Focus.Visual, focus.DefaultVisualChannels(), ""); err != nil {
		return &BuildError{Reason: "unableToReadVisualChannelConfiguration", Err: err}
	}
	if p.VisualFocus, err = mustCreate(c, "unableToCreateVisualFocusManager", f.VisualFocusManager); err != nil {
		return err
	}
	if p.Presentation, err = mustCreate(c, "unableToCreatePresentation", f.Presentation); err != nil {
		return err
	}
	p.Presentation.SetMaxVersion(req.Presentation.MaxVersion)
	link[capability.DialogStateObserver](w, nameAggregator, p.Aggregator, namePresentation, p.Presentation)
	if p.TemplateRuntime, err = mustCreate(c, "unableToCreateTemplateRuntime", f.TemplateRuntime); err != nil {
		return err
	}
	link[capability.DialogStateObserver](w, nameAggregator, p.Aggregator, nameTemplateRuntime, p.TemplateRuntime)
	link[capability.PresentationObserver](w, namePresentation, p.Presentation, nameTemplateRuntime, p.TemplateRuntime)
	if p.VisualCharacteristics, err = mustCreate(c, "unableToCreateVisualCharacteristics", f.VisualCharacteristics); err != nil {
		return err
	}

	if err := c.buildEqualizer(); err != nil {
		return err
	}

	// System.
	if p.SystemHandlers, err = mustCreate(c, "unableToCreateSystemHandlers", f.SystemHandlers); err != nil {
		return err
	}
	p.RevokeAuthorization = maybeCreate(c, capability.FeatureRevokeAuthorization, req.Features.RevokeAuthorization, f.RevokeAuthorization)
	if req.Software.FirmwareVersion.Valid() {
		sender, err := mustCreate(c, "unableToCreateSoftwareInfoSender", f.SoftwareInfoSender)
		if err != nil {
			return err
		}
		c.softwareInfo.Store(&softwareInfoHolder{sender: sender})
	}
	if req.Optional.BluetoothDevices != nil {
		if p.Bluetooth, err = mustCreate(c, "unableToCreateBluetooth", f.Bluetooth); err != nil {
			return err
		}
		c.features.Set(capability.FeatureBluetooth, p.Bluetooth)
	} else {
		logger.Debug("bluetooth disabled", "reason", "nullBluetoothDeviceManager")
	}
	if p.APIGateway, err = mustCreate(c, "unableToCreateAPIGateway", f.APIGateway); err != nil {
		return err
	}
	if p.InterfaceAgent, err = mustCreate(c, "unableToCreateInterfaceAgent", f.InterfaceAgent); err != nil {
		return err
	}

	if err := c.registerCapabilities(); err != nil {
		return err
	}

	c.coordinator, err = endpoint.NewCoordinator(endpoint.CoordinatorConfig{
		Builder:        p.DefaultEndpoint,
		Manager:        p.EndpointManager,
		GatewayManager: req.Network.Gateways,
		Assigner:       p.Gate,
		Gate:           p.Gate,
		Logger:         logger.With("component", nameEndpointCoordinator),
	})
	if err != nil {
		return &BuildError{Reason: "unableToCreateEndpointCoordinator", Err: err}
	}
	return nil
}

func (c *Client) buildEqualizer() error {
	req, p, w := c.env.Request, c.parts, c.wiring
	setup := req.Optional.Equalizer
	if setup == nil {
		return nil
	}

	var err error
	if p.EqualizerController, err = mustCreate(c, "unableToCreateEqualizerController", req.Factories.EqualizerController); err != nil {
		return err
	}
	if p.Equalizer, err = mustCreate(c, "unableToCreateEqualizer", req.Factories.Equalizer); err != nil {
		return err
	}
	c.features.Set(capability.FeatureEqualizer, p.Equalizer)

	ctrl := p.EqualizerController
	for i, e := range setup.Equalizers {
		w.Add(nameEqualizerController, fmt.Sprintf("equalizer-%d", i),
			func() { ctrl.RegisterEqualizer(e) },
			func() { ctrl.UnregisterEqualizer(e) },
		)
	}
	for i, l := range setup.Listeners {
		w.Add(nameEqualizerController, fmt.Sprintf("equalizer-listener-%d", i),
			func() { ctrl.AddListener(l) },
			func() { ctrl.RemoveListener(l) },
		)
	}
	return nil
}

// agents lists every capability agent that was built, in build order.
func (c *Client) agents() []capability.Agent {
	p := c.parts
	all := []capability.Agent{
		p.DoNotDisturb,
		p.UserInactivityMonitor,
		p.Recognizer,
		p.SpeechSynthesizer,
		p.PlaybackController,
		p.SpeakerManager,
		p.AudioPlayer,
		p.Alerts,
		p.Notifications,
		p.InteractionModel,
		p.PhoneCallController,
		p.MeetingClientController,
		p.CallManager,
		p.ExternalMediaPlayer,
		p.MultiRoomMusic,
		p.Presentation,
		p.TemplateRuntime,
		p.VisualCharacteristics,
		p.Equalizer,
		p.RevokeAuthorization,
		p.Bluetooth,
		p.APIGateway,
		p.InterfaceAgent,
	}
	out := all[:0]
	for _, a := range all {
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}

// registerCapabilities adds every directive handler to the sequencer and
// every configuration to the default endpoint, then closes the endpoint.
func (c *Client) registerCapabilities() error {
	p := c.parts

	for _, h := range p.SystemHandlers {
		if h == nil {
			continue
		}
		if !p.Sequencer.AddDirectiveHandler(h) {
			return &BuildError{Reason: "unableToRegisterSystemDirectiveHandler", Err: fmt.Errorf("handler for %v rejected", h.Namespaces())}
		}
		p.DefaultEndpoint.WithCapability(h)
	}
	for _, a := range c.agents() {
		if !p.Sequencer.AddDirectiveHandler(a) {
			return &BuildError{Reason: "unableToRegisterDirectiveHandler", Err: fmt.Errorf("handler for %v rejected", a.Namespaces())}
		}
		p.DefaultEndpoint.WithCapability(a)
	}
	p.DefaultEndpoint.
		WithCapability(p.AudioActivityTracker).
		WithCapability(p.VisualActivityTracker)

	if err := p.DefaultEndpoint.FinishDefaultConfiguration(); err != nil {
		return &BuildError{Reason: "defaultEndpointConfigurationFailed", Err: err}
	}
	return nil
}

// channels validates a focus channel configuration, falling back to
// defaults when none is given. required, if set, must be present.
func channels(configured, defaults []capability.ChannelConfiguration, required string) ([]capability.ChannelConfiguration, error) {
	if len(configured) == 0 {
		configured = defaults
	}
	out, err := focus.Validate(configured)
	if err != nil {
		return nil, err
	}
	if required != "" && !focus.Has(out, required) {
		return nil, fmt.Errorf("focus channel %q is not configured", required)
	}
	return out, nil
}

// channelVolumes wraps every sink in a volume control. Speech and media
// sinks share the speaker volume, alert sinks share the alerts volume, and
// additional speakers follow in type order.
func channelVolumes(in *AudioInputs) ([]capability.ChannelVolume, error) {
	type sink struct {
		player capability.MediaPlayer
		kind   capability.SpeakerType
	}
	sinks := []sink{
		{in.SpeakPlayer, capability.SpeakerVolume},
		{in.SystemSoundPlayer, capability.SpeakerVolume},
		{in.RingtonePlayer, capability.SpeakerVolume},
		{in.BluetoothPlayer, capability.SpeakerVolume},
		{in.AlertsPlayer, capability.AlertsVolume},
		{in.NotificationsPlayer, capability.AlertsVolume},
	}

	extra := make([]capability.AdditionalSpeaker, len(in.AdditionalSpeakers))
	copy(extra, in.AdditionalSpeakers)
	sort.SliceStable(extra, func(i, j int) bool { return extra[i].Type < extra[j].Type })
	for _, s := range extra {
		sinks = append(sinks, sink{s.Player, s.Type})
	}

	volumes := make([]capability.ChannelVolume, 0, len(sinks))
	for _, s := range sinks {
		v, err := in.ChannelVolumeFactory.CreateChannelVolume(s.player, s.kind)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s channel volume: %w", s.kind, err)
		}
		if isNil(v) {
			return nil, fmt.Errorf("failed to create %s channel volume: %w", s.kind, ErrNoInstance)
		}
		volumes = append(volumes, v)
	}
	return volumes, nil
}
