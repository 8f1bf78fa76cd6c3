package loopback

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/client"
	"github.com/jmylchreest/smartscreen/internal/connection"
	"github.com/jmylchreest/smartscreen/internal/endpoint"
)

// ErrInjected is the default error returned by a factory marked to fail.
var ErrInjected = errors.New("injected failure")

// Backend owns one loopback implementation of every collaborator and hands
// them to the client through its factories.
type Backend struct {
	Recorder *Recorder
	Logger   *slog.Logger

	// Inputs.
	Identity           endpoint.Identity
	SpeakPlayer        *MediaPlayer
	AlertsPlayer       *MediaPlayer
	NotifyPlayer       *MediaPlayer
	BluetoothPlayer    *MediaPlayer
	RingtonePlayer     *MediaPlayer
	SystemSoundPlayer  *MediaPlayer
	Volumes            *ChannelVolumeFactory
	Settings           *MemoryStore
	Messages           *MemoryStore
	AlertStore         *MemoryStore
	NotificationStore  *MemoryStore
	Misc               *MemoryStore
	Internet           *InternetMonitor
	Capabilities       *CapabilitiesDelegate
	Gateways           *GatewayManager
	Context            *ContextManager
	CustomerData       *CustomerData
	VisualState        *VisualState
	PresentationMaxVer string

	// Components.
	Router          *Router
	Sequencer       *Sequencer
	Endpoints       *EndpointManager
	AudioFocus      *FocusManager
	VisualFocus     *FocusManager
	Recognizer      *Recognizer
	Synthesizer     *SpeechSynthesizer
	Interaction     *InteractionModel
	Alerts          *Alerts
	Notifications   *Observable[capability.NotificationsObserver]
	AudioPlayer     *Observable[capability.AudioPlayerObserver]
	ExternalPlayer  *Observable[capability.ExternalMediaPlayerObserver]
	SpeakerManager  *Observable[capability.SpeakerManagerObserver]
	Presentation    *Presentation
	TemplateRuntime *TemplateRuntime
	DoNotDisturb    *StatusAgent
	CallManager     *CallManager
	MultiRoomMusic  *MultiRoomMusic
	Equalizers      *EqualizerController
	RevokeAuth      *Observable[capability.RevokeAuthorizationObserver]
	Bluetooth       *Observable[capability.BluetoothDeviceObserver]
	PlaybackRouter  *PlaybackRouter
	SystemHandlers  []*Component

	mu       sync.Mutex
	failures map[string]error
	software *SoftwareInfoSender
}

// NewBackend returns a backend whose every collaborator succeeds.
func NewBackend(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	rec := NewRecorder()
	b := &Backend{
		Recorder: rec,
		Logger:   logger,
		Identity: endpoint.Identity{
			ClientID:     "loopback-client",
			ProductID:    "smartscreen",
			SerialNumber: "0001",
			FriendlyName: "Loopback Screen",
			Manufacturer: "jmylchreest",
			Description:  "in-process smart screen",
		},
		SpeakPlayer:        NewMediaPlayer(rec, "speak-player"),
		AlertsPlayer:       NewMediaPlayer(rec, "alerts-player"),
		NotifyPlayer:       NewMediaPlayer(rec, "notifications-player"),
		BluetoothPlayer:    NewMediaPlayer(rec, "bluetooth-player"),
		RingtonePlayer:     NewMediaPlayer(rec, "ringtone-player"),
		SystemSoundPlayer:  NewMediaPlayer(rec, "system-sound-player"),
		Volumes:            &ChannelVolumeFactory{},
		Settings:           NewMemoryStore(),
		Messages:           NewMemoryStore(),
		AlertStore:         NewMemoryStore(),
		NotificationStore:  NewMemoryStore(),
		Misc:               NewMemoryStore(),
		Internet:           NewInternetMonitor(rec),
		Capabilities:       NewCapabilitiesDelegate(rec),
		Gateways:           NewGatewayManager(rec),
		Context:            &ContextManager{},
		CustomerData:       &CustomerData{rec: rec},
		VisualState:        &VisualState{rec: rec},
		PresentationMaxVer: "2023.2",

		Router:          NewRouter(rec, "https://gateway.loopback", logger),
		Sequencer:       NewSequencer(rec),
		Endpoints:       NewEndpointManager(rec),
		AudioFocus:      NewFocusManager(rec, "audio-focus-manager"),
		VisualFocus:     NewFocusManager(rec, "visual-focus-manager"),
		Interaction:     NewInteractionModel(rec),
		Notifications:   newObservable[capability.NotificationsObserver](rec, "notifications", "Notifications", "1.0"),
		AudioPlayer:     newObservable[capability.AudioPlayerObserver](rec, "audio-player", "AudioPlayer", "1.4"),
		ExternalPlayer:  newObservable[capability.ExternalMediaPlayerObserver](rec, "external-media-player", "ExternalMediaPlayer", "1.1"),
		SpeakerManager:  newObservable[capability.SpeakerManagerObserver](rec, "speaker-manager", "Speaker", "1.0"),
		Presentation:    NewPresentation(rec),
		TemplateRuntime: NewTemplateRuntime(rec),
		DoNotDisturb:    NewStatusAgent(rec, "do-not-disturb", "DoNotDisturb", "1.0"),
		CallManager:     NewCallManager(rec),
		MultiRoomMusic:  NewMultiRoomMusic(rec),
		Equalizers:      NewEqualizerController(rec),
		RevokeAuth:      newObservable[capability.RevokeAuthorizationObserver](rec, "revoke-authorization", "System.RevokeAuthorization", "1.0"),
		Bluetooth:       newObservable[capability.BluetoothDeviceObserver](rec, "bluetooth", "Bluetooth", "2.0"),
		PlaybackRouter:  &PlaybackRouter{Component: newComponent(rec, "playback-router", "", "")},
		SystemHandlers: []*Component{
			newComponent(rec, "system", "System", "2.0"),
			newComponent(rec, "interaction-model-handler", "InteractionModel.Directive", "1.0"),
		},
		failures: make(map[string]error),
	}
	b.Recognizer = NewRecognizer(rec, b.SystemSoundPlayer, logger)
	b.Synthesizer = NewSpeechSynthesizer(rec, b.SpeakPlayer)
	b.Alerts = NewAlerts(rec, b.AlertsPlayer)
	return b
}

// Fail makes the factory named name return ErrInjected.
func (b *Backend) Fail(name string) {
	b.FailWith(name, ErrInjected)
}

// FailWith makes the factory named name return err.
func (b *Backend) FailWith(name string, err error) {
	b.mu.Lock()
	b.failures[name] = err
	b.mu.Unlock()
}

func (b *Backend) failure(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err, ok := b.failures[name]; ok {
		return fmt.Errorf("create %s: %w", name, err)
	}
	return nil
}

// SoftwareInfoSender returns the last sender created, if any.
func (b *Backend) SoftwareInfoSender() *SoftwareInfoSender {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.software
}

// Request returns a complete request with every optional feature enabled
// except bluetooth and the equalizer.
func (b *Backend) Request() client.Request {
	id := b.Identity
	return client.Request{
		Device: &id,
		Audio: client.AudioInputs{
			SpeakPlayer:          b.SpeakPlayer,
			AudioPlayerFactory:   &MediaPlayerFactory{rec: b.Recorder},
			AlertsPlayer:         b.AlertsPlayer,
			NotificationsPlayer:  b.NotifyPlayer,
			BluetoothPlayer:      b.BluetoothPlayer,
			RingtonePlayer:       b.RingtonePlayer,
			SystemSoundPlayer:    b.SystemSoundPlayer,
			ChannelVolumeFactory: b.Volumes,
			LocaleAssets:         Locales{Locales: []string{"en-GB", "en-US"}},
		},
		Storage: client.StorageInputs{
			DeviceSettings: b.Settings,
			Messages:       b.Messages,
			Alerts:         b.AlertStore,
			Notifications:  b.NotificationStore,
			Misc:           b.Misc,
		},
		Network: client.NetworkInputs{
			Auth:            StaticAuth{Token: "loopback"},
			Transport:       &TransportFactory{rec: b.Recorder},
			InternetMonitor: b.Internet,
			Gateways:        b.Gateways,
			Capabilities:    b.Capabilities,
			Context:         b.Context,
			CustomerData:    b.CustomerData,
		},
		Presentation: client.PresentationInputs{
			VisualState: b.VisualState,
			MaxVersion:  b.PresentationMaxVer,
		},
		Features: client.FeatureFlags{
			Telephony:           true,
			Meetings:            true,
			Comms:               true,
			MultiRoomMusic:      true,
			Captions:            true,
			RevokeAuthorization: true,
		},
		Factories: b.Factories(),
		Logger:    b.Logger,
	}
}

// provide returns a factory handing out v unless name is marked to fail.
func provide[T any](b *Backend, name string, v T) client.Factory[T] {
	return func(*client.Env) (T, error) {
		b.Recorder.Record(name, "create")
		if err := b.failure(name); err != nil {
			var zero T
			return zero, err
		}
		return v, nil
	}
}

// Factories returns factories for every component.
func (b *Backend) Factories() client.Factories {
	rec := b.Recorder
	agent := func(name, iface string) client.Factory[capability.Agent] {
		return provide[capability.Agent](b, name, newComponent(rec, name, iface, "1.0"))
	}
	handlers := make([]capability.Agent, len(b.SystemHandlers))
	for i, h := range b.SystemHandlers {
		handlers[i] = h
	}

	return client.Factories{
		MessageRouter:         provide[connection.Router](b, "message-router", b.Router),
		CertifiedSender:       provide[capability.Shutdowner](b, "certified-sender", newComponent(rec, "certified-sender", "", "")),
		ExceptionSender:       provide[capability.Shutdowner](b, "exception-sender", newComponent(rec, "exception-sender", "", "")),
		DirectiveSequencer:    provide[capability.DirectiveSequencer](b, "directive-sequencer", b.Sequencer),
		RegistrationManager:   provide[capability.RegistrationManager](b, "registration-manager", &RegistrationManager{rec: rec, data: b.CustomerData}),
		EndpointManager:       provide[endpoint.Manager](b, "endpoint-manager", b.Endpoints),
		DoNotDisturb:          provide[capability.DoNotDisturb](b, "do-not-disturb", b.DoNotDisturb),
		AudioActivityTracker:  provide[capability.ActivityTracker](b, "audio-activity-tracker", newComponent(rec, "audio-activity-tracker", "AudioActivityTracker", "1.0")),
		AudioFocusManager:     provide[capability.FocusManager](b, "audio-focus-manager", b.AudioFocus),
		UserInactivityMonitor: agent("user-inactivity-monitor", "System.UserInactivity"),
		Recognizer:            provide[capability.Recognizer](b, "recognizer", b.Recognizer),
		SpeechSynthesizer:     provide[capability.SpeechSynthesizer](b, "speech-synthesizer", b.Synthesizer),
		PlaybackController:    agent("playback-controller", "PlaybackController"),
		PlaybackRouter:        provide[capability.PlaybackRouter](b, "playback-router", b.PlaybackRouter),
		SpeakerManager:        provide[capability.SpeakerManager](b, "speaker-manager", b.SpeakerManager),
		AudioPlayer:           provide[capability.AudioPlayer](b, "audio-player", b.AudioPlayer),
		Alerts:                provide[capability.Alerts](b, "alerts", b.Alerts),
		Notifications:         provide[capability.Notifications](b, "notifications", b.Notifications),
		InteractionModel:      provide[capability.InteractionModel](b, "interaction-model", b.Interaction),
		ExternalMediaPlayer:   provide[capability.ExternalMediaPlayer](b, "external-media-player", b.ExternalPlayer),
		VisualActivityTracker: provide[capability.ActivityTracker](b, "visual-activity-tracker", newComponent(rec, "visual-activity-tracker", "VisualActivityTracker", "1.0")),
		VisualFocusManager:    provide[capability.FocusManager](b, "visual-focus-manager", b.VisualFocus),
		Presentation:          provide[capability.Presentation](b, "presentation", b.Presentation),
		TemplateRuntime:       provide[capability.TemplateRuntime](b, "template-runtime", b.TemplateRuntime),
		VisualCharacteristics: agent("visual-characteristics", "Alexa.Display.Window"),
		SystemHandlers:        provide(b, "system-handlers", handlers),
		APIGateway:            agent("api-gateway", "Alexa.ApiGateway"),
		InterfaceAgent:        agent("interface-agent", "Alexa.Presentation.Interface"),

		SettingsManager: func(env *client.Env) (capability.SettingsManager, error) {
			rec.Record("settings-manager", "create")
			if err := b.failure("settings-manager"); err != nil {
				return nil, err
			}
			return &SettingsManager{store: env.Request.Storage.DeviceSettings}, nil
		},
		SoftwareInfoSender: func(env *client.Env) (capability.SoftwareInfoSender, error) {
			rec.Record("software-info-sender", "create")
			if err := b.failure("software-info-sender"); err != nil {
				return nil, err
			}
			s := NewSoftwareInfoSender(rec, env.Request.Software.FirmwareVersion)
			b.mu.Lock()
			b.software = s
			b.mu.Unlock()
			return s, nil
		},

		Captions:                provide[capability.Captions](b, "captions", newComponent(rec, "captions", "", "")),
		PhoneCallController:     agent("phone-call-controller", "PhoneCallController"),
		MeetingClientController: agent("meeting-client-controller", "Alexa.Comms.MeetingClientController"),
		CallManager:             provide[capability.CallManager](b, "call-manager", b.CallManager),
		MultiRoomMusic:          provide[capability.MultiRoomMusic](b, "multi-room-music", b.MultiRoomMusic),
		RevokeAuthorization:     provide[capability.RevokeAuthorization](b, "revoke-authorization", b.RevokeAuth),
		Bluetooth:               provide[capability.Bluetooth](b, "bluetooth", b.Bluetooth),
		EqualizerController:     provide[capability.EqualizerController](b, "equalizer-controller", b.Equalizers),
		Equalizer:               agent("equalizer", "EqualizerController"),
	}
}
