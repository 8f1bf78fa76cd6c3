package client

import (
	"log/slog"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/connection"
	"github.com/jmylchreest/smartscreen/internal/dialog"
	"github.com/jmylchreest/smartscreen/internal/endpoint"
)

// Env is what a factory sees: the validated request and every component
// built before it.
type Env struct {
	Request    *Request
	Components *Components
	Logger     *slog.Logger
}

// Factory creates one component.
type Factory[T any] func(env *Env) (T, error)

// Factories create the capability components. Factories marked optional may
// be nil; the rest are required.
type Factories struct {
	MessageRouter         Factory[connection.Router]
	CertifiedSender       Factory[capability.Shutdowner]
	ExceptionSender       Factory[capability.Shutdowner]
	DirectiveSequencer    Factory[capability.DirectiveSequencer]
	RegistrationManager   Factory[capability.RegistrationManager]
	EndpointManager       Factory[endpoint.Manager]
	DoNotDisturb          Factory[capability.DoNotDisturb]
	SettingsManager       Factory[capability.SettingsManager]
	AudioActivityTracker  Factory[capability.ActivityTracker]
	AudioFocusManager     Factory[capability.FocusManager]
	UserInactivityMonitor Factory[capability.Agent]
	Recognizer            Factory[capability.Recognizer]
	SpeechSynthesizer     Factory[capability.SpeechSynthesizer]
	PlaybackController    Factory[capability.Agent]
	PlaybackRouter        Factory[capability.PlaybackRouter]
	SpeakerManager        Factory[capability.SpeakerManager]
	AudioPlayer           Factory[capability.AudioPlayer]
	Alerts                Factory[capability.Alerts]
	Notifications         Factory[capability.Notifications]
	InteractionModel      Factory[capability.InteractionModel]
	ExternalMediaPlayer   Factory[capability.ExternalMediaPlayer]
	VisualActivityTracker Factory[capability.ActivityTracker]
	VisualFocusManager    Factory[capability.FocusManager]
	Presentation          Factory[capability.Presentation]
	TemplateRuntime       Factory[capability.TemplateRuntime]
	VisualCharacteristics Factory[capability.Agent]
	SystemHandlers        Factory[[]capability.Agent]
	SoftwareInfoSender    Factory[capability.SoftwareInfoSender]
	APIGateway            Factory[capability.Agent]
	InterfaceAgent        Factory[capability.Agent]

	// Optional.
	Captions                Factory[capability.Captions]
	PhoneCallController     Factory[capability.Agent]
	MeetingClientController Factory[capability.Agent]
	CallManager             Factory[capability.CallManager]
	MultiRoomMusic          Factory[capability.MultiRoomMusic]
	RevokeAuthorization     Factory[capability.RevokeAuthorization]
	Bluetooth               Factory[capability.Bluetooth]
	EqualizerController     Factory[capability.EqualizerController]
	Equalizer               Factory[capability.Agent]
}

func (f *Factories) validate() *BuildError {
	checks := []check{
		{f.MessageRouter == nil, "nullMessageRouterFactory"},
		{f.CertifiedSender == nil, "nullCertifiedSenderFactory"},
		{f.ExceptionSender == nil, "nullExceptionSenderFactory"},
		{f.DirectiveSequencer == nil, "nullDirectiveSequencerFactory"},
		{f.RegistrationManager == nil, "nullRegistrationManagerFactory"},
		{f.EndpointManager == nil, "nullEndpointManagerFactory"},
		{f.DoNotDisturb == nil, "nullDoNotDisturbFactory"},
		{f.SettingsManager == nil, "nullSettingsManagerFactory"},
		{f.AudioActivityTracker == nil, "nullAudioActivityTrackerFactory"},
		{f.AudioFocusManager == nil, "nullAudioFocusManagerFactory"},
		{f.UserInactivityMonitor == nil, "nullUserInactivityMonitorFactory"},
		{f.Recognizer == nil, "nullRecognizerFactory"},
		{f.SpeechSynthesizer == nil, "nullSpeechSynthesizerFactory"},
		{f.PlaybackController == nil, "nullPlaybackControllerFactory"},
		{f.PlaybackRouter == nil, "nullPlaybackRouterFactory"},
		{f.SpeakerManager == nil, "nullSpeakerManagerFactory"},
		{f.AudioPlayer == nil, "nullAudioPlayerFactory"},
		{f.Alerts == nil, "nullAlertsFactory"},
		{f.Notifications == nil, "nullNotificationsFactory"},
		{f.InteractionModel == nil, "nullInteractionModelFactory"},
		{f.ExternalMediaPlayer == nil, "nullExternalMediaPlayerFactory"},
		{f.VisualActivityTracker == nil, "nullVisualActivityTrackerFactory"},
		{f.VisualFocusManager == nil, "nullVisualFocusManagerFactory"},
		{f.Presentation == nil, "nullPresentationFactory"},
		{f.TemplateRuntime == nil, "nullTemplateRuntimeFactory"},
		{f.VisualCharacteristics == nil, "nullVisualCharacteristicsFactory"},
		{f.SystemHandlers == nil, "nullSystemHandlersFactory"},
		{f.SoftwareInfoSender == nil, "nullSoftwareInfoSenderFactory"},
		{f.APIGateway == nil, "nullAPIGatewayFactory"},
		{f.InterfaceAgent == nil, "nullInterfaceAgentFactory"},
	}
	for _, c := range checks {
		if c.missing {
			return &BuildError{Reason: c.reason, Err: ErrMissingInput}
		}
	}
	return nil
}

// Components is the capability graph. Optional components are nil when
// absent.
type Components struct {
	Aggregator              *dialog.Aggregator
	Router                  connection.Router
	Gate                    *connection.Gate
	CertifiedSender         capability.Shutdowner
	ExceptionSender         capability.Shutdowner
	Sequencer               capability.DirectiveSequencer
	RegistrationManager     capability.RegistrationManager
	EndpointManager         endpoint.Manager
	DefaultEndpoint         *endpoint.Builder
	DoNotDisturb            capability.DoNotDisturb
	SettingsManager         capability.SettingsManager
	AudioActivityTracker    capability.ActivityTracker
	AudioChannels           []capability.ChannelConfiguration
	AudioFocus              capability.FocusManager
	Captions                capability.Captions
	UserInactivityMonitor   capability.Agent
	Recognizer              capability.Recognizer
	SpeechSynthesizer       capability.SpeechSynthesizer
	PlaybackController      capability.Agent
	PlaybackRouter          capability.PlaybackRouter
	ChannelVolumes          []capability.ChannelVolume
	SpeakerManager          capability.SpeakerManager
	AudioPlayer             capability.AudioPlayer
	Alerts                  capability.Alerts
	Notifications           capability.Notifications
	InteractionModel        capability.InteractionModel
	PhoneCallController     capability.Agent
	MeetingClientController capability.Agent
	CallManager             capability.CallManager
	ExternalMediaPlayer     capability.ExternalMediaPlayer
	MultiRoomMusic          capability.MultiRoomMusic
	VisualActivityTracker   capability.ActivityTracker
	VisualChannels          []capability.ChannelConfiguration
	VisualFocus             capability.FocusManager
	Presentation            capability.Presentation
	TemplateRuntime         capability.TemplateRuntime
	VisualCharacteristics   capability.Agent
	EqualizerController     capability.EqualizerController
	Equalizer               capability.Agent
	SystemHandlers          []capability.Agent
	RevokeAuthorization     capability.RevokeAuthorization
	Bluetooth               capability.Bluetooth
	APIGateway              capability.Agent
	InterfaceAgent          capability.Agent
}
