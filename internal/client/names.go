package client

// Component names used in the wiring table and the shutdown order.
const (
	nameClient                  = "client"
	nameAggregator              = "dialog-aggregator"
	nameRouter                  = "message-router"
	nameGate                    = "connection"
	nameCertifiedSender         = "certified-sender"
	nameExceptionSender         = "exception-sender"
	nameSequencer               = "directive-sequencer"
	nameEndpointCoordinator     = "endpoint-coordinator"
	nameDoNotDisturb            = "do-not-disturb"
	nameAudioActivityTracker    = "audio-activity-tracker"
	nameCaptions                = "captions"
	nameUserInactivityMonitor   = "user-inactivity-monitor"
	nameRecognizer              = "recognizer"
	nameSpeechSynthesizer       = "speech-synthesizer"
	namePlaybackController      = "playback-controller"
	namePlaybackRouter          = "playback-router"
	nameSpeakerManager          = "speaker-manager"
	nameAudioPlayer             = "audio-player"
	nameAlerts                  = "alerts"
	nameNotifications           = "notifications"
	nameInteractionModel        = "interaction-model"
	namePhoneCallController     = "phone-call-controller"
	nameMeetingClientController = "meeting-client-controller"
	nameCallManager             = "call-manager"
	nameExternalMediaPlayer     = "external-media-player"
	nameMultiRoomMusic          = "multi-room-music"
	nameVisualActivityTracker   = "visual-activity-tracker"
	namePresentation            = "presentation"
	nameTemplateRuntime         = "template-runtime"
	nameVisualCharacteristics   = "visual-characteristics"
	nameEqualizerController     = "equalizer-controller"
	nameEqualizer               = "equalizer"
	nameSystemHandlers          = "system-handlers"
	nameRevokeAuthorization     = "revoke-authorization"
	nameSoftwareInfoSender      = "software-info-sender"
	nameBluetooth               = "bluetooth"
	nameAPIGateway              = "api-gateway"
	nameInterfaceAgent          = "interface-agent"
	nameDeviceSettingStorage    = "device-setting-storage"
	nameInternetMonitor         = "internet-monitor"
	nameCapabilitiesDelegate    = "capabilities-delegate"
)
