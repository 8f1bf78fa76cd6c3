package client

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/semver/v3"
	"go.opentelemetry.io/otel/metric"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/connection"
	"github.com/jmylchreest/smartscreen/internal/endpoint"
)

// Build errors.
var (
	ErrMissingInput = errors.New("missing required input")
	ErrInvalidInput = errors.New("invalid input")
	ErrNoInstance   = errors.New("factory returned no instance")
)

// BuildError reports why Build returned no client. Reason is the same code
// that is logged under the "reason" key.
type BuildError struct {
	Reason string
	Err    error
}

func (e *BuildError) Error() string {
	if e.Err == nil {
		return "build failed: " + e.Reason
	}
	return fmt.Sprintf("build failed: %s: %v", e.Reason, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Request carries every collaborator the client is assembled from, grouped
// by subsystem.
type Request struct {
	Device       *endpoint.Identity
	Audio        AudioInputs
	Storage      StorageInputs
	Network      NetworkInputs
	Presentation PresentationInputs
	Software     SoftwareInputs
	Features     FeatureFlags
	Optional     OptionalInputs
	Observers    InitialObservers
	Focus        FocusInputs
	Factories    Factories

	Logger *slog.Logger
	Meter  metric.Meter
}

// AudioInputs are the local sinks and volume plumbing.
type AudioInputs struct {
	SpeakPlayer          capability.MediaPlayer
	AudioPlayerFactory   capability.MediaPlayerFactory
	AlertsPlayer         capability.MediaPlayer
	NotificationsPlayer  capability.MediaPlayer
	BluetoothPlayer      capability.MediaPlayer
	RingtonePlayer       capability.MediaPlayer
	SystemSoundPlayer    capability.MediaPlayer
	ChannelVolumeFactory capability.ChannelVolumeFactory
	AdditionalSpeakers   []capability.AdditionalSpeaker
	LocaleAssets         capability.LocaleAssetsManager
}

// StorageInputs are the persistent stores.
type StorageInputs struct {
	DeviceSettings capability.Store
	Messages       capability.Store
	Alerts         capability.Store
	Notifications  capability.Store
	Misc           capability.Store
}

// NetworkInputs are the service connection collaborators.
type NetworkInputs struct {
	Auth            capability.AuthDelegate
	Transport       capability.TransportFactory
	InternetMonitor capability.InternetMonitor
	Gateways        endpoint.GatewayManager
	Capabilities    capability.CapabilitiesDelegate
	Context         capability.ContextManager
	CustomerData    capability.CustomerDataManager
}

// PresentationInputs configure visual rendering.
type PresentationInputs struct {
	VisualState capability.VisualStateProvider
	MaxVersion  string
}

// SoftwareInputs configure firmware reporting.
type SoftwareInputs struct {
	FirmwareVersion capability.FirmwareVersion
	SendOnConnected bool
	Observers       []capability.SoftwareInfoObserver
}

// FeatureFlags enable optional capabilities.
type FeatureFlags struct {
	Telephony           bool
	Meetings            bool
	Comms               bool
	MultiRoomMusic      bool
	Captions            bool
	RevokeAuthorization bool
}

// OptionalInputs switch on capabilities by being present.
type OptionalInputs struct {
	BluetoothDevices capability.BluetoothDeviceManager
	Equalizer        *capability.EqualizerSetup
}

// InitialObservers are registered before anything else can fire.
type InitialObservers struct {
	Dialog     []capability.DialogStateObserver
	Connection []connection.StatusObserver
}

// FocusInputs configure the focus channels. Empty slices select the
// defaults.
type FocusInputs struct {
	Audio  []capability.ChannelConfiguration
	Visual []capability.ChannelConfiguration
}

type check struct {
	missing bool
	reason  string
}

// validate checks every required input before anything is constructed.
func (r *Request) validate() *BuildError {
	checks := []check{
		{r.Device == nil, "nullDeviceInfo"},
		{r.Audio.SpeakPlayer == nil, "nullSpeakMediaPlayer"},
		{r.Audio.AudioPlayerFactory == nil, "nullAudioMediaPlayerFactory"},
		{r.Audio.AlertsPlayer == nil, "nullAlertsMediaPlayer"},
		{r.Audio.NotificationsPlayer == nil, "nullNotificationsMediaPlayer"},
		{r.Audio.BluetoothPlayer == nil, "nullBluetoothMediaPlayer"},
		{r.Audio.RingtonePlayer == nil, "nullRingtoneMediaPlayer"},
		{r.Audio.SystemSoundPlayer == nil, "nullSystemSoundMediaPlayer"},
		{r.Network.Auth == nil, "nullAuthDelegate"},
		{r.Network.Capabilities == nil, "nullCapabilitiesDelegate"},
		{r.Storage.DeviceSettings == nil, "nullDeviceSettingStorage"},
		{r.Storage.Messages == nil, "nullMessageStorage"},
		{r.Storage.Alerts == nil, "nullAlertStorage"},
		{r.Storage.Notifications == nil, "nullNotificationStorage"},
		{r.Storage.Misc == nil, "nullMiscStorage"},
		{r.Network.Context == nil, "nullContextManager"},
		{r.Network.Transport == nil, "nullTransportFactory"},
		{r.Network.Gateways == nil, "nullGatewayManager"},
		{r.Network.CustomerData == nil, "nullCustomerDataManager"},
		{r.Audio.ChannelVolumeFactory == nil, "nullChannelVolumeFactory"},
		{r.Audio.LocaleAssets == nil, "nullLocaleAssetsManager"},
		{r.Presentation.VisualState == nil, "nullVisualStateProvider"},
		{r.Presentation.MaxVersion == "", "emptyPresentationMaxVersion"},
		{r.Network.InternetMonitor == nil, "nullInternetConnectionMonitor"},
	}
	for _, c := range checks {
		if c.missing {
			return &BuildError{Reason: c.reason, Err: ErrMissingInput}
		}
	}

	if _, err := semver.NewVersion(r.Presentation.MaxVersion); err != nil {
		return &BuildError{Reason: "invalidPresentationMaxVersion", Err: fmt.Errorf("%w: %v", ErrInvalidInput, err)}
	}
	for i, s := range r.Audio.AdditionalSpeakers {
		if s.Player == nil {
			return &BuildError{Reason: "nullAdditionalSpeaker", Err: fmt.Errorf("%w: additional speaker %d", ErrMissingInput, i)}
		}
	}

	if berr := r.Factories.validate(); berr != nil {
		return berr
	}
	if r.Optional.Equalizer != nil && (r.Factories.EqualizerController == nil || r.Factories.Equalizer == nil) {
		return &BuildError{Reason: "nullEqualizerFactory", Err: ErrMissingInput}
	}
	if r.Optional.BluetoothDevices != nil && r.Factories.Bluetooth == nil {
		return &BuildError{Reason: "nullBluetoothFactory", Err: ErrMissingInput}
	}
	return nil
}
