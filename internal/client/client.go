package client

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/endpoint"
	"github.com/jmylchreest/smartscreen/internal/observer"
)

// Client is the assembled voice client.
type Client struct {
	env         *Env
	parts       *Components
	logger      *slog.Logger
	wiring      *observer.Table
	features    *capability.Registry
	coordinator *endpoint.Coordinator
	metrics     *metrics

	settingsOpen bool

	// firmwareMu serializes creation of the software info sender; reads go
	// through softwareInfo without the lock.
	firmwareMu   sync.Mutex
	softwareInfo atomic.Pointer[softwareInfoHolder]

	forceExit    *forceExitObserver
	capabilities *capabilitiesObserver
	closeOnce    sync.Once
	closed       atomic.Bool
}

type softwareInfoHolder struct {
	sender capability.SoftwareInfoSender
}

// Features returns the optional capabilities that were built.
func (c *Client) Features() *capability.Registry {
	return c.features
}

// Wiring returns a snapshot of the observer edges between components.
func (c *Client) Wiring() []observer.Edge {
	return c.wiring.Edges()
}

// DialogState returns the current dialog state.
func (c *Client) DialogState() capability.DialogState {
	return c.parts.Aggregator.State()
}

// EndpointState returns the default endpoint registration state.
func (c *Client) EndpointState() endpoint.State {
	return c.coordinator.State()
}

// SettingsManager returns the device settings manager.
func (c *Client) SettingsManager() capability.SettingsManager {
	return c.parts.SettingsManager
}

// PlaybackRouter returns the local playback button router.
func (c *Client) PlaybackRouter() capability.PlaybackRouter {
	return c.parts.PlaybackRouter
}

// AudioFocusManager returns the audio focus manager.
func (c *Client) AudioFocusManager() capability.FocusManager {
	return c.parts.AudioFocus
}

// VisualFocusManager returns the visual focus manager.
func (c *Client) VisualFocusManager() capability.FocusManager {
	return c.parts.VisualFocus
}

// RegistrationManager returns the logout handler.
func (c *Client) RegistrationManager() capability.RegistrationManager {
	return c.parts.RegistrationManager
}

// SpeakerManager returns the volume manager.
func (c *Client) SpeakerManager() capability.SpeakerManager {
	return c.parts.SpeakerManager
}

// EqualizerController returns the equalizer controller, or nil when the
// equalizer is not configured.
func (c *Client) EqualizerController() capability.EqualizerController {
	return c.parts.EqualizerController
}

// AudioChannels returns the validated audio focus channels.
func (c *Client) AudioChannels() []capability.ChannelConfiguration {
	out := make([]capability.ChannelConfiguration, len(c.parts.AudioChannels))
	copy(out, c.parts.AudioChannels)
	return out
}

// CreateEndpointBuilder returns a builder for an additional endpoint hosted
// by this device.
func (c *Client) CreateEndpointBuilder(identity endpoint.Identity) *endpoint.Builder {
	return endpoint.NewDefaultBuilder(identity)
}

// DefaultEndpointID returns the identifier of the device's own endpoint.
func (c *Client) DefaultEndpointID() string {
	return c.parts.DefaultEndpoint.ID()
}

// DeviceTimeZoneOffset returns the offset of the local time zone from UTC.
func (c *Client) DeviceTimeZoneOffset() time.Duration {
	_, offset := time.Now().Zone()
	return time.Duration(offset) * time.Second
}
