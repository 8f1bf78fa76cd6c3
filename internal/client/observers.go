package client

import (
	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/connection"
)

// AddDialogStateObserver registers o for dialog state changes.
func (c *Client) AddDialogStateObserver(o capability.DialogStateObserver) {
	c.parts.Aggregator.AddObserver(o)
}

// RemoveDialogStateObserver unregisters o.
func (c *Client) RemoveDialogStateObserver(o capability.DialogStateObserver) {
	c.parts.Aggregator.RemoveObserver(o)
}

// AddConnectionObserver registers o for connection status changes.
func (c *Client) AddConnectionObserver(o connection.StatusObserver) {
	c.parts.Gate.AddObserver(o)
}

// RemoveConnectionObserver unregisters o.
func (c *Client) RemoveConnectionObserver(o connection.StatusObserver) {
	c.parts.Gate.RemoveObserver(o)
}

// AddMessageObserver registers o for inbound service messages.
func (c *Client) AddMessageObserver(o connection.MessageObserver) {
	c.parts.Gate.AddMessageObserver(o)
}

// RemoveMessageObserver unregisters o.
func (c *Client) RemoveMessageObserver(o connection.MessageObserver) {
	c.parts.Gate.RemoveMessageObserver(o)
}

// AddInternetConnectionObserver registers o for network reachability.
func (c *Client) AddInternetConnectionObserver(o connection.InternetConnectionObserver) {
	c.env.Request.Network.InternetMonitor.AddObserver(o)
}

// RemoveInternetConnectionObserver unregisters o.
func (c *Client) RemoveInternetConnectionObserver(o connection.InternetConnectionObserver) {
	c.env.Request.Network.InternetMonitor.RemoveObserver(o)
}

// AddCapabilitiesObserver registers o for capability publishing results.
func (c *Client) AddCapabilitiesObserver(o capability.CapabilitiesObserver) {
	c.env.Request.Network.Capabilities.AddObserver(o)
}

// RemoveCapabilitiesObserver unregisters o.
func (c *Client) RemoveCapabilitiesObserver(o capability.CapabilitiesObserver) {
	c.env.Request.Network.Capabilities.RemoveObserver(o)
}

// AddAlertsObserver registers o for alert state changes.
func (c *Client) AddAlertsObserver(o capability.AlertsObserver) {
	c.parts.Alerts.AddObserver(o)
}

// RemoveAlertsObserver unregisters o.
func (c *Client) RemoveAlertsObserver(o capability.AlertsObserver) {
	c.parts.Alerts.RemoveObserver(o)
}

// AddAudioPlayerObserver registers o for playback activity.
func (c *Client) AddAudioPlayerObserver(o capability.AudioPlayerObserver) {
	c.parts.AudioPlayer.AddObserver(o)
}

// RemoveAudioPlayerObserver unregisters o.
func (c *Client) RemoveAudioPlayerObserver(o capability.AudioPlayerObserver) {
	c.parts.AudioPlayer.RemoveObserver(o)
}

// AddTemplateRuntimeObserver registers o for display cards.
func (c *Client) AddTemplateRuntimeObserver(o capability.TemplateRuntimeObserver) {
	c.parts.TemplateRuntime.AddObserver(o)
}

// RemoveTemplateRuntimeObserver unregisters o.
func (c *Client) RemoveTemplateRuntimeObserver(o capability.TemplateRuntimeObserver) {
	c.parts.TemplateRuntime.RemoveObserver(o)
}

// AddNotificationsObserver registers o for the notification indicator.
func (c *Client) AddNotificationsObserver(o capability.NotificationsObserver) {
	c.parts.Notifications.AddObserver(o)
}

// RemoveNotificationsObserver unregisters o.
func (c *Client) RemoveNotificationsObserver(o capability.NotificationsObserver) {
	c.parts.Notifications.RemoveObserver(o)
}

// AddExternalMediaPlayerObserver registers o for third-party player state.
func (c *Client) AddExternalMediaPlayerObserver(o capability.ExternalMediaPlayerObserver) {
	c.parts.ExternalMediaPlayer.AddObserver(o)
}

// RemoveExternalMediaPlayerObserver unregisters o.
func (c *Client) RemoveExternalMediaPlayerObserver(o capability.ExternalMediaPlayerObserver) {
	c.parts.ExternalMediaPlayer.RemoveObserver(o)
}

// AddSpeakerManagerObserver registers o for volume changes.
func (c *Client) AddSpeakerManagerObserver(o capability.SpeakerManagerObserver) {
	c.parts.SpeakerManager.AddObserver(o)
}

// RemoveSpeakerManagerObserver unregisters o.
func (c *Client) RemoveSpeakerManagerObserver(o capability.SpeakerManagerObserver) {
	c.parts.SpeakerManager.RemoveObserver(o)
}

// AddPresentationObserver registers o for visual documents.
func (c *Client) AddPresentationObserver(o capability.PresentationObserver) {
	c.parts.Presentation.AddObserver(o)
}

// RemovePresentationObserver unregisters o.
func (c *Client) RemovePresentationObserver(o capability.PresentationObserver) {
	c.parts.Presentation.RemoveObserver(o)
}

// AddSpeechSynthesizerObserver registers o for speech output state.
func (c *Client) AddSpeechSynthesizerObserver(o capability.SynthesizerObserver) {
	c.parts.SpeechSynthesizer.AddObserver(o)
}

// RemoveSpeechSynthesizerObserver unregisters o.
func (c *Client) RemoveSpeechSynthesizerObserver(o capability.SynthesizerObserver) {
	c.parts.SpeechSynthesizer.RemoveObserver(o)
}

// AddBluetoothDeviceObserver registers o for bluetooth connections. It
// reports false when bluetooth is not available.
func (c *Client) AddBluetoothDeviceObserver(o capability.BluetoothDeviceObserver) bool {
	if c.parts.Bluetooth == nil {
		c.logger.Error("observer not added", "reason", "bluetoothNotSupported")
		return false
	}
	c.parts.Bluetooth.AddObserver(o)
	return true
}

// RemoveBluetoothDeviceObserver unregisters o.
func (c *Client) RemoveBluetoothDeviceObserver(o capability.BluetoothDeviceObserver) bool {
	if c.parts.Bluetooth == nil {
		c.logger.Error("observer not removed", "reason", "bluetoothNotSupported")
		return false
	}
	c.parts.Bluetooth.RemoveObserver(o)
	return true
}

// AddRevokeAuthorizationObserver registers o for authorization revocation.
// It reports false when the capability is not enabled.
func (c *Client) AddRevokeAuthorizationObserver(o capability.RevokeAuthorizationObserver) bool {
	if c.parts.RevokeAuthorization == nil {
		c.logger.Error("observer not added", "reason", "revokeAuthorizationNotSupported")
		return false
	}
	c.parts.RevokeAuthorization.AddObserver(o)
	return true
}

// RemoveRevokeAuthorizationObserver unregisters o.
func (c *Client) RemoveRevokeAuthorizationObserver(o capability.RevokeAuthorizationObserver) bool {
	if c.parts.RevokeAuthorization == nil {
		c.logger.Error("observer not removed", "reason", "revokeAuthorizationNotSupported")
		return false
	}
	c.parts.RevokeAuthorization.RemoveObserver(o)
	return true
}

// AddCallStateObserver registers o for comms call state. It reports false
// when comms is not enabled.
func (c *Client) AddCallStateObserver(o capability.CallStateObserver) bool {
	if c.parts.CallManager == nil {
		c.logger.Error("observer not added", "reason", "commsNotSupported")
		return false
	}
	c.parts.CallManager.AddObserver(o)
	return true
}

// RemoveCallStateObserver unregisters o.
func (c *Client) RemoveCallStateObserver(o capability.CallStateObserver) bool {
	if c.parts.CallManager == nil {
		c.logger.Error("observer not removed", "reason", "commsNotSupported")
		return false
	}
	c.parts.CallManager.RemoveObserver(o)
	return true
}
