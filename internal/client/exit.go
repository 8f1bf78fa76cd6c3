package client

import (
	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/focus"
)

// forceExitInterface is the interface name the force exit focus request is
// made under.
const forceExitInterface = "Alexa.Presentation.APL"

// ForceExit ends the current interaction by taking the dialog channel. Once
// the channel is granted the foreground activity is stopped, the recognizer
// is reset and the visual cards are cleared.
func (c *Client) ForceExit() {
	if c.closed.Load() {
		return
	}
	c.logger.Debug("force exit requested")
	if !c.parts.AudioFocus.AcquireChannel(focus.DialogChannel, c.forceExit, forceExitInterface) {
		c.logger.Warn("force exit failed", "reason", "acquireChannelFailed", "channel", focus.DialogChannel)
	}
}

// StopForegroundActivity stops whatever holds the foreground audio channel.
func (c *Client) StopForegroundActivity() {
	c.parts.AudioFocus.StopForegroundActivity()
}

// LocalStopActiveAlert stops a ringing alert without the service.
func (c *Client) LocalStopActiveAlert() {
	c.parts.Alerts.OnLocalStop()
}

// ClearCard clears every visual card on screen.
func (c *Client) ClearCard() {
	c.parts.Presentation.ClearCard()
	c.parts.TemplateRuntime.ClearCard()
}

// forceExitObserver keeps the focus callback off the client's surface.
type forceExitObserver struct {
	client *Client
}

func (o *forceExitObserver) OnFocusChanged(state capability.FocusState, _ capability.MixingBehavior) {
	if state != capability.FocusForeground {
		return
	}
	c := o.client
	c.StopForegroundActivity()
	c.parts.Recognizer.ResetState()
	c.ClearCard()
	c.logger.Info("force exit completed")
}
