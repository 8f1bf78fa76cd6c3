package client

import (
	"time"

	"github.com/jmylchreest/smartscreen/internal/capability"
)

// SendUserEvent forwards a user event raised by a rendered document.
func (c *Client) SendUserEvent(payload string) {
	c.parts.Presentation.SendUserEvent(payload)
}

// SendDataSourceFetchRequest asks the service for more document data.
func (c *Client) SendDataSourceFetchRequest(kind, payload string) {
	c.parts.Presentation.SendDataSourceFetchRequest(kind, payload)
}

// SendRuntimeError reports a document runtime error.
func (c *Client) SendRuntimeError(payload string) {
	c.parts.Presentation.SendRuntimeError(payload)
}

// HandleVisualContext answers a visual context request.
func (c *Client) HandleVisualContext(requestID uint32, context string) {
	c.parts.Presentation.OnVisualContextAvailable(requestID, context)
}

// HandleRenderDocumentResult reports the outcome of rendering a document.
func (c *Client) HandleRenderDocumentResult(token string, ok bool, reason string) {
	c.parts.Presentation.ProcessRenderDocumentResult(token, ok, reason)
}

// HandleExecuteCommandsResult reports the outcome of executing commands.
func (c *Client) HandleExecuteCommandsResult(token string, ok bool, reason string) {
	c.parts.Presentation.ProcessExecuteCommandsResult(token, ok, reason)
}

// HandleActivityEvent reports user interaction with a document.
func (c *Client) HandleActivityEvent(source string, event capability.ActivityEvent) {
	c.parts.Presentation.ProcessActivityEvent(source, event)
}

// SetDocumentIdleTimeout sets how long an idle document stays on screen.
func (c *Client) SetDocumentIdleTimeout(timeout time.Duration) {
	c.parts.Presentation.SetDocumentIdleTimeout(timeout)
}

// SetDeviceWindowState reports the device's window layout.
func (c *Client) SetDeviceWindowState(payload string) {
	c.parts.Presentation.SetWindowState(payload)
}

// HandleRenderComplete marks a document as fully drawn. Ignored unless a
// presentation document is on screen.
func (c *Client) HandleRenderComplete(presenting bool) {
	if presenting {
		c.parts.Presentation.RecordRenderComplete()
	}
}

// HandleDropFrameCount reports frames dropped while drawing the document.
func (c *Client) HandleDropFrameCount(count uint64, presenting bool) {
	if presenting {
		c.parts.Presentation.RecordDropFrameCount(count)
	}
}

// HandlePresentationEvent reports a renderer timing mark.
func (c *Client) HandlePresentationEvent(event capability.RenderingEvent, presenting bool) {
	if presenting {
		c.parts.Presentation.RecordEvent(event)
	}
}

// ClearExecuteCommands cancels pending commands for a document.
func (c *Client) ClearExecuteCommands(token string) {
	c.parts.Presentation.ClearExecuteCommands(token)
}

// IsCommsEnabled reports whether comms calls are available.
func (c *Client) IsCommsEnabled() bool {
	return c.parts.CallManager != nil
}

// AcceptCommsCall answers the inbound call.
func (c *Client) AcceptCommsCall() {
	if c.parts.CallManager == nil {
		c.logger.Error("call not accepted", "reason", "commsNotSupported")
		return
	}
	c.parts.CallManager.AcceptCall()
}

// SendDTMF sends a keypad tone on the active call.
func (c *Client) SendDTMF(tone string) {
	if c.parts.CallManager == nil {
		c.logger.Error("tone not sent", "reason", "commsNotSupported")
		return
	}
	c.parts.CallManager.SendDTMF(tone)
}

// StopCommsCall hangs up the active call.
func (c *Client) StopCommsCall() {
	if c.parts.CallManager == nil {
		c.logger.Error("call not stopped", "reason", "commsNotSupported")
		return
	}
	c.parts.CallManager.StopCall()
}
