package client

import (
	"errors"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/connection"
)

// ErrClosed is returned by operations on a client that has been closed.
var ErrClosed = errors.New("client closed")

// Connect enables the service connection. With performReset the default
// endpoint is registered first, once.
func (c *Client) Connect(performReset bool) error {
	if c.closed.Load() {
		return ErrClosed
	}
	err := c.coordinator.Connect(performReset)
	c.metrics.connect(performReset, err)
	return err
}

// Disconnect ends the service session.
func (c *Client) Disconnect() {
	if c.closed.Load() {
		return
	}
	c.parts.Gate.Disable()
}

// IsConnected reports whether a service session is established.
func (c *Client) IsConnected() bool {
	return c.parts.Gate.IsConnected()
}

// ConnectionStatus returns the last reported connection status.
func (c *Client) ConnectionStatus() (connection.Status, connection.ChangeReason) {
	return c.parts.Gate.Status()
}

// Gateway returns the service gateway address.
func (c *Client) Gateway() string {
	return c.parts.Gate.Gateway()
}

// capabilitiesObserver enables the connection once capabilities are
// published.
type capabilitiesObserver struct {
	client *Client
}

func (o *capabilitiesObserver) OnCapabilitiesStateChange(state capability.CapabilitiesState, reason string, added, deleted []string) {
	c := o.client
	if c.closed.Load() {
		return
	}
	if state != capability.CapabilitiesSuccess {
		c.logger.Warn("capabilities not published", "state", state, "reason", reason)
		return
	}
	c.logger.Info("capabilities published", "added", len(added), "deleted", len(deleted))
	c.parts.Gate.Enable()
}
