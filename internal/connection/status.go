// Package connection implements the gate between the client and the
// remote voice service connection.
package connection

import "errors"

// Connection errors.
var (
	ErrShutdown = errors.New("connection gate shut down")
)

// Status is the state of the service connection.
type Status uint8

const (
	// StatusDisconnected indicates no session and no attempt in progress.
	StatusDisconnected Status = iota

	// StatusPending indicates a connection attempt is in progress.
	StatusPending

	// StatusConnected indicates an established session.
	StatusConnected
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "DISCONNECTED"
	case StatusPending:
		return "PENDING"
	case StatusConnected:
		return "CONNECTED"
	default:
		return "UNKNOWN"
	}
}

// ChangeReason explains a status transition.
type ChangeReason uint8

const (
	ReasonNone ChangeReason = iota
	ReasonClientRequest
	ReasonClientDisabled
	ReasonServerSideDisconnect
	ReasonConnectionTimedOut
	ReasonInternetUnavailable
	ReasonGatewayChanged
	ReasonShutdown
)

// String returns a human-readable reason name.
func (r ChangeReason) String() string {
	switch r {
	case ReasonNone:
		return "NONE"
	case ReasonClientRequest:
		return "CLIENT_REQUEST"
	case ReasonClientDisabled:
		return "CLIENT_DISABLED"
	case ReasonServerSideDisconnect:
		return "SERVER_SIDE_DISCONNECT"
	case ReasonConnectionTimedOut:
		return "CONNECTION_TIMEDOUT"
	case ReasonInternetUnavailable:
		return "INTERNET_UNAVAILABLE"
	case ReasonGatewayChanged:
		return "GATEWAY_CHANGED"
	case ReasonShutdown:
		return "SHUTDOWN"
	default:
		return "UNKNOWN"
	}
}

// StatusObserver receives connection status transitions.
type StatusObserver interface {
	OnConnectionStatusChanged(status Status, reason ChangeReason)
}

// MessageObserver receives inbound messages from the service.
type MessageObserver interface {
	OnMessageReceived(contextID, message string)
}

// InternetConnectionObserver receives local network reachability changes.
type InternetConnectionObserver interface {
	OnInternetConnectionChanged(connected bool)
}

// Message is an outbound event.
type Message struct {
	Namespace string
	Name      string
	Payload   string
}

// GatewayAssigner accepts a new service gateway address.
type GatewayAssigner interface {
	SetGateway(address string)
}

// RouterHandler receives events from a Router.
type RouterHandler interface {
	OnStatusChanged(status Status, reason ChangeReason)
	OnMessageReceived(contextID, message string)
}

// Router is the transport session owner. The gate drives it; the router
// reports back through the handler it was given.
type Router interface {
	Enable()
	Disable()
	Gateway() string
	SetGateway(address string)
	Send(msg Message) error
	SetHandler(h RouterHandler)
	Shutdown()
}
