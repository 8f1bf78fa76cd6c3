package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	// DBusInterface is the control interface name.
	DBusInterface = "io.github.jmylchreest.SmartScreen"
	// DBusPath is the control object path.
	DBusPath = dbus.ObjectPath("/io/github/jmylchreest/SmartScreen")
	// DBusBusName is the bus name to claim.
	DBusBusName = "io.github.jmylchreest.SmartScreen"
)

// Error names returned by the control interface.
const (
	ErrorTimeout  = DBusInterface + ".Error.Timeout"
	ErrorRejected = DBusInterface + ".Error.Rejected"
	ErrorFailed   = DBusInterface + ".Error.Failed"
)

// Signal names.
const (
	SignalConnectionStatusChanged = "ConnectionStatusChanged"
	SignalDialogStateChanged      = "DialogStateChanged"
)

// Status is the connection snapshot returned by GetStatus.
type Status struct {
	Status    string `json:"status" yaml:"status"`
	Reason    string `json:"reason" yaml:"reason"`
	Connected bool   `json:"connected" yaml:"connected"`
	Gateway   string `json:"gateway" yaml:"gateway"`
	Dialog    string `json:"dialog" yaml:"dialog"`
}

// Event is a decoded control signal.
type Event struct {
	Name   string
	Status string // ConnectionStatusChanged
	Reason string // ConnectionStatusChanged
	State  string // DialogStateChanged
}

// String returns a one-line description of the event.
func (e Event) String() string {
	switch e.Name {
	case SignalConnectionStatusChanged:
		return fmt.Sprintf("connection %s (%s)", e.Status, e.Reason)
	case SignalDialogStateChanged:
		return "dialog " + e.State
	default:
		return e.Name
	}
}

// ParseSignal decodes a control signal. Signals from other interfaces and
// malformed bodies are errors.
func ParseSignal(sig *dbus.Signal) (Event, error) {
	if sig == nil {
		return Event{}, fmt.Errorf("nil signal")
	}
	if sig.Path != DBusPath {
		return Event{}, fmt.Errorf("signal from unexpected path %s", sig.Path)
	}

	switch sig.Name {
	case DBusInterface + "." + SignalConnectionStatusChanged:
		if len(sig.Body) != 2 {
			return Event{}, fmt.Errorf("%s: expected 2 arguments, got %d", SignalConnectionStatusChanged, len(sig.Body))
		}
		status, ok1 := sig.Body[0].(string)
		reason, ok2 := sig.Body[1].(string)
		if !ok1 || !ok2 {
			return Event{}, fmt.Errorf("%s: invalid argument types", SignalConnectionStatusChanged)
		}
		return Event{Name: SignalConnectionStatusChanged, Status: status, Reason: reason}, nil

	case DBusInterface + "." + SignalDialogStateChanged:
		if len(sig.Body) != 1 {
			return Event{}, fmt.Errorf("%s: expected 1 argument, got %d", SignalDialogStateChanged, len(sig.Body))
		}
		state, ok := sig.Body[0].(string)
		if !ok {
			return Event{}, fmt.Errorf("%s: invalid argument type", SignalDialogStateChanged)
		}
		return Event{Name: SignalDialogStateChanged, State: state}, nil

	default:
		return Event{}, fmt.Errorf("unknown signal %s", sig.Name)
	}
}
