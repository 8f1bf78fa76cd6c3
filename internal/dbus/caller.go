package dbus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Caller invokes the control interface of a running smartscreend.
type Caller struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewCaller connects to the session bus.
func NewCaller() (*Caller, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return NewCallerOn(conn), nil
}

// NewCallerOn uses an existing connection.
func NewCallerOn(conn *dbus.Conn) *Caller {
	return &Caller{conn: conn, obj: conn.Object(DBusBusName, DBusPath)}
}

func (c *Caller) call(ctx context.Context, method string, args ...any) *dbus.Call {
	return c.obj.CallWithContext(ctx, DBusInterface+"."+method, 0, args...)
}

// Connect asks the daemon to enable the connection.
func (c *Caller) Connect(ctx context.Context, reset bool) error {
	return c.call(ctx, "Connect", reset).Err
}

// Disconnect asks the daemon to disable the connection.
func (c *Caller) Disconnect(ctx context.Context) error {
	return c.call(ctx, "Disconnect").Err
}

// Status fetches the connection snapshot.
func (c *Caller) Status(ctx context.Context) (Status, error) {
	var st Status
	err := c.call(ctx, "GetStatus").Store(&st.Status, &st.Reason, &st.Connected, &st.Gateway, &st.Dialog)
	return st, err
}

// Trigger invokes one of the recognition triggers and reports whether it
// was accepted. keyword is only sent for WakeWord.
func (c *Caller) Trigger(ctx context.Context, method, keyword string) (bool, error) {
	var args []any
	if method == "WakeWord" {
		args = append(args, keyword)
	}
	var accepted bool
	err := c.call(ctx, method, args...).Store(&accepted)
	return accepted, err
}

// Invoke calls a method that takes and returns nothing.
func (c *Caller) Invoke(ctx context.Context, method string) error {
	return c.call(ctx, method).Err
}

// SetFirmwareVersion reports a new firmware version.
func (c *Caller) SetFirmwareVersion(ctx context.Context, version int32) error {
	return c.call(ctx, "SetFirmwareVersion", version).Err
}

// Watch delivers control signals to fn until ctx ends.
func (c *Caller) Watch(ctx context.Context, fn func(Event)) error {
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(DBusPath),
		dbus.WithMatchInterface(DBusInterface),
	}
	if err := c.conn.AddMatchSignal(opts...); err != nil {
		return fmt.Errorf("failed to add match rule: %w", err)
	}
	defer func() { _ = c.conn.RemoveMatchSignal(opts...) }()

	ch := make(chan *dbus.Signal, 16)
	c.conn.Signal(ch)
	defer c.conn.RemoveSignal(ch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-ch:
			ev, err := ParseSignal(sig)
			if err != nil {
				continue
			}
			fn(ev)
		}
	}
}
