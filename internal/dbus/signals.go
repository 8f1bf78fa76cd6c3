package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/connection"
)

// EmitConnectionStatusChanged emits the ConnectionStatusChanged signal.
func (s *ControlServer) EmitConnectionStatusChanged(status connection.Status, reason connection.ChangeReason) error {
	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := s.conn.Emit(DBusPath, DBusInterface+"."+SignalConnectionStatusChanged, status.String(), reason.String())
	if err != nil {
		return fmt.Errorf("failed to emit %s signal: %w", SignalConnectionStatusChanged, err)
	}

	s.logger.Debug("emitted signal", "signal", SignalConnectionStatusChanged, "status", status, "reason", reason)
	return nil
}

// EmitDialogStateChanged emits the DialogStateChanged signal.
func (s *ControlServer) EmitDialogStateChanged(state capability.DialogState) error {
	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := s.conn.Emit(DBusPath, DBusInterface+"."+SignalDialogStateChanged, state.String())
	if err != nil {
		return fmt.Errorf("failed to emit %s signal: %w", SignalDialogStateChanged, err)
	}

	s.logger.Debug("emitted signal", "signal", SignalDialogStateChanged, "state", state)
	return nil
}

// OnConnectionStatusChanged forwards connection transitions to the bus.
func (s *ControlServer) OnConnectionStatusChanged(status connection.Status, reason connection.ChangeReason) {
	if err := s.EmitConnectionStatusChanged(status, reason); err != nil {
		s.logger.Warn("failed to forward connection status", "error", err)
	}
}

// OnDialogStateChanged forwards dialog transitions to the bus.
func (s *ControlServer) OnDialogStateChanged(state capability.DialogState) {
	if err := s.EmitDialogStateChanged(state); err != nil {
		s.logger.Warn("failed to forward dialog state", "error", err)
	}
}

// Connection returns the underlying D-Bus connection.
func (s *ControlServer) Connection() *dbus.Conn {
	return s.conn
}
