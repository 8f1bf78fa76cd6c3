package dbus

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/connection"
	"github.com/jmylchreest/smartscreen/internal/future"
)

// Controller is the client surface the control server drives.
type Controller interface {
	Connect(performReset bool) error
	Disconnect()
	ConnectionStatus() (connection.Status, connection.ChangeReason)
	IsConnected() bool
	Gateway() string
	DialogState() capability.DialogState

	NotifyOfWakeWord(provider capability.AudioProvider, begin, end capability.Index, keyword string, startOfSpeech time.Time, metadata []byte) *future.Future[bool]
	NotifyOfTapToTalk(provider capability.AudioProvider, begin capability.Index, startOfSpeech time.Time) *future.Future[bool]
	NotifyOfHoldToTalkStart(provider capability.AudioProvider, startOfSpeech time.Time) *future.Future[bool]
	NotifyOfHoldToTalkEnd() *future.Future[bool]
	NotifyOfTapToTalkEnd() *future.Future[bool]

	ForceExit()
	StopForegroundActivity()
	LocalStopActiveAlert()
	ClearCard()
	SetFirmwareVersion(v capability.FirmwareVersion) bool

	AddConnectionObserver(o connection.StatusObserver)
	RemoveConnectionObserver(o connection.StatusObserver)
	AddDialogStateObserver(o capability.DialogStateObserver)
	RemoveDialogStateObserver(o capability.DialogStateObserver)
}

// DefaultProvider is the audio stream triggers arriving over the bus read from.
var DefaultProvider = capability.AudioProvider{
	Name:           "microphone",
	Format:         "AUDIO_L16_RATE_16000_CHANNELS_1",
	AlwaysReadable: true,
	CanOverride:    true,
}

// ControlServer implements the io.github.jmylchreest.SmartScreen interface.
type ControlServer struct {
	conn     *dbus.Conn
	logger   *slog.Logger
	ctrl     Controller
	provider capability.AudioProvider
	timeout  time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	running bool
}

// NewControlServer creates a server for ctrl. Triggers wait at most timeout
// for the recognizer to accept or reject them.
func NewControlServer(ctrl Controller, timeout time.Duration, logger *slog.Logger) *ControlServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ControlServer{
		logger:   logger,
		ctrl:     ctrl,
		provider: DefaultProvider,
		timeout:  timeout,
		now:      time.Now,
	}
}

// SetProvider sets the audio provider used for bus-initiated recognitions.
func (s *ControlServer) SetProvider(p capability.AudioProvider) {
	s.provider = p
}

// SetTimeout sets how long triggers wait for a result.
func (s *ControlServer) SetTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = d
}

// Start connects to the session bus, exports the control object, and
// claims the bus name.
func (s *ControlServer) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	if err := s.Export(conn); err != nil {
		return err
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", DBusBusName)
	}

	s.ctrl.AddConnectionObserver(s)
	s.ctrl.AddDialogStateObserver(s)

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.logger.Info("D-Bus control server started", "interface", DBusInterface, "path", DBusPath)
	return nil
}

// Export publishes the control object and its introspection data on conn.
func (s *ControlServer) Export(conn *dbus.Conn) error {
	s.conn = conn

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: string(DBusPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: controlMethods(),
				Signals: controlSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}
	return nil
}

// Stop detaches from the client and releases the bus name.
func (s *ControlServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	s.ctrl.RemoveConnectionObserver(s)
	s.ctrl.RemoveDialogStateObserver(s)

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(DBusBusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// Don't close the connection as it's shared (SessionBus)
	}

	s.logger.Info("D-Bus control server stopped")
	return nil
}

// Connect enables the service connection.
// D-Bus method: Connect(b) -> nothing
func (s *ControlServer) Connect(reset bool) *dbus.Error {
	s.logger.Debug("Connect called", "reset", reset)
	if err := s.ctrl.Connect(reset); err != nil {
		return dbus.NewError(ErrorFailed, []any{err.Error()})
	}
	return nil
}

// Disconnect disables the service connection.
// D-Bus method: Disconnect() -> nothing
func (s *ControlServer) Disconnect() *dbus.Error {
	s.logger.Debug("Disconnect called")
	s.ctrl.Disconnect()
	return nil
}

// GetStatus returns the connection and dialog snapshot.
// D-Bus method: GetStatus() -> (ssbss)
func (s *ControlServer) GetStatus() (string, string, bool, string, string, *dbus.Error) {
	st := s.status()
	return st.Status, st.Reason, st.Connected, st.Gateway, st.Dialog, nil
}

// GetGateway returns the current gateway.
// D-Bus method: GetGateway() -> s
func (s *ControlServer) GetGateway() (string, *dbus.Error) {
	return s.ctrl.Gateway(), nil
}

func (s *ControlServer) status() Status {
	status, reason := s.ctrl.ConnectionStatus()
	return Status{
		Status:    status.String(),
		Reason:    reason.String(),
		Connected: s.ctrl.IsConnected(),
		Gateway:   s.ctrl.Gateway(),
		Dialog:    s.ctrl.DialogState().String(),
	}
}

// WakeWord starts a recognition as if keyword had been detected.
// D-Bus method: WakeWord(s) -> b
func (s *ControlServer) WakeWord(keyword string) (bool, *dbus.Error) {
	s.logger.Debug("WakeWord called", "keyword", keyword)
	return s.await("WakeWord", s.ctrl.NotifyOfWakeWord(s.provider,
		capability.IndexUnspecified, capability.IndexUnspecified, keyword, s.now(), nil))
}

// TapToTalk starts a tap-initiated recognition.
// D-Bus method: TapToTalk() -> b
func (s *ControlServer) TapToTalk() (bool, *dbus.Error) {
	return s.await("TapToTalk", s.ctrl.NotifyOfTapToTalk(s.provider, capability.IndexUnspecified, s.now()))
}

// HoldToTalkStart starts a press-and-hold recognition.
// D-Bus method: HoldToTalkStart() -> b
func (s *ControlServer) HoldToTalkStart() (bool, *dbus.Error) {
	return s.await("HoldToTalkStart", s.ctrl.NotifyOfHoldToTalkStart(s.provider, s.now()))
}

// HoldToTalkEnd stops a press-and-hold recognition.
// D-Bus method: HoldToTalkEnd() -> b
func (s *ControlServer) HoldToTalkEnd() (bool, *dbus.Error) {
	return s.await("HoldToTalkEnd", s.ctrl.NotifyOfHoldToTalkEnd())
}

// TapToTalkEnd stops a tap-initiated recognition.
// D-Bus method: TapToTalkEnd() -> b
func (s *ControlServer) TapToTalkEnd() (bool, *dbus.Error) {
	return s.await("TapToTalkEnd", s.ctrl.NotifyOfTapToTalkEnd())
}

func (s *ControlServer) await(method string, f *future.Future[bool]) (bool, *dbus.Error) {
	s.mu.RLock()
	timeout := s.timeout
	s.mu.RUnlock()

	ok, ready := f.WaitFor(timeout)
	if !ready {
		s.logger.Warn("trigger timed out", "method", method, "timeout", timeout)
		return false, dbus.NewError(ErrorTimeout, []any{method + " did not complete in " + timeout.String()})
	}
	return ok, nil
}

// ForceExit ends the current interaction.
// D-Bus method: ForceExit() -> nothing
func (s *ControlServer) ForceExit() *dbus.Error {
	s.logger.Debug("ForceExit called")
	s.ctrl.ForceExit()
	return nil
}

// StopForegroundActivity stops whatever holds the foreground audio channel.
// D-Bus method: StopForegroundActivity() -> nothing
func (s *ControlServer) StopForegroundActivity() *dbus.Error {
	s.ctrl.StopForegroundActivity()
	return nil
}

// StopAlert stops a sounding alert.
// D-Bus method: StopAlert() -> nothing
func (s *ControlServer) StopAlert() *dbus.Error {
	s.ctrl.LocalStopActiveAlert()
	return nil
}

// ClearCard dismisses the on-screen card.
// D-Bus method: ClearCard() -> nothing
func (s *ControlServer) ClearCard() *dbus.Error {
	s.ctrl.ClearCard()
	return nil
}

// SetFirmwareVersion reports a new firmware version.
// D-Bus method: SetFirmwareVersion(i) -> nothing
func (s *ControlServer) SetFirmwareVersion(version int32) *dbus.Error {
	s.logger.Debug("SetFirmwareVersion called", "version", version)
	if !s.ctrl.SetFirmwareVersion(capability.FirmwareVersion(version)) {
		return dbus.NewError(ErrorRejected, []any{fmt.Sprintf("firmware version %d rejected", version)})
	}
	return nil
}

// controlMethods returns the D-Bus method introspection data.
func controlMethods() []introspect.Method {
	trigger := func(name string, in ...introspect.Arg) introspect.Method {
		return introspect.Method{
			Name: name,
			Args: append(in, introspect.Arg{Name: "accepted", Type: "b", Direction: "out"}),
		}
	}
	return []introspect.Method{
		{
			Name: "Connect",
			Args: []introspect.Arg{
				{Name: "reset", Type: "b", Direction: "in"},
			},
		},
		{Name: "Disconnect"},
		{
			Name: "GetStatus",
			Args: []introspect.Arg{
				{Name: "status", Type: "s", Direction: "out"},
				{Name: "reason", Type: "s", Direction: "out"},
				{Name: "connected", Type: "b", Direction: "out"},
				{Name: "gateway", Type: "s", Direction: "out"},
				{Name: "dialog", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "GetGateway",
			Args: []introspect.Arg{
				{Name: "gateway", Type: "s", Direction: "out"},
			},
		},
		trigger("WakeWord", introspect.Arg{Name: "keyword", Type: "s", Direction: "in"}),
		trigger("TapToTalk"),
		trigger("HoldToTalkStart"),
		trigger("HoldToTalkEnd"),
		trigger("TapToTalkEnd"),
		{Name: "ForceExit"},
		{Name: "StopForegroundActivity"},
		{Name: "StopAlert"},
		{Name: "ClearCard"},
		{
			Name: "SetFirmwareVersion",
			Args: []introspect.Arg{
				{Name: "version", Type: "i", Direction: "in"},
			},
		},
	}
}

// controlSignals returns the D-Bus signal introspection data.
func controlSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: SignalConnectionStatusChanged,
			Args: []introspect.Arg{
				{Name: "status", Type: "s"},
				{Name: "reason", Type: "s"},
			},
		},
		{
			Name: SignalDialogStateChanged,
			Args: []introspect.Arg{
				{Name: "state", Type: "s"},
			},
		},
	}
}
