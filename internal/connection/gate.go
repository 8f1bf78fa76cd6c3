package connection

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/smartscreen/internal/observer"
)

// Gate owns the enabled/disabled intent for the service connection and fans
// status transitions out to observers.
type Gate struct {
	router Router
	logger *slog.Logger

	// mu guards state only. Router calls are made without it because the
	// router reports back into the gate synchronously.
	mu sync.Mutex

	enabled  bool
	status   Status
	reason   ChangeReason
	internet bool
	shutdown bool

	statusObservers  *observer.Set[StatusObserver]
	messageObservers *observer.Set[MessageObserver]
}

var (
	_ GatewayAssigner            = (*Gate)(nil)
	_ InternetConnectionObserver = (*Gate)(nil)
)

// NewGate creates a gate over router with the given initial observers.
func NewGate(router Router, observers []StatusObserver, logger *slog.Logger) (*Gate, error) {
	if router == nil {
		return nil, fmt.Errorf("router is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gate{
		router:           router,
		logger:           logger,
		status:           StatusDisconnected,
		internet:         true,
		statusObservers:  observer.NewSet[StatusObserver](),
		messageObservers: observer.NewSet[MessageObserver](),
	}
	for _, o := range observers {
		if o != nil {
			g.statusObservers.Add(o)
		}
	}

	router.SetHandler(&routerHandler{gate: g})
	return g, nil
}

// Enable asks for a session. Calling it while already enabled does nothing.
func (g *Gate) Enable() {
	g.mu.Lock()
	if g.shutdown || g.enabled {
		g.mu.Unlock()
		return
	}
	g.enabled = true
	g.mu.Unlock()

	g.logger.Debug("enabling connection")
	g.router.Enable()
}

// Disable ends the session if there is one. It is safe to call at any time.
func (g *Gate) Disable() {
	g.mu.Lock()
	if g.shutdown || !g.enabled {
		g.mu.Unlock()
		return
	}
	g.enabled = false
	g.mu.Unlock()

	g.logger.Debug("disabling connection")
	g.router.Disable()
}

// IsEnabled reports whether a session has been requested.
func (g *Gate) IsEnabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.enabled
}

// IsConnected reports whether a session is established.
func (g *Gate) IsConnected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status == StatusConnected
}

// Status returns the last reported status and its reason.
func (g *Gate) Status() (Status, ChangeReason) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status, g.reason
}

// Gateway returns the current service gateway address.
func (g *Gate) Gateway() string {
	return g.router.Gateway()
}

// SetGateway assigns a new gateway address.
func (g *Gate) SetGateway(address string) {
	if g.isShutdown() {
		return
	}
	g.logger.Info("gateway assigned", "gateway", address)
	g.router.SetGateway(address)
}

// Send forwards an outbound message to the router.
func (g *Gate) Send(msg Message) error {
	if g.isShutdown() {
		return ErrShutdown
	}
	if err := g.router.Send(msg); err != nil {
		return fmt.Errorf("failed to send %s.%s: %w", msg.Namespace, msg.Name, err)
	}
	return nil
}

// AddObserver registers a status observer. New observers are told the
// current status immediately.
func (g *Gate) AddObserver(o StatusObserver) {
	if o == nil || !g.statusObservers.Add(o) {
		return
	}
	status, reason := g.Status()
	o.OnConnectionStatusChanged(status, reason)
}

// RemoveObserver unregisters a status observer.
func (g *Gate) RemoveObserver(o StatusObserver) {
	if o != nil {
		g.statusObservers.Remove(o)
	}
}

// AddMessageObserver registers an inbound message observer.
func (g *Gate) AddMessageObserver(o MessageObserver) {
	if o != nil {
		g.messageObservers.Add(o)
	}
}

// RemoveMessageObserver unregisters an inbound message observer.
func (g *Gate) RemoveMessageObserver(o MessageObserver) {
	if o != nil {
		g.messageObservers.Remove(o)
	}
}

// OnInternetConnectionChanged reconnects when the network comes back while
// a session is wanted but not established.
func (g *Gate) OnInternetConnectionChanged(connected bool) {
	g.mu.Lock()
	restored := connected && !g.internet
	g.internet = connected
	reconnect := restored && g.enabled && !g.shutdown && g.status != StatusConnected
	g.mu.Unlock()

	if !connected {
		g.logger.Info("internet connection lost")
		return
	}
	if !reconnect {
		return
	}

	g.logger.Info("internet connection restored, reconnecting")
	g.router.Disable()
	g.router.Enable()
}

// Shutdown disables the gate permanently and drops all observers. Later
// calls do nothing.
func (g *Gate) Shutdown() {
	g.mu.Lock()
	if g.shutdown {
		g.mu.Unlock()
		return
	}
	g.shutdown = true
	wasEnabled := g.enabled
	g.enabled = false
	g.mu.Unlock()

	if wasEnabled {
		g.router.Disable()
	}
	g.router.SetHandler(nil)

	g.mu.Lock()
	g.status = StatusDisconnected
	g.reason = ReasonShutdown
	g.mu.Unlock()
	for _, o := range g.statusObservers.Snapshot() {
		g.statusObservers.Remove(o)
	}
	for _, o := range g.messageObservers.Snapshot() {
		g.messageObservers.Remove(o)
	}
	g.logger.Debug("connection gate shut down")
}

func (g *Gate) isShutdown() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.shutdown
}

func (g *Gate) statusChanged(status Status, reason ChangeReason) {
	g.mu.Lock()
	if g.shutdown || (status == g.status && reason == g.reason) {
		g.mu.Unlock()
		return
	}
	g.status = status
	g.reason = reason
	g.mu.Unlock()

	g.logger.Info("connection status changed", "status", status, "reason", reason)
	g.statusObservers.Notify(func(o StatusObserver) {
		o.OnConnectionStatusChanged(status, reason)
	})
}

func (g *Gate) messageReceived(contextID, message string) {
	g.messageObservers.Notify(func(o MessageObserver) {
		o.OnMessageReceived(contextID, message)
	})
}

// routerHandler keeps the router callbacks off the gate's public surface.
type routerHandler struct {
	gate *Gate
}

func (h *routerHandler) OnStatusChanged(status Status, reason ChangeReason) {
	h.gate.statusChanged(status, reason)
}

func (h *routerHandler) OnMessageReceived(contextID, message string) {
	h.gate.messageReceived(contextID, message)
}
