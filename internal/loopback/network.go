package loopback

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/connection"
)

// ErrOffline is returned when sending while no session exists.
var ErrOffline = errors.New("loopback router offline")

// Router is a message router that connects instantly unless told not to.
type Router struct {
	*Component
	logger *slog.Logger

	mu        sync.Mutex
	handler   connection.RouterHandler
	gateway   string
	session   string
	reachable bool
	sent      []connection.Message
}

var _ connection.Router = (*Router)(nil)

// NewRouter returns a reachable router for gateway.
func NewRouter(rec *Recorder, gateway string, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		Component: newComponent(rec, "message-router", "", ""),
		logger:    logger,
		gateway:   gateway,
		reachable: true,
	}
}

// SetReachable controls whether Enable establishes a session.
func (r *Router) SetReachable(reachable bool) {
	r.mu.Lock()
	r.reachable = reachable
	r.mu.Unlock()
}

// Enable opens a session.
func (r *Router) Enable() {
	r.record("enable")
	r.mu.Lock()
	h, reachable := r.handler, r.reachable
	if reachable {
		r.session = uuid.NewString()
	}
	session := r.session
	r.mu.Unlock()

	if h == nil {
		return
	}
	h.OnStatusChanged(connection.StatusPending, connection.ReasonClientRequest)
	if reachable {
		r.logger.Debug("loopback session opened", "session", session)
		h.OnStatusChanged(connection.StatusConnected, connection.ReasonClientRequest)
	}
}

// Disable closes the session.
func (r *Router) Disable() {
	r.record("disable")
	r.mu.Lock()
	h := r.handler
	r.session = ""
	r.mu.Unlock()

	if h != nil {
		h.OnStatusChanged(connection.StatusDisconnected, connection.ReasonClientDisabled)
	}
}

// Drop simulates the service closing the session.
func (r *Router) Drop() {
	r.mu.Lock()
	h := r.handler
	r.session = ""
	r.mu.Unlock()

	if h != nil {
		h.OnStatusChanged(connection.StatusDisconnected, connection.ReasonServerSideDisconnect)
	}
}

// Deliver simulates an inbound message.
func (r *Router) Deliver(contextID, message string) {
	r.mu.Lock()
	h := r.handler
	r.mu.Unlock()
	if h != nil {
		h.OnMessageReceived(contextID, message)
	}
}

// Session returns the current session id, empty when offline.
func (r *Router) Session() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// Gateway returns the gateway address.
func (r *Router) Gateway() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gateway
}

// SetGateway changes the gateway address.
func (r *Router) SetGateway(address string) {
	r.record("setGateway")
	r.mu.Lock()
	r.gateway = address
	r.mu.Unlock()
}

// Send records msg.
func (r *Router) Send(msg connection.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == "" {
		return ErrOffline
	}
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns the messages sent so far.
func (r *Router) Sent() []connection.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]connection.Message(nil), r.sent...)
}

// SetHandler installs the status handler.
func (r *Router) SetHandler(h connection.RouterHandler) {
	r.mu.Lock()
	r.handler = h
	r.mu.Unlock()
}

// InternetMonitor reports network reachability set by the test or host.
type InternetMonitor struct {
	*Observable[connection.InternetConnectionObserver]
}

// NewInternetMonitor returns a monitor.
func NewInternetMonitor(rec *Recorder) *InternetMonitor {
	return &InternetMonitor{newObservable[connection.InternetConnectionObserver](rec, "internet-monitor", "", "")}
}

// SetConnected notifies observers of reachability.
func (m *InternetMonitor) SetConnected(connected bool) {
	m.Notify(func(o connection.InternetConnectionObserver) {
		o.OnInternetConnectionChanged(connected)
	})
}

// CapabilitiesDelegate publishes capabilities when the connection comes up.
type CapabilitiesDelegate struct {
	*Observable[capability.CapabilitiesObserver]
	mu          sync.Mutex
	autoPublish bool
}

// NewCapabilitiesDelegate returns a delegate that reports success on every
// connect.
func NewCapabilitiesDelegate(rec *Recorder) *CapabilitiesDelegate {
	return &CapabilitiesDelegate{
		Observable:  newObservable[capability.CapabilitiesObserver](rec, "capabilities-delegate", "", ""),
		autoPublish: true,
	}
}

// SetAutoPublish controls whether a connect reports success.
func (d *CapabilitiesDelegate) SetAutoPublish(on bool) {
	d.mu.Lock()
	d.autoPublish = on
	d.mu.Unlock()
}

// OnConnectionStatusChanged publishes on connect.
func (d *CapabilitiesDelegate) OnConnectionStatusChanged(status connection.Status, _ connection.ChangeReason) {
	d.record("connectionStatus:" + status.String())
	d.mu.Lock()
	publish := d.autoPublish
	d.mu.Unlock()
	if status == connection.StatusConnected && publish {
		d.Publish(capability.CapabilitiesSuccess, "")
	}
}

// Publish reports a capability publishing result.
func (d *CapabilitiesDelegate) Publish(state capability.CapabilitiesState, reason string) {
	d.Notify(func(o capability.CapabilitiesObserver) {
		o.OnCapabilitiesStateChange(state, reason, nil, nil)
	})
}

// GatewayManager records gateway assigners.
type GatewayManager struct {
	*Component
	mu       sync.Mutex
	assigner connection.GatewayAssigner
}

// NewGatewayManager returns a gateway manager.
func NewGatewayManager(rec *Recorder) *GatewayManager {
	return &GatewayManager{Component: newComponent(rec, "gateway-manager", "", "")}
}

// SetGatewayAssigner records a.
func (g *GatewayManager) SetGatewayAssigner(a connection.GatewayAssigner) {
	g.record("setGatewayAssigner")
	g.mu.Lock()
	g.assigner = a
	g.mu.Unlock()
}

// Assign hands address to the registered assigner.
func (g *GatewayManager) Assign(address string) bool {
	g.mu.Lock()
	a := g.assigner
	g.mu.Unlock()
	if a == nil {
		return false
	}
	a.SetGateway(address)
	return true
}

// StaticAuth returns a fixed token.
type StaticAuth struct {
	Token string
}

// AuthToken returns the token.
func (a StaticAuth) AuthToken() (string, error) {
	if a.Token == "" {
		return "", errors.New("no token")
	}
	return a.Token, nil
}

// Transport is a loopback transport.
type Transport struct {
	rec *Recorder
}

// Connect records the connect.
func (t *Transport) Connect() error { t.rec.Record("transport", "connect"); return nil }

// Disconnect records the disconnect.
func (t *Transport) Disconnect() { t.rec.Record("transport", "disconnect") }

// Send records the message.
func (t *Transport) Send(msg connection.Message) error {
	t.rec.Record("transport", "send:"+msg.Namespace+"."+msg.Name)
	return nil
}

// TransportFactory creates loopback transports.
type TransportFactory struct {
	rec *Recorder
}

// CreateTransport returns a loopback transport.
func (f *TransportFactory) CreateTransport(string, capability.AuthDelegate) (capability.Transport, error) {
	return &Transport{rec: f.rec}, nil
}

// ContextManager records state updates.
type ContextManager struct {
	mu    sync.Mutex
	state map[string]string
}

// SetState records a component state.
func (m *ContextManager) SetState(namespace, name, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		m.state = make(map[string]string)
	}
	m.state[namespace+"."+name] = state
}

// State returns the recorded state for namespace.name.
func (m *ContextManager) State(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state[key]
}

// CustomerData records data wipes.
type CustomerData struct {
	rec *Recorder
}

// ClearData records the wipe.
func (d *CustomerData) ClearData() { d.rec.Record("customer-data", "clearData") }

// Locales is a fixed locale list.
type Locales struct {
	Locales []string
}

// DefaultLocale returns the first locale.
func (l Locales) DefaultLocale() string {
	if len(l.Locales) == 0 {
		return "en-US"
	}
	return l.Locales[0]
}

// SupportedLocales returns all locales.
func (l Locales) SupportedLocales() []string { return l.Locales }

// VisualState records visual context requests.
type VisualState struct {
	rec *Recorder
}

// ProvideState records the request.
func (v *VisualState) ProvideState(uint32) { v.rec.Record("visual-state", "provideState") }

// BluetoothDevices is a fixed device list.
type BluetoothDevices struct {
	Addresses []string
}

// Devices returns the device addresses.
func (b BluetoothDevices) Devices() []string { return b.Addresses }
