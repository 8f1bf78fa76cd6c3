package loopback

import (
	"sync"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/connection"
	"github.com/jmylchreest/smartscreen/internal/endpoint"
	"github.com/jmylchreest/smartscreen/internal/future"
)

// Sequencer records directive handler registrations.
type Sequencer struct {
	*Component
	mu       sync.Mutex
	reject   bool
	handlers []capability.DirectiveHandler
	messages []string
}

// NewSequencer returns a sequencer.
func NewSequencer(rec *Recorder) *Sequencer {
	return &Sequencer{Component: newComponent(rec, "directive-sequencer", "", "")}
}

// SetReject makes later registrations fail.
func (s *Sequencer) SetReject(reject bool) {
	s.mu.Lock()
	s.reject = reject
	s.mu.Unlock()
}

// AddDirectiveHandler registers h.
func (s *Sequencer) AddDirectiveHandler(h capability.DirectiveHandler) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reject {
		return false
	}
	s.handlers = append(s.handlers, h)
	return true
}

// RemoveDirectiveHandler unregisters h.
func (s *Sequencer) RemoveDirectiveHandler(h capability.DirectiveHandler) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.handlers {
		if existing == h {
			s.handlers = append(s.handlers[:i], s.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// Handlers returns the registered handlers.
func (s *Sequencer) Handlers() []capability.DirectiveHandler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]capability.DirectiveHandler(nil), s.handlers...)
}

// OnMessageReceived records an inbound message.
func (s *Sequencer) OnMessageReceived(_ string, message string) {
	s.mu.Lock()
	s.messages = append(s.messages, message)
	s.mu.Unlock()
}

// Messages returns the inbound messages seen.
func (s *Sequencer) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

// EndpointManager answers registrations with a preset or later result.
type EndpointManager struct {
	*Component
	mu       sync.Mutex
	preset   *endpoint.RegistrationResult
	resolve  func(endpoint.RegistrationResult)
	last     *endpoint.Descriptor
}

// NewEndpointManager returns a manager whose registrations stay pending.
func NewEndpointManager(rec *Recorder) *EndpointManager {
	return &EndpointManager{Component: newComponent(rec, "endpoint-manager", "", "")}
}

// Preset makes later registrations resolve to r immediately.
func (m *EndpointManager) Preset(r endpoint.RegistrationResult) {
	m.mu.Lock()
	m.preset = &r
	m.mu.Unlock()
}

// RegisterEndpoint records d.
func (m *EndpointManager) RegisterEndpoint(d *endpoint.Descriptor) *future.Future[endpoint.RegistrationResult] {
	m.record("registerEndpoint")
	m.mu.Lock()
	defer m.mu.Unlock()

	m.last = d
	if m.preset != nil {
		return future.Resolved(*m.preset)
	}
	f, resolve := future.New[endpoint.RegistrationResult]()
	m.resolve = resolve
	return f
}

// Resolve completes the pending registration.
func (m *EndpointManager) Resolve(r endpoint.RegistrationResult) {
	m.mu.Lock()
	resolve := m.resolve
	m.mu.Unlock()
	if resolve != nil {
		resolve(r)
	}
}

// Endpoint returns the last registered descriptor.
func (m *EndpointManager) Endpoint() *endpoint.Descriptor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// WaitForPendingRegistrationsToEnqueue records the wait.
func (m *EndpointManager) WaitForPendingRegistrationsToEnqueue() {
	m.record("waitForPendingRegistrationsToEnqueue")
}

// StatusAgent is an agent that observes the connection.
type StatusAgent struct {
	*Component
	mu     sync.Mutex
	status connection.Status
}

// NewStatusAgent returns an agent named name.
func NewStatusAgent(rec *Recorder, name, iface, version string) *StatusAgent {
	return &StatusAgent{Component: newComponent(rec, name, iface, version)}
}

// OnConnectionStatusChanged records status.
func (a *StatusAgent) OnConnectionStatusChanged(status connection.Status, _ connection.ChangeReason) {
	a.mu.Lock()
	a.status = status
	a.mu.Unlock()
}

// Status returns the last status seen.
func (a *StatusAgent) Status() connection.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Alerts records local stops.
type Alerts struct {
	*Observable[capability.AlertsObserver]
	player capability.MediaPlayer
}

// NewAlerts returns an alerts agent ringing through player.
func NewAlerts(rec *Recorder, player capability.MediaPlayer) *Alerts {
	return &Alerts{
		Observable: newObservable[capability.AlertsObserver](rec, "alerts", "Alerts", "1.4"),
		player:     player,
	}
}

// Ring simulates an alert going off.
func (a *Alerts) Ring(token string) {
	if a.player != nil {
		_ = a.player.Play("alarm")
	}
	a.Notify(func(o capability.AlertsObserver) { o.OnAlertStateChange(token, capability.AlertStarted, "") })
}

// OnLocalStop stops the active alert.
func (a *Alerts) OnLocalStop() {
	a.record("onLocalStop")
	if a.player != nil {
		_ = a.player.Stop()
	}
	a.Notify(func(o capability.AlertsObserver) { o.OnAlertStateChange("", capability.AlertStopped, "localStop") })
}

// CallManager records call controls.
type CallManager struct {
	*Observable[capability.CallStateObserver]
	mu     sync.Mutex
	status connection.Status
}

// NewCallManager returns a call manager.
func NewCallManager(rec *Recorder) *CallManager {
	return &CallManager{
		Observable: newObservable[capability.CallStateObserver](rec, "call-manager", "Comms", "1.0"),
	}
}

// OnConnectionStatusChanged records status.
func (m *CallManager) OnConnectionStatusChanged(status connection.Status, _ connection.ChangeReason) {
	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

// Status returns the last connection status seen.
func (m *CallManager) Status() connection.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// SetCallState simulates a call state change.
func (m *CallManager) SetCallState(state capability.CallState) {
	m.Notify(func(o capability.CallStateObserver) { o.OnCallStateChange(state) })
}

// AcceptCall records the call.
func (m *CallManager) AcceptCall() { m.record("acceptCall") }

// SendDTMF records the tone.
func (m *CallManager) SendDTMF(tone string) { m.record("sendDTMF:" + tone) }

// StopCall records the call.
func (m *CallManager) StopCall() { m.record("stopCall") }

// MultiRoomMusic follows call state.
type MultiRoomMusic struct {
	*Component
	mu    sync.Mutex
	state capability.CallState
}

// NewMultiRoomMusic returns a multi-room music agent.
func NewMultiRoomMusic(rec *Recorder) *MultiRoomMusic {
	return &MultiRoomMusic{Component: newComponent(rec, "multi-room-music", "MRM", "1.1")}
}

// OnCallStateChange records the call state.
func (m *MultiRoomMusic) OnCallStateChange(state capability.CallState) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}

// CallState returns the last call state seen.
func (m *MultiRoomMusic) CallState() capability.CallState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// EqualizerController records equalizer registrations.
type EqualizerController struct {
	*Component
	mu         sync.Mutex
	equalizers []capability.Equalizer
	listeners  []capability.EqualizerListener
}

// NewEqualizerController returns a controller.
func NewEqualizerController(rec *Recorder) *EqualizerController {
	return &EqualizerController{Component: newComponent(rec, "equalizer-controller", "", "")}
}

// RegisterEqualizer adds e.
func (c *EqualizerController) RegisterEqualizer(e capability.Equalizer) {
	c.record("registerEqualizer")
	c.mu.Lock()
	c.equalizers = append(c.equalizers, e)
	c.mu.Unlock()
}

// UnregisterEqualizer removes e.
func (c *EqualizerController) UnregisterEqualizer(e capability.Equalizer) {
	c.record("unregisterEqualizer")
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.equalizers {
		if existing == e {
			c.equalizers = append(c.equalizers[:i], c.equalizers[i+1:]...)
			return
		}
	}
}

// AddListener adds l.
func (c *EqualizerController) AddListener(l capability.EqualizerListener) {
	c.record("addListener")
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

// RemoveListener removes l.
func (c *EqualizerController) RemoveListener(l capability.EqualizerListener) {
	c.record("removeListener")
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.listeners {
		if existing == l {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			return
		}
	}
}

// Registered returns how many equalizers and listeners are registered.
func (c *EqualizerController) Registered() (equalizers, listeners int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.equalizers), len(c.listeners)
}

// SoftwareInfoSender records firmware reports.
type SoftwareInfoSender struct {
	*Component
	mu      sync.Mutex
	version capability.FirmwareVersion
}

// NewSoftwareInfoSender returns a sender for version.
func NewSoftwareInfoSender(rec *Recorder, version capability.FirmwareVersion) *SoftwareInfoSender {
	return &SoftwareInfoSender{Component: newComponent(rec, "software-info-sender", "", ""), version: version}
}

// SetFirmwareVersion records v.
func (s *SoftwareInfoSender) SetFirmwareVersion(v capability.FirmwareVersion) bool {
	s.record("setFirmwareVersion")
	s.mu.Lock()
	s.version = v
	s.mu.Unlock()
	return true
}

// Version returns the last reported version.
func (s *SoftwareInfoSender) Version() capability.FirmwareVersion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// SettingsManager keeps settings in a store.
type SettingsManager struct {
	store capability.Store
}

const settingsNamespace = "settings"

// Setting returns a stored setting.
func (m *SettingsManager) Setting(name string) (string, bool) {
	v, ok, err := m.store.Get(settingsNamespace, name)
	if err != nil {
		return "", false
	}
	return v, ok
}

// SetSetting stores a setting.
func (m *SettingsManager) SetSetting(name, value string) bool {
	return m.store.Put(settingsNamespace, name, value) == nil
}

// RegistrationManager clears customer data on logout.
type RegistrationManager struct {
	rec  *Recorder
	data capability.CustomerDataManager
}

// Logout records the logout and clears customer data.
func (m *RegistrationManager) Logout() {
	m.rec.Record("registration-manager", "logout")
	m.data.ClearData()
}

// PlaybackRouter records button presses.
type PlaybackRouter struct {
	*Component
}

// PlayButtonPressed records the press.
func (r *PlaybackRouter) PlayButtonPressed() { r.record("play") }

// PauseButtonPressed records the press.
func (r *PlaybackRouter) PauseButtonPressed() { r.record("pause") }

// NextButtonPressed records the press.
func (r *PlaybackRouter) NextButtonPressed() { r.record("next") }

// PreviousButtonPressed records the press.
func (r *PlaybackRouter) PreviousButtonPressed() { r.record("previous") }
