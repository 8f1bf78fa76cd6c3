package endpoint

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/smartscreen/internal/connection"
	"github.com/jmylchreest/smartscreen/internal/future"
)

type staticProvider []Configuration

func (p staticProvider) Configurations() []Configuration { return p }

var testIdentity = Identity{
	ClientID:     "client",
	ProductID:    "product",
	SerialNumber: "serial",
	FriendlyName: "Kitchen Screen",
	Manufacturer: "Acme",
}

// callLog records calls from every fake in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(c string) {
	l.mu.Lock()
	l.calls = append(l.calls, c)
	l.mu.Unlock()
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeManager struct {
	log     *callLog
	result  *future.Future[RegistrationResult]
	resolve func(RegistrationResult)
}

func newFakeManager(log *callLog) *fakeManager {
	f, resolve := future.New[RegistrationResult]()
	return &fakeManager{log: log, result: f, resolve: resolve}
}

func (m *fakeManager) RegisterEndpoint(d *Descriptor) *future.Future[RegistrationResult] {
	m.log.add("register " + d.ID())
	return m.result
}

func (m *fakeManager) WaitForPendingRegistrationsToEnqueue() {
	m.log.add("waitForEnqueue")
}

type fakeGateways struct{ log *callLog }

func (g *fakeGateways) SetGatewayAssigner(connection.GatewayAssigner) { g.log.add("setAssigner") }

type fakeGate struct{ log *callLog }

func (g *fakeGate) Enable()           { g.log.add("enable") }
func (g *fakeGate) SetGateway(string) {}

func newCoordinator(t *testing.T, log *callLog, m *fakeManager, withCaps bool) *Coordinator {
	t.Helper()
	b := NewDefaultBuilder(testIdentity)
	if withCaps {
		b.WithCapability(staticProvider{{Type: "AlexaInterface", Interface: "SpeechRecognizer", Version: "2.3"}})
	}
	gate := &fakeGate{log: log}
	c, err := NewCoordinator(CoordinatorConfig{
		Builder:        b,
		Manager:        m,
		GatewayManager: &fakeGateways{log: log},
		Assigner:       gate,
		Gate:           gate,
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestBuilder_BuildsOnce(t *testing.T) {
	b := NewDefaultBuilder(testIdentity).
		WithCapability(staticProvider{
			{Interface: "SpeechSynthesizer", Version: "1.3"},
			{Interface: "Alerts", Version: "1.4", Properties: map[string]string{"maxAlerts": "30"}},
		}).
		WithCapability(staticProvider{{Interface: "Alerts", Version: "1.4"}}).
		WithCapability(nil)

	require.NoError(t, b.FinishDefaultConfiguration())
	assert.ErrorIs(t, b.FinishDefaultConfiguration(), ErrConfigurationClosed)

	d, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "client::product::serial", d.ID())
	assert.Equal(t, "Kitchen Screen", d.FriendlyName())
	assert.Equal(t, "Acme", d.Manufacturer())

	configs := d.Configurations()
	require.Len(t, configs, 2)
	assert.Equal(t, "Alerts", configs[0].Interface)
	assert.Equal(t, "30", configs[0].Properties["maxAlerts"])

	configs[0].Properties["maxAlerts"] = "1"
	assert.Equal(t, "30", d.Configurations()[0].Properties["maxAlerts"], "descriptor is immutable")

	_, err = b.Build()
	assert.ErrorIs(t, err, ErrAlreadyBuilt)
}

func TestBuilder_RejectsEmpty(t *testing.T) {
	b := NewDefaultBuilder(testIdentity)
	assert.ErrorIs(t, b.FinishDefaultConfiguration(), ErrNoCapabilities)
	_, err := b.Build()
	assert.ErrorIs(t, err, ErrNoCapabilities)
}

func TestNewCoordinator_RequiresCollaborators(t *testing.T) {
	_, err := NewCoordinator(CoordinatorConfig{})
	require.Error(t, err)
}

func TestCoordinator_ConnectWithResetRegistersBeforeEnable(t *testing.T) {
	log := &callLog{}
	m := newFakeManager(log)
	c := newCoordinator(t, log, m, true)

	require.NoError(t, c.Connect(true))
	assert.Equal(t, []string{
		"register client::product::serial",
		"waitForEnqueue",
		"setAssigner",
		"enable",
	}, log.all())
	assert.Equal(t, StateEnqueued, c.State())
	assert.False(t, c.HasBuilder())

	m.resolve(RegistrationSucceeded)
	assert.Eventually(t, func() bool { return c.State() == StateSucceeded }, time.Second, time.Millisecond)
}

func TestCoordinator_SecondConnectOnlyEnables(t *testing.T) {
	log := &callLog{}
	m := newFakeManager(log)
	c := newCoordinator(t, log, m, true)

	require.NoError(t, c.Connect(true))
	require.NoError(t, c.Connect(true))
	require.NoError(t, c.Connect(false))

	calls := log.all()
	assert.Equal(t, 1, count(calls, "register client::product::serial"))
	assert.Equal(t, 3, count(calls, "enable"))
}

func TestCoordinator_ConnectWithoutResetSkipsRegistration(t *testing.T) {
	log := &callLog{}
	m := newFakeManager(log)
	c := newCoordinator(t, log, m, true)

	require.NoError(t, c.Connect(false))
	assert.Equal(t, []string{"enable"}, log.all())
	assert.True(t, c.HasBuilder())
	assert.Equal(t, StateNotBuilt, c.State())
}

func TestCoordinator_ImmediateFailureAbortsConnect(t *testing.T) {
	log := &callLog{}
	m := newFakeManager(log)
	m.resolve(RegistrationConfigurationError)
	c := newCoordinator(t, log, m, true)

	err := c.Connect(true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRegistrationFailed)
	assert.NotContains(t, log.all(), "enable")
	assert.NotContains(t, log.all(), "waitForEnqueue")
	assert.Equal(t, StateFailed, c.State())
	assert.Equal(t, RegistrationConfigurationError, c.Result())
}

func TestCoordinator_ImmediateSuccessContinues(t *testing.T) {
	log := &callLog{}
	m := newFakeManager(log)
	m.resolve(RegistrationSucceeded)
	c := newCoordinator(t, log, m, true)

	require.NoError(t, c.Connect(true))
	assert.Contains(t, log.all(), "enable")
}

func TestCoordinator_LateFailureIsRecordedNotAborting(t *testing.T) {
	log := &callLog{}
	m := newFakeManager(log)
	c := newCoordinator(t, log, m, true)

	require.NoError(t, c.Connect(true))
	m.resolve(RegistrationInternalError)

	assert.Eventually(t, func() bool { return c.State() == StateFailed }, time.Second, time.Millisecond)
	assert.Equal(t, RegistrationInternalError, c.Result())
}

func TestCoordinator_BuildFailureAborts(t *testing.T) {
	log := &callLog{}
	m := newFakeManager(log)
	c := newCoordinator(t, log, m, false)

	err := c.Connect(true)
	require.Error(t, err)
	assert.Empty(t, log.all())
}

func TestCoordinator_OnRegistrationResult(t *testing.T) {
	log := &callLog{}
	c := newCoordinator(t, log, newFakeManager(log), true)

	assert.False(t, c.OnRegistrationResult(RegistrationPending))
	assert.Equal(t, StateNotBuilt, c.State())
	assert.True(t, c.OnRegistrationResult(RegistrationSucceeded))
	assert.Equal(t, StateSucceeded, c.State())
}

func TestRegistrationResult_String(t *testing.T) {
	assert.Equal(t, "SUCCEEDED", RegistrationSucceeded.String())
	assert.Equal(t, "PENDING_REGISTRATION", RegistrationPending.String())
	assert.Equal(t, "ENQUEUED", StateEnqueued.String())
}

func count(calls []string, want string) int {
	n := 0
	for _, c := range calls {
		if c == want {
			n++
		}
	}
	return n
}
