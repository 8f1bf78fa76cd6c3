package endpoint

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/smartscreen/internal/connection"
	"github.com/jmylchreest/smartscreen/internal/future"
)

// RegistrationResult is the service's answer to an endpoint registration.
type RegistrationResult uint8

const (
	RegistrationSucceeded RegistrationResult = iota
	RegistrationConfigurationError
	RegistrationAlreadyRegistered
	RegistrationInternalError
	RegistrationPending
)

// String returns a human-readable result name.
func (r RegistrationResult) String() string {
	switch r {
	case RegistrationSucceeded:
		return "SUCCEEDED"
	case RegistrationConfigurationError:
		return "CONFIGURATION_ERROR"
	case RegistrationAlreadyRegistered:
		return "ALREADY_REGISTERED"
	case RegistrationInternalError:
		return "INTERNAL_ERROR"
	case RegistrationPending:
		return "PENDING_REGISTRATION"
	default:
		return "UNKNOWN"
	}
}

// Manager registers endpoints with the service.
type Manager interface {
	RegisterEndpoint(d *Descriptor) *future.Future[RegistrationResult]
	WaitForPendingRegistrationsToEnqueue()
}

// GatewayManager hands gateway changes to an assigner.
type GatewayManager interface {
	SetGatewayAssigner(a connection.GatewayAssigner)
}

// Enabler starts the service connection.
type Enabler interface {
	Enable()
}

// State is the lifecycle of the default endpoint registration.
type State uint8

const (
	StateNotBuilt State = iota
	StateBuilt
	StateEnqueued
	StateSucceeded
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateNotBuilt:
		return "NOT_BUILT"
	case StateBuilt:
		return "BUILT"
	case StateEnqueued:
		return "ENQUEUED"
	case StateSucceeded:
		return "SUCCEEDED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Coordinator makes sure the default endpoint registration is queued before
// the connection is enabled.
type Coordinator struct {
	manager  Manager
	gateways GatewayManager
	assigner connection.GatewayAssigner
	gate     Enabler
	logger   *slog.Logger

	// mu is held for the whole of Connect.
	mu      sync.Mutex
	builder *Builder
	state   State
	result  RegistrationResult
	done    chan struct{}
	closed  bool
}

// CoordinatorConfig holds the coordinator's collaborators.
type CoordinatorConfig struct {
	Builder        *Builder
	Manager        Manager
	GatewayManager GatewayManager
	Assigner       connection.GatewayAssigner
	Gate           Enabler
	Logger         *slog.Logger
}

// NewCoordinator creates a coordinator holding the default endpoint builder.
func NewCoordinator(cfg CoordinatorConfig) (*Coordinator, error) {
	if cfg.Manager == nil {
		return nil, fmt.Errorf("endpoint manager is required")
	}
	if cfg.GatewayManager == nil {
		return nil, fmt.Errorf("gateway manager is required")
	}
	if cfg.Gate == nil {
		return nil, fmt.Errorf("connection gate is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Coordinator{
		manager:  cfg.Manager,
		gateways: cfg.GatewayManager,
		assigner: cfg.Assigner,
		gate:     cfg.Gate,
		logger:   logger,
		builder:  cfg.Builder,
		state:    StateNotBuilt,
		result:   RegistrationPending,
		done:     make(chan struct{}),
	}, nil
}

// Connect enables the service connection. When performReset is set and the
// default endpoint has not been registered yet, it is built and its
// registration is queued first. A registration that has already failed by
// the time it is polled aborts the connect.
func (c *Coordinator) Connect(performReset bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if performReset && c.builder != nil {
		d, err := c.builder.Build()
		if err != nil {
			c.logger.Error("connect failed", "reason", "couldNotBuildDefaultEndpoint", "severity", "critical", "error", err)
			return fmt.Errorf("failed to build default endpoint: %w", err)
		}
		c.state = StateBuilt

		result := c.manager.RegisterEndpoint(d)
		if r, ready := result.WaitFor(0); ready && r != RegistrationSucceeded {
			c.state = StateFailed
			c.result = r
			c.logger.Error("connect failed", "reason", "registrationFailed", "severity", "critical", "result", r)
			return fmt.Errorf("%w: %s", ErrRegistrationFailed, r)
		}
		c.builder = nil

		c.manager.WaitForPendingRegistrationsToEnqueue()
		if c.assigner != nil {
			c.gateways.SetGatewayAssigner(c.assigner)
		}
		c.state = StateEnqueued
		go c.track(result)
	}

	c.gate.Enable()
	return nil
}

// OnRegistrationResult records a registration outcome reported outside of
// Connect. It returns true when the outcome is a success.
func (c *Coordinator) OnRegistrationResult(r RegistrationResult) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recordLocked(r)
}

func (c *Coordinator) recordLocked(r RegistrationResult) bool {
	if r == RegistrationPending {
		return false
	}
	c.result = r
	if r == RegistrationSucceeded {
		c.state = StateSucceeded
		return true
	}
	c.state = StateFailed
	c.logger.Error("endpoint registration failed", "reason", "registrationFailed", "result", r)
	return false
}

func (c *Coordinator) track(result *future.Future[RegistrationResult]) {
	select {
	case <-result.Done():
		r := result.Get()
		c.mu.Lock()
		if !c.closed && c.state == StateEnqueued {
			c.recordLocked(r)
		}
		c.mu.Unlock()
	case <-c.done:
	}
}

// State returns the registration lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Result returns the last known registration result.
func (c *Coordinator) Result() RegistrationResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// HasBuilder reports whether the default endpoint is still waiting to be
// registered.
func (c *Coordinator) HasBuilder() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builder != nil
}

// Close stops tracking outstanding registration results.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}
