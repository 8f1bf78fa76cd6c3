// Package endpoint builds the device's default endpoint and coordinates its
// registration with the service before the connection is enabled.
package endpoint

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Endpoint errors.
var (
	ErrAlreadyBuilt        = errors.New("endpoint already built")
	ErrNoCapabilities      = errors.New("endpoint has no capabilities")
	ErrConfigurationClosed = errors.New("default endpoint configuration already finished")
	ErrRegistrationFailed  = errors.New("endpoint registration failed")
	ErrNoBuilder           = errors.New("no default endpoint builder")
)

// Identity names the device the default endpoint describes.
type Identity struct {
	ClientID     string
	ProductID    string
	SerialNumber string
	FriendlyName string
	Manufacturer string
	Description  string
}

// DefaultEndpointID returns the identifier of the device's own endpoint.
func DefaultEndpointID(id Identity) string {
	return id.ClientID + "::" + id.ProductID + "::" + id.SerialNumber
}

// Configuration is one capability interface the endpoint advertises.
type Configuration struct {
	Type       string
	Interface  string
	Version    string
	Properties map[string]string
}

// Key identifies a configuration within an endpoint.
func (c Configuration) Key() string {
	return c.Interface + "@" + c.Version
}

// ConfigurationProvider supplies capability configurations.
type ConfigurationProvider interface {
	Configurations() []Configuration
}

// Descriptor is an immutable, fully built endpoint.
type Descriptor struct {
	id             string
	friendlyName   string
	manufacturer   string
	description    string
	configurations []Configuration
}

// ID returns the endpoint identifier.
func (d *Descriptor) ID() string { return d.id }

// FriendlyName returns the user-facing endpoint name.
func (d *Descriptor) FriendlyName() string { return d.friendlyName }

// Manufacturer returns the manufacturer name.
func (d *Descriptor) Manufacturer() string { return d.manufacturer }

// Description returns the endpoint description.
func (d *Descriptor) Description() string { return d.description }

// Configurations returns a copy of the advertised configurations, sorted by
// interface name.
func (d *Descriptor) Configurations() []Configuration {
	out := make([]Configuration, len(d.configurations))
	for i, c := range d.configurations {
		props := make(map[string]string, len(c.Properties))
		for k, v := range c.Properties {
			props[k] = v
		}
		c.Properties = props
		out[i] = c
	}
	return out
}

// Builder accumulates capabilities for an endpoint and builds it exactly
// once.
type Builder struct {
	mu       sync.Mutex
	identity Identity
	id       string
	configs  map[string]Configuration
	finished bool
	built    bool
}

// NewDefaultBuilder returns a builder for the device's own endpoint.
func NewDefaultBuilder(identity Identity) *Builder {
	return &Builder{
		identity: identity,
		id:       DefaultEndpointID(identity),
		configs:  make(map[string]Configuration),
	}
}

// ID returns the identifier the built endpoint will carry.
func (b *Builder) ID() string {
	return b.id
}

// WithCapability adds every configuration offered by p. Duplicate interfaces
// keep the first registration.
func (b *Builder) WithCapability(p ConfigurationProvider) *Builder {
	if p == nil {
		return b
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range p.Configurations() {
		if _, ok := b.configs[c.Key()]; !ok {
			b.configs[c.Key()] = c
		}
	}
	return b
}

// FinishDefaultConfiguration closes the builder to further default
// capabilities and checks it has something to advertise.
func (b *Builder) FinishDefaultConfiguration() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return ErrConfigurationClosed
	}
	if len(b.configs) == 0 {
		return ErrNoCapabilities
	}
	b.finished = true
	return nil
}

// Build produces the descriptor. It succeeds once; later calls return
// ErrAlreadyBuilt.
func (b *Builder) Build() (*Descriptor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built {
		return nil, ErrAlreadyBuilt
	}
	if len(b.configs) == 0 {
		return nil, ErrNoCapabilities
	}
	if b.identity.ClientID == "" || b.identity.ProductID == "" {
		return nil, fmt.Errorf("endpoint %q: incomplete identity", b.id)
	}
	b.built = true

	d := &Descriptor{
		id:           b.id,
		friendlyName: b.identity.FriendlyName,
		manufacturer: b.identity.Manufacturer,
		description:  b.identity.Description,
	}
	for _, c := range b.configs {
		d.configurations = append(d.configurations, c)
	}
	sort.Slice(d.configurations, func(i, j int) bool {
		return d.configurations[i].Key() < d.configurations[j].Key()
	})
	return d, nil
}
