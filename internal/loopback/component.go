package loopback

import (
	"sync/atomic"

	"github.com/jmylchreest/smartscreen/internal/endpoint"
	"github.com/jmylchreest/smartscreen/internal/observer"
)

// Component is the common part of every loopback capability.
type Component struct {
	name       string
	rec        *Recorder
	namespaces []string
	configs    []endpoint.Configuration
	shutdown   atomic.Bool
}

func newComponent(rec *Recorder, name, iface, version string) *Component {
	c := &Component{name: name, rec: rec}
	if iface != "" {
		c.namespaces = []string{iface}
		c.configs = []endpoint.Configuration{{Type: "AlexaInterface", Interface: iface, Version: version}}
	}
	return c
}

// Name returns the component name used in the recorder.
func (c *Component) Name() string { return c.name }

// Shutdown records the shutdown.
func (c *Component) Shutdown() {
	c.rec.Record(c.name, "shutdown")
	c.shutdown.Store(true)
}

// IsShutdown reports whether Shutdown was called.
func (c *Component) IsShutdown() bool { return c.shutdown.Load() }

// Namespaces returns the directive namespaces handled.
func (c *Component) Namespaces() []string { return c.namespaces }

// Configurations returns the advertised interfaces.
func (c *Component) Configurations() []endpoint.Configuration { return c.configs }

func (c *Component) record(call string) { c.rec.Record(c.name, call) }

// Observable is a component other components can observe.
type Observable[O comparable] struct {
	*Component
	observers *observer.Set[O]
}

func newObservable[O comparable](rec *Recorder, name, iface, version string) *Observable[O] {
	return &Observable[O]{
		Component: newComponent(rec, name, iface, version),
		observers: observer.NewSet[O](),
	}
}

// AddObserver registers o.
func (s *Observable[O]) AddObserver(o O) {
	s.record("addObserver")
	s.observers.Add(o)
}

// RemoveObserver unregisters o.
func (s *Observable[O]) RemoveObserver(o O) {
	s.record("removeObserver")
	s.observers.Remove(o)
}

// Observers returns the registered observers.
func (s *Observable[O]) Observers() []O {
	return s.observers.Snapshot()
}

// Notify calls fn for every observer.
func (s *Observable[O]) Notify(fn func(O)) {
	s.observers.Notify(fn)
}
