package capability

import (
	"sort"
	"sync"
)

// Feature names an optional capability.
type Feature string

// Optional features.
const (
	FeatureTelephony           Feature = "telephony"
	FeatureMeetings            Feature = "meetings"
	FeatureComms               Feature = "comms"
	FeatureMultiRoomMusic      Feature = "multi-room-music"
	FeatureCaptions            Feature = "captions"
	FeatureRevokeAuthorization Feature = "revoke-authorization"
	FeatureBluetooth           Feature = "bluetooth"
	FeatureEqualizer           Feature = "equalizer"
)

// Registry holds the optional capabilities that were built, keyed by
// feature. A nil registry is empty.
type Registry struct {
	mu       sync.RWMutex
	features map[Feature]any
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{features: make(map[Feature]any)}
}

// Set records a built feature. Nil components are ignored.
func (r *Registry) Set(f Feature, component any) {
	if r == nil || component == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.features[f] = component
}

// Get returns the component for f.
func (r *Registry) Get(f Feature) (any, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.features[f]
	return c, ok
}

// Has reports whether f was built.
func (r *Registry) Has(f Feature) bool {
	_, ok := r.Get(f)
	return ok
}

// Names returns the built features sorted by name.
func (r *Registry) Names() []Feature {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Feature, 0, len(r.features))
	for f := range r.features {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Lookup returns the component for f if it has type T.
func Lookup[T any](r *Registry, f Feature) (T, bool) {
	var zero T
	c, ok := r.Get(f)
	if !ok {
		return zero, false
	}
	t, ok := c.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
