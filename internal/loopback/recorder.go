// Package loopback provides in-process implementations of every client
// collaborator. They record what is done to them, in order, so the client
// can be exercised without a service connection.
package loopback

import (
	"strings"
	"sync"
)

// Recorder is an ordered log of calls across all loopback components.
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends "component.call".
func (r *Recorder) Record(component, call string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.calls = append(r.calls, component+"."+call)
	r.mu.Unlock()
}

// Calls returns a copy of the log.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Reset clears the log.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

// Index returns the position of the first entry equal to call, or -1.
func (r *Recorder) Index(call string) int {
	for i, c := range r.Calls() {
		if c == call {
			return i
		}
	}
	return -1
}

// LastIndex returns the position of the last entry equal to call, or -1.
func (r *Recorder) LastIndex(call string) int {
	calls := r.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i] == call {
			return i
		}
	}
	return -1
}

// Count returns how many entries equal call.
func (r *Recorder) Count(call string) int {
	n := 0
	for _, c := range r.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

// WithPrefix returns the entries that start with prefix.
func (r *Recorder) WithPrefix(prefix string) []string {
	var out []string
	for _, c := range r.Calls() {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Before reports whether a was recorded and first appears before b. A
// missing b counts as after.
func (r *Recorder) Before(a, b string) bool {
	ia, ib := r.Index(a), r.Index(b)
	if ia < 0 {
		return false
	}
	return ib < 0 || ia < ib
}
