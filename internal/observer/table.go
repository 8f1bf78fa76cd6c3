package observer

import "sync"

// Edge is one (subject, observer) registration.
type Edge struct {
	Subject  string
	Observer string
	Attached bool

	attach func()
	detach func()
}

// Table records every observer registration between named components so
// that wiring happens in one place and teardown can undo it in order.
type Table struct {
	mu      sync.Mutex
	edges   []*Edge
	applied bool
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// Add records an edge. attach registers the observer with the subject and
// detach undoes it. Edges added after Apply are attached immediately.
func (t *Table) Add(subject, observer string, attach, detach func()) {
	t.mu.Lock()
	e := &Edge{Subject: subject, Observer: observer, attach: attach, detach: detach}
	t.edges = append(t.edges, e)
	applied := t.applied
	t.mu.Unlock()

	if applied {
		t.attachEdge(e)
	}
}

// Apply attaches all recorded edges in insertion order. Only the first call
// has an effect.
func (t *Table) Apply() {
	t.mu.Lock()
	if t.applied {
		t.mu.Unlock()
		return
	}
	t.applied = true
	edges := make([]*Edge, len(t.edges))
	copy(edges, t.edges)
	t.mu.Unlock()

	for _, e := range edges {
		t.attachEdge(e)
	}
}

func (t *Table) attachEdge(e *Edge) {
	t.mu.Lock()
	if e.Attached {
		t.mu.Unlock()
		return
	}
	e.Attached = true
	t.mu.Unlock()

	if e.attach != nil {
		e.attach()
	}
}

// DetachTouching detaches every attached edge whose subject or observer is
// name, in reverse insertion order. It returns how many edges it detached.
func (t *Table) DetachTouching(name string) int {
	t.mu.Lock()
	var pending []*Edge
	for i := len(t.edges) - 1; i >= 0; i-- {
		e := t.edges[i]
		if e.Attached && (e.Subject == name || e.Observer == name) {
			e.Attached = false
			pending = append(pending, e)
		}
	}
	t.mu.Unlock()

	for _, e := range pending {
		if e.detach != nil {
			e.detach()
		}
	}
	return len(pending)
}

// Edges returns a snapshot of the table.
func (t *Table) Edges() []Edge {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Edge, 0, len(t.edges))
	for _, e := range t.edges {
		out = append(out, Edge{Subject: e.Subject, Observer: e.Observer, Attached: e.Attached})
	}
	return out
}
