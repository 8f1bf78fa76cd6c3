// Package future provides a one-shot result holder that can be polled
// without blocking or waited on with a deadline.
package future

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeout is returned by Wait when the context ends before a value is set.
var ErrTimeout = errors.New("future not resolved before deadline")

// Future is a value that becomes available once.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
}

// New returns an unresolved future and the function that resolves it.
// Only the first call to resolve has an effect.
func New[T any]() (*Future[T], func(T)) {
	f := &Future[T]{done: make(chan struct{})}
	return f, f.resolve
}

// Resolved returns a future that already holds v.
func Resolved[T any](v T) *Future[T] {
	f, resolve := New[T]()
	resolve(v)
	return f
}

func (f *Future[T]) resolve(v T) {
	f.once.Do(func() {
		f.value = v
		close(f.done)
	})
}

// Done is closed once the value is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Ready reports whether the value is available.
func (f *Future[T]) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Get blocks until the value is available.
func (f *Future[T]) Get() T {
	<-f.done
	return f.value
}

// Wait blocks until the value is available or ctx ends.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, nil
	case <-ctx.Done():
		var zero T
		return zero, errors.Join(ErrTimeout, ctx.Err())
	}
}

// WaitFor waits at most d for the value. A zero or negative d polls
// without blocking.
func (f *Future[T]) WaitFor(d time.Duration) (T, bool) {
	if d <= 0 {
		if f.Ready() {
			return f.value, true
		}
		var zero T
		return zero, false
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-f.done:
		return f.value, true
	case <-timer.C:
		var zero T
		return zero, false
	}
}
