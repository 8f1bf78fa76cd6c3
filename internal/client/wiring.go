package client

import (
	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/observer"
)

// link records that o observes s.
func link[O any](w *observer.Table, subjectName string, s capability.Subject[O], observerName string, o O) {
	w.Add(subjectName, observerName,
		func() { s.AddObserver(o) },
		func() { s.RemoveObserver(o) },
	)
}
