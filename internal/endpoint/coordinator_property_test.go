package endpoint

import (
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Whatever mix of concurrent connects runs, the registration is queued once
// and every enable happens after the queue is drained.
func TestCoordinator_RegistrationPrecedesEnable(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("enqueue precedes every enable", prop.ForAll(
		func(resets []bool) bool {
			if len(resets) == 0 {
				return true
			}

			log := &callLog{}
			m := newFakeManager(log)
			c := newCoordinator(t, log, m, true)

			var wg sync.WaitGroup
			for _, reset := range resets {
				wg.Add(1)
				go func(reset bool) {
					defer wg.Done()
					_ = c.Connect(reset)
				}(reset)
			}
			wg.Wait()

			calls := log.all()
			if count(calls, "enable") != len(resets) {
				return false
			}

			anyReset := false
			for _, r := range resets {
				anyReset = anyReset || r
			}
			registrations := count(calls, "register client::product::serial")
			if !anyReset {
				return registrations == 0
			}
			if registrations != 1 {
				return false
			}

			// Enables issued by no-reset connects that won the lock before
			// the reset may precede registration; once registration is in
			// the log the enqueue must come before the next enable.
			registered := -1
			for i, call := range calls {
				if call == "register client::product::serial" {
					registered = i
				}
			}
			return registered >= 0 && registered+3 < len(calls) &&
				calls[registered+1] == "waitForEnqueue" &&
				calls[registered+2] == "setAssigner" &&
				calls[registered+3] == "enable"
		},
		gen.SliceOfN(8, gen.Bool()),
	))

	properties.TestingRun(t)
}
