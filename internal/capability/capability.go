// Package capability declares the contracts between the client and the
// capability components it assembles. Implementations live outside the
// client; the client only wires them together.
package capability

import "github.com/jmylchreest/smartscreen/internal/endpoint"

// Shutdowner is anything the client has to shut down on teardown.
type Shutdowner interface {
	Shutdown()
}

// DirectiveHandler handles directives for one or more namespaces.
type DirectiveHandler interface {
	Shutdowner
	Namespaces() []string
}

// Agent is a capability that handles directives and advertises interface
// configurations on the default endpoint.
type Agent interface {
	DirectiveHandler
	endpoint.ConfigurationProvider
}

// Subject is a component other components can observe.
type Subject[O any] interface {
	AddObserver(o O)
	RemoveObserver(o O)
}

// DirectiveSequencer dispatches inbound directives to registered handlers.
type DirectiveSequencer interface {
	Shutdowner
	AddDirectiveHandler(h DirectiveHandler) bool
	RemoveDirectiveHandler(h DirectiveHandler) bool
	OnMessageReceived(contextID, message string)
}

// ActivityTracker reports channel activity as context.
type ActivityTracker interface {
	Shutdowner
	endpoint.ConfigurationProvider
}
