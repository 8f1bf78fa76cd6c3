package capability

import "github.com/jmylchreest/smartscreen/internal/connection"

// AuthDelegate supplies access tokens for the service connection.
type AuthDelegate interface {
	AuthToken() (string, error)
}

// Transport is one connection to the service gateway.
type Transport interface {
	Connect() error
	Disconnect()
	Send(msg connection.Message) error
}

// TransportFactory creates transports for a gateway.
type TransportFactory interface {
	CreateTransport(gateway string, auth AuthDelegate) (Transport, error)
}

// ContextManager aggregates component state sent with events.
type ContextManager interface {
	SetState(namespace, name, state string)
}

// CapabilitiesState is the result of publishing capabilities.
type CapabilitiesState uint8

const (
	CapabilitiesUninitialized CapabilitiesState = iota
	CapabilitiesSuccess
	CapabilitiesFatalError
	CapabilitiesRetriableError
)

// String returns a human-readable state name.
func (s CapabilitiesState) String() string {
	switch s {
	case CapabilitiesUninitialized:
		return "UNINITIALIZED"
	case CapabilitiesSuccess:
		return "SUCCESS"
	case CapabilitiesFatalError:
		return "FATAL_ERROR"
	case CapabilitiesRetriableError:
		return "RETRIABLE_ERROR"
	default:
		return "UNKNOWN"
	}
}

// CapabilitiesObserver is told the outcome of capability publishing.
type CapabilitiesObserver interface {
	OnCapabilitiesStateChange(state CapabilitiesState, reason string, added, deleted []string)
}

// CapabilitiesDelegate publishes endpoint capabilities.
type CapabilitiesDelegate interface {
	Subject[CapabilitiesObserver]
	connection.StatusObserver
}

// CustomerDataManager erases customer data on logout.
type CustomerDataManager interface {
	ClearData()
}

// InternetMonitor reports local network reachability.
type InternetMonitor interface {
	Subject[connection.InternetConnectionObserver]
}

// LocaleAssetsManager knows the supported locales and wake words.
type LocaleAssetsManager interface {
	DefaultLocale() string
	SupportedLocales() []string
}

// VisualStateProvider supplies the visual context on request.
type VisualStateProvider interface {
	ProvideState(requestID uint32)
}

// Store is a namespaced key/value store.
type Store interface {
	Open() error
	Close() error
	Put(namespace, key, value string) error
	Get(namespace, key string) (string, bool, error)
	Delete(namespace, key string) error
	Clear(namespace string) error
}
