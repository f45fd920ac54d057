package service

import "fmt"

// Kind is one taxonomy of failure shared by every wayle service (§7).
// Services wrap Kind in the shared Error type below rather than
// returning it bare; its Service field tells "an audio error" from "a
// notification error", while errors.Is can still match on the Kind
// alone across services.
type Kind int

const (
	// KindBusTransport means the underlying transport (D-Bus, the
	// PulseAudio socket) failed to connect, send, or decode.
	KindBusTransport Kind = iota
	// KindObjectNotFound means the expected remote object is absent.
	KindObjectNotFound
	// KindWrongObjectType means a defensive downcast failed, e.g.
	// treating a wifi-less device as a wifi device.
	KindWrongObjectType
	// KindOperationFailed means a remote mutation call returned an
	// error.
	KindOperationFailed
	// KindTimeout means a timed operation exceeded its bound.
	KindTimeout
	// KindCircularImport is config-loader specific: an import chain
	// revisited a file already in the chain.
	KindCircularImport
	// KindConfigDeserialization is config-loader specific: TOML parsing
	// or struct population failed.
	KindConfigDeserialization
	// KindInvalidConfigField is config-loader specific: a field value
	// failed validation.
	KindInvalidConfigField
	// KindServiceInitialization is fatal-during-bring-up only; it never
	// appears from a running monitoring loop.
	KindServiceInitialization
	// KindWatcherRegistration is tray-specific: a forced role election
	// failed.
	KindWatcherRegistration
)

func (k Kind) String() string {
	switch k {
	case KindBusTransport:
		return "bus_transport"
	case KindObjectNotFound:
		return "object_not_found"
	case KindWrongObjectType:
		return "wrong_object_type"
	case KindOperationFailed:
		return "operation_failed"
	case KindTimeout:
		return "timeout"
	case KindCircularImport:
		return "circular_import"
	case KindConfigDeserialization:
		return "config_deserialization"
	case KindInvalidConfigField:
		return "invalid_config_field"
	case KindServiceInitialization:
		return "service_initialization"
	case KindWatcherRegistration:
		return "watcher_registration"
	default:
		return "unknown"
	}
}

// Error is the concrete error type every service returns. Service is the
// package that produced it ("audio", "notification", "systray",
// "config"); Op names the operation that failed (e.g. "set_volume",
// "Notify", "RegisterStatusNotifierHost"); Err is the wrapped cause, if
// any.
//
// Following the teacher's BackendUnavailableError / NoWidgetsError
// pattern, Error implements both error and Unwrap so callers can branch
// with errors.As on *Error or match Kind with errors.Is against a
// sentinel built from New("", kind, "", nil).
type Error struct {
	Service string
	Kind    Kind
	Op      string
	Err     error
}

// New constructs an Error. Err may be nil when the kind itself is the
// whole story (e.g. KindObjectNotFound with no deeper cause).
func New(service string, kind Kind, op string, err error) *Error {
	return &Error{Service: service, Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Service, e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Service, e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, service.New(svc, kind, "", nil)) match any
// *Error sharing the same Service and Kind, regardless of Op or wrapped
// cause — the common case of "is this a timeout from the audio
// service?".
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	if other.Service != "" && other.Service != e.Service {
		return false
	}
	return other.Kind == e.Kind
}
