package exchange

import "fmt"

// Kind classifies a client error. Every failure leaving this package is
// normalized into exactly one kind; higher layers rely on that.
type Kind int

const (
	// KindTransport the request never produced a server response.
	KindTransport Kind = iota
	// KindServer a non-200 status or an empty body.
	KindServer
	// KindDecode the body could not be decoded into the expected shape.
	KindDecode
	// KindDomain the server explicitly reported failure.
	KindDomain
	// KindUnknown anything else unexpected.
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	case KindDomain:
		return "domain"
	default:
		return "unknown"
	}
}

// Error a failure of one client operation.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s: %s error: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError returns err as *Error if it is one.
func AsError(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}
