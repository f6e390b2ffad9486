package normalize

import (
	"errors"
	"fmt"

	"github.com/adamwoolhether/pacer/decode"
)

var (
	// ErrUnexpectedStatusCode is wrapped by errors of kind [KindHTTPStatus].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrAuthFailure is joined with [ErrUnexpectedStatusCode] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
	// ErrUnexpectedContentType is wrapped by errors of kind [KindContentType].
	ErrUnexpectedContentType = errors.New("unexpected content type")
	// ErrBodyTooLarge is wrapped by errors of kind [KindBodyTooLarge].
	ErrBodyTooLarge = errors.New("response body too large")
	// ErrDecode is wrapped by errors of kind [KindDecode].
	ErrDecode = decode.ErrInvalidJSON
	// ErrCancelled marks cooperative cancellation. Anything wrapping it is
	// reported by [IsExplicitlyCancelled].
	ErrCancelled = errors.New("operation cancelled")
)

// Kind classifies a normalized failure.
type Kind int

const (
	KindTransport Kind = iota
	KindHTTPStatus
	KindContentType
	KindDecode
	KindCancelled
	KindBodyTooLarge
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTPStatus:
		return "http status"
	case KindContentType:
		return "content type"
	case KindDecode:
		return "decode"
	case KindCancelled:
		return "cancelled"
	case KindBodyTooLarge:
		return "body too large"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the uniform failure shape handed to callers. StatusCode, Body
// and Raw are set only when an HTTP response was received. Body holds the
// response parsed as JSON, or nil when it did not parse.
type Error struct {
	Kind       Kind
	StatusCode int
	Body       any
	Raw        []byte
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Err != nil {
		msg = e.Err.Error()
	}

	if e.StatusCode == 0 {
		return msg
	}

	return fmt.Sprintf("%s: %d, body: %s", msg, e.StatusCode, e.Raw)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind of err. Errors that were not normalized are
// transport failures passed through untouched.
func KindOf(err error) Kind {
	var ne *Error
	if errors.As(err, &ne) {
		return ne.Kind
	}

	return KindTransport
}

// StatusCode returns the HTTP status attached to err, or zero.
func StatusCode(err error) int {
	var ne *Error
	if errors.As(err, &ne) {
		return ne.StatusCode
	}

	return 0
}
