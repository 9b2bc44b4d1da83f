// Package errs provides structured error types and helpers for the orientwire client.
package errs

import (
	"errors"
	"strconv"
	"strings"
)

// Code identifies a client error category.
type Code string

const (
	// CodeConnection indicates a socket-level failure: refused connect,
	// mid-stream disconnect, short handshake read, or a readiness-wait error.
	// Always terminal for the current connection.
	CodeConnection Code = "connection"
	// CodeProtocolVersion indicates the server negotiated a protocol version
	// outside the range this client understands. Terminal; no fallback.
	CodeProtocolVersion Code = "protocol_version"
	// CodeUnknownOperation indicates a facade operation with no registered
	// message mapping. Terminal for the call; the connection stays usable.
	CodeUnknownOperation Code = "unknown_operation"
	// CodeServer carries a server-side exception payload decoded from an
	// error response frame.
	CodeServer Code = "server"
	// CodeProtocol indicates a malformed or unexpected frame on an otherwise
	// healthy connection.
	CodeProtocol Code = "protocol"
	// CodeInvalid indicates invalid input provided by the caller.
	CodeInvalid Code = "invalid_request"
)

// RemoteException is one element of the exception chain a server error
// response carries.
type RemoteException struct {
	Class   string
	Message string
}

// E captures structured error information produced across the client stack.
type E struct {
	Op      string
	Code    Code
	Message string
	Version int
	Remote  []RemoteException

	cause error
}

// Option configures an error envelope.
type Option func(*E)

// New constructs an error envelope for the operation and error code.
func New(op string, code Code, opts ...Option) *E {
	e := &E{
		Op:      strings.TrimSpace(op),
		Code:    code,
		Message: "",
		Version: -1,
		Remote:  nil,
		cause:   nil,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithMessage attaches a human-readable message to the error.
func WithMessage(message string) Option {
	trimmed := strings.TrimSpace(message)
	return func(e *E) {
		e.Message = trimmed
	}
}

// WithCause sets the underlying cause error.
func WithCause(err error) Option {
	return func(e *E) {
		e.cause = err
	}
}

// WithVersion records the protocol version involved in the failure.
func WithVersion(version int) Option {
	return func(e *E) {
		e.Version = version
	}
}

// WithRemote appends one server-side exception to the remote chain.
func WithRemote(class, message string) Option {
	return func(e *E) {
		e.Remote = append(e.Remote, RemoteException{
			Class:   strings.TrimSpace(class),
			Message: message,
		})
	}
}

func (e *E) Error() string {
	if e == nil {
		return "<nil>"
	}
	var parts []string

	op := strings.TrimSpace(e.Op)
	if op == "" {
		op = "unknown"
	}
	parts = append(parts, "op="+op)

	code := strings.TrimSpace(string(e.Code))
	if code == "" {
		code = "unknown"
	}
	parts = append(parts, "code="+code)

	if e.Version >= 0 {
		parts = append(parts, "version="+strconv.Itoa(e.Version))
	}
	if e.Message != "" {
		parts = append(parts, "message="+strconv.Quote(e.Message))
	}
	for _, remote := range e.Remote {
		parts = append(parts, "remote="+strconv.Quote(remote.Class+": "+remote.Message))
	}
	if e.cause != nil {
		parts = append(parts, "cause="+strconv.Quote(e.cause.Error()))
	}

	return strings.Join(parts, " ")
}

func (e *E) Unwrap() error { return e.cause }

// CodeOf extracts the client error code from err, unwrapping as needed.
// Errors that never passed through an envelope report an empty Code.
func CodeOf(err error) Code {
	var e *E
	if errors.As(err, &e) && e != nil {
		return e.Code
	}
	return ""
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// IsConnection reports whether err is a connection-level failure.
func IsConnection(err error) bool { return HasCode(err, CodeConnection) }

// IsProtocolVersion reports whether err is a protocol-version mismatch.
func IsProtocolVersion(err error) bool { return HasCode(err, CodeProtocolVersion) }

// IsUnknownOperation reports whether err names an unregistered operation.
func IsUnknownOperation(err error) bool { return HasCode(err, CodeUnknownOperation) }

// IsServer reports whether err carries a server-side exception payload.
func IsServer(err error) bool { return HasCode(err, CodeServer) }
