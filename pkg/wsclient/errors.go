package wsclient

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by client operations.
var (
	// ErrTerminated is returned by operations on a client whose actor
	// has already terminated.
	ErrTerminated = errors.New("client terminated")

	// ErrSocketClosed is returned by a transport send on a socket that
	// is already closed. During a remote close handshake this is
	// benign: the peer may drop the connection before our echo lands.
	ErrSocketClosed = errors.New("socket already closed")
)

// URLError reports a connection URL that failed validation before any
// network activity took place.
type URLError struct {
	URL    string
	Reason string
}

func (e *URLError) Error() string {
	return fmt.Sprintf("invalid websocket url %q: %s", e.URL, e.Reason)
}

// HandshakeError reports an HTTP upgrade handshake rejected by the
// server or failing verification.
type HandshakeError struct {
	URL        string
	StatusCode int
	Reason     string
}

func (e *HandshakeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("websocket handshake with %s failed: %s (status %d)", e.URL, e.Reason, e.StatusCode)
	}
	return fmt.Sprintf("websocket handshake with %s failed: %s", e.URL, e.Reason)
}

// ConnError reports a transport-level failure: dialing, sending,
// reading or waiting for socket closure.
type ConnError struct {
	Op  string
	Err error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("connection %s: %v", e.Op, e.Err)
}

func (e *ConnError) Unwrap() error { return e.Err }

// FrameEncodeError reports a frame that cannot be encoded for the
// wire, such as an oversized ping payload or an unsendable close code.
type FrameEncodeError struct {
	Type   FrameType
	Reason string
}

func (e *FrameEncodeError) Error() string {
	return fmt.Sprintf("cannot encode %s frame: %s", e.Type, e.Reason)
}

// BadResponseError reports a handler callback that panicked or
// returned a result the dispatcher cannot interpret, such as a zero
// Result.
type BadResponseError struct {
	// Handler is the handler's type name.
	Handler string

	// Callback is the name of the offending callback.
	Callback string

	// Input is the message or frame the callback was invoked with,
	// when there was one.
	Input any

	// Value is the offending return value.
	Value any

	// Panic is the recovered panic value, if the callback panicked.
	Panic any
}

func (e *BadResponseError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("handler %s: %s panicked: %v", e.Handler, e.Callback, e.Panic)
	}
	return fmt.Sprintf("handler %s: %s returned invalid result %v", e.Handler, e.Callback, e.Value)
}

// CloseError reports a completed close handshake that did not end with
// a normal status code. It is what Err returns for such terminations.
type CloseError struct {
	Reason CloseReason
}

func (e *CloseError) Error() string {
	return "connection closed: " + e.Reason.String()
}
