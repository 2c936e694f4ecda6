package wsclient

import "fmt"

// Handler receives connection events. All callbacks except Init run on
// the connection actor goroutine, one at a time, in mailbox order. The
// state value returned by one callback is the state passed to the next;
// no synchronization is needed as long as callers do not mutate state
// they have handed over.
//
// Embed BaseHandler to implement only the callbacks you care about.
type Handler interface {
	// Init runs after a successful handshake, before any frame is
	// dispatched and before Start returns. It receives the client and
	// the caller's initial state and returns the state the callback
	// sequence starts from. A non-nil error aborts the connection and
	// is returned from Start.
	//
	// Init is not re-run on reconnect.
	Init(c *Client, state any) (any, error)

	// HandleFrame receives each reassembled text or binary frame.
	HandleFrame(frame Frame, state any) Result

	// HandleCast receives messages injected with Cast.
	HandleCast(msg any, state any) Result

	// HandleInfo receives messages injected with Notify and anything
	// else that reaches the mailbox without a more specific route.
	HandleInfo(msg any, state any) Result

	// HandlePing receives ping frames. The default BaseHandler
	// behavior replies with a pong echoing the payload.
	HandlePing(frame Frame, state any) Result

	// HandlePong receives pong frames.
	HandlePong(frame Frame, state any) Result

	// HandleDisconnect runs after a completed close handshake, in
	// either direction, and decides whether the client stops or
	// reconnects. It does not run for error terminations.
	HandleDisconnect(reason CloseReason, state any) DisconnectResult

	// Terminate runs exactly once, on every termination path, with
	// the final reason and state. The connection is already beyond
	// use; sends from Terminate fail with ErrTerminated.
	Terminate(reason CloseReason, state any)
}

type resultKind int

const (
	resultInvalid resultKind = iota
	resultContinue
	resultReply
	resultClose
)

// Result is what frame and message callbacks return to direct the
// actor. Construct it with Continue, Reply, Close or CloseWith; the
// zero Result is invalid and terminates the connection with a
// BadResponseError.
type Result struct {
	kind   resultKind
	state  any
	frame  Frame
	code   CloseCode
	reason string
}

// Continue carries the new state and keeps the connection open.
func Continue(state any) Result {
	return Result{kind: resultContinue, state: state}
}

// Reply sends a frame to the peer and carries the new state.
func Reply(frame Frame, state any) Result {
	return Result{kind: resultReply, frame: frame, state: state}
}

// Close starts a close handshake with no status code.
func Close(state any) Result {
	return Result{kind: resultClose, state: state}
}

// CloseWith starts a close handshake with the given status code and
// reason text.
func CloseWith(code CloseCode, reason string, state any) Result {
	return Result{kind: resultClose, code: code, reason: reason, state: state}
}

// String returns the result kind for diagnostics.
func (r Result) String() string {
	switch r.kind {
	case resultContinue:
		return "continue"
	case resultReply:
		return fmt.Sprintf("reply(%s)", r.frame)
	case resultClose:
		if r.code == 0 {
			return "close"
		}
		return fmt.Sprintf("close(%d: %s)", r.code, r.reason)
	default:
		return "invalid"
	}
}

type disconnectKind int

const (
	disconnectInvalid disconnectKind = iota
	disconnectStop
	disconnectReconnect
)

// DisconnectResult is what HandleDisconnect returns. Construct it with
// Stop or Reconnect; the zero value is invalid and terminates the
// connection with a BadResponseError.
type DisconnectResult struct {
	kind  disconnectKind
	state any
}

// Stop terminates the client, carrying the final state to Terminate.
func Stop(state any) DisconnectResult {
	return DisconnectResult{kind: disconnectStop, state: state}
}

// Reconnect establishes a fresh connection to the original URL with
// the original options and resumes dispatching with the given state.
// Init is not re-run. If the reconnect attempt fails the client
// terminates with the connect error; retry policy belongs to the
// caller.
func Reconnect(state any) DisconnectResult {
	return DisconnectResult{kind: disconnectReconnect, state: state}
}

// String returns the result kind for diagnostics.
func (r DisconnectResult) String() string {
	switch r.kind {
	case disconnectStop:
		return "stop"
	case disconnectReconnect:
		return "reconnect"
	default:
		return "invalid"
	}
}

// BaseHandler is a Handler with default behavior for every callback:
// pings are answered with pongs, unknown messages are ignored, a close
// handshake stops the client. Embed it and override what you need.
//
// HandleFrame and HandleCast have no sensible default: the embedded
// versions return the invalid zero Result, so a handler that expects
// frames or casts must override them.
type BaseHandler struct{}

// Init returns the caller's initial state unchanged.
func (BaseHandler) Init(_ *Client, state any) (any, error) { return state, nil }

// HandleFrame returns the invalid zero Result. Override it to receive
// data frames.
func (BaseHandler) HandleFrame(Frame, any) Result { return Result{} }

// HandleCast returns the invalid zero Result. Override it to receive
// cast messages.
func (BaseHandler) HandleCast(any, any) Result { return Result{} }

// HandleInfo ignores the message.
func (BaseHandler) HandleInfo(_ any, state any) Result { return Continue(state) }

// HandlePing replies with a pong echoing the ping payload.
func (BaseHandler) HandlePing(frame Frame, state any) Result {
	return Reply(NewPongFrame(frame.Payload), state)
}

// HandlePong ignores the pong.
func (BaseHandler) HandlePong(_ Frame, state any) Result { return Continue(state) }

// HandleDisconnect stops the client.
func (BaseHandler) HandleDisconnect(_ CloseReason, state any) DisconnectResult {
	return Stop(state)
}

// Terminate does nothing.
func (BaseHandler) Terminate(CloseReason, any) {}
