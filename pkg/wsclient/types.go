package wsclient

import (
	"fmt"
	"time"

	"github.com/wirecat/wirecat/pkg/wsproto"
)

// FrameType identifies the kind of a reassembled frame exchanged with
// handlers. Fragmentation is invisible at this level: a fragmented text
// message arrives as one FrameText frame.
type FrameType int

// Frame types.
const (
	FrameText FrameType = iota + 1
	FrameBinary
	FramePing
	FramePong
	FrameClose
)

// String returns the lowercase name of the frame type.
func (t FrameType) String() string {
	switch t {
	case FrameText:
		return "text"
	case FrameBinary:
		return "binary"
	case FramePing:
		return "ping"
	case FramePong:
		return "pong"
	case FrameClose:
		return "close"
	default:
		return fmt.Sprintf("frametype(%d)", int(t))
	}
}

// IsControl reports whether the frame type is a control type.
func (t FrameType) IsControl() bool {
	return t == FramePing || t == FramePong || t == FrameClose
}

// CloseCode is a WebSocket close status code.
type CloseCode = wsproto.CloseCode

// Close codes defined by RFC 6455, re-exported so callers rarely need
// to import wsproto directly.
const (
	CloseNormalClosure       = wsproto.CloseNormalClosure
	CloseGoingAway           = wsproto.CloseGoingAway
	CloseProtocolError       = wsproto.CloseProtocolError
	CloseUnsupportedData     = wsproto.CloseUnsupportedData
	CloseNoStatusReceived    = wsproto.CloseNoStatusReceived
	CloseAbnormalClosure     = wsproto.CloseAbnormalClosure
	CloseInvalidPayload      = wsproto.CloseInvalidPayload
	ClosePolicyViolation     = wsproto.ClosePolicyViolation
	CloseMessageTooBig       = wsproto.CloseMessageTooBig
	CloseMandatoryExtension  = wsproto.CloseMandatoryExtension
	CloseInternalError       = wsproto.CloseInternalError
	CloseServiceRestart      = wsproto.CloseServiceRestart
	CloseTryAgainLater       = wsproto.CloseTryAgainLater
	CloseTLSHandshake        = wsproto.CloseTLSHandshake
)

// Frame is a single WebSocket message as handlers see it.
type Frame struct {
	// Type is the frame type.
	Type FrameType

	// Payload is the frame payload. For close frames it holds the
	// close reason text, if any.
	Payload []byte

	// Code is the close status code. Only meaningful for FrameClose;
	// zero means the frame carries no status code.
	Code CloseCode
}

// NewTextFrame returns a text frame with the given payload.
func NewTextFrame(text string) Frame {
	return Frame{Type: FrameText, Payload: []byte(text)}
}

// NewBinaryFrame returns a binary frame with the given payload.
func NewBinaryFrame(payload []byte) Frame {
	return Frame{Type: FrameBinary, Payload: payload}
}

// NewPingFrame returns a ping frame. The payload must not exceed 125
// bytes on the wire.
func NewPingFrame(payload []byte) Frame {
	return Frame{Type: FramePing, Payload: payload}
}

// NewPongFrame returns a pong frame.
func NewPongFrame(payload []byte) Frame {
	return Frame{Type: FramePong, Payload: payload}
}

// NewCloseFrame returns a close frame with the given status code and
// reason text. A zero code produces a close frame with no payload.
func NewCloseFrame(code CloseCode, reason string) Frame {
	return Frame{Type: FrameClose, Payload: []byte(reason), Code: code}
}

// Text returns the payload as a string.
func (f Frame) Text() string {
	return string(f.Payload)
}

// String returns a short human-readable description of the frame.
func (f Frame) String() string {
	if f.Type == FrameClose {
		if f.Code == 0 {
			return "close"
		}
		if len(f.Payload) == 0 {
			return fmt.Sprintf("close(%d)", f.Code)
		}
		return fmt.Sprintf("close(%d: %s)", f.Code, f.Payload)
	}
	return fmt.Sprintf("%s(%d bytes)", f.Type, len(f.Payload))
}

// Origin identifies which side of the connection initiated a close.
type Origin int

// Close origins.
const (
	OriginLocal Origin = iota
	OriginRemote
)

// String returns "local" or "remote".
func (o Origin) String() string {
	if o == OriginRemote {
		return "remote"
	}
	return "local"
}

// CloseReason describes why a connection ended. It is passed to
// HandleDisconnect after a completed close handshake, and to Terminate
// on every termination.
type CloseReason struct {
	// Origin is the side that initiated the close. Meaningless when
	// Err is set.
	Origin Origin `json:"origin"`

	// Code is the close status code. Zero means the close frame
	// carried no code.
	Code CloseCode `json:"code"`

	// Reason is the close reason text, if any.
	Reason string `json:"reason,omitempty"`

	// Err is set when the connection terminated on an error rather
	// than a completed close handshake.
	Err error `json:"-"`
}

// Clean reports whether the connection ended cleanly: a completed close
// handshake with no status code or with CloseNormalClosure.
func (r CloseReason) Clean() bool {
	return r.Err == nil && (r.Code == 0 || r.Code == CloseNormalClosure)
}

// String returns a short human-readable description of the reason.
func (r CloseReason) String() string {
	if r.Err != nil {
		return "error: " + r.Err.Error()
	}
	if r.Code == 0 {
		return r.Origin.String() + " close"
	}
	s := fmt.Sprintf("%s close (code %d", r.Origin, r.Code)
	if r.Reason != "" {
		s += ": " + r.Reason
	}
	return s + ")"
}

// ConnInfo is a point-in-time description of an established connection.
type ConnInfo struct {
	// ID is the connection identifier assigned at Start.
	ID string `json:"id"`

	// URL is the URL the client connected to.
	URL string `json:"url"`

	// Subprotocol is the subprotocol the server selected during the
	// handshake, or empty if none was negotiated.
	Subprotocol string `json:"subprotocol,omitempty"`

	// LocalAddr is the local address of the underlying connection.
	LocalAddr string `json:"localAddr,omitempty"`

	// ConnectedAt is when the current connection was established. It
	// is updated on reconnect.
	ConnectedAt time.Time `json:"connectedAt"`
}

// Stats holds counters for a connection. Counters accumulate across
// reconnects.
type Stats struct {
	// FramesIn is the number of frames received, including control
	// frames and individual fragments.
	FramesIn int64 `json:"framesIn"`

	// FramesOut is the number of frames sent.
	FramesOut int64 `json:"framesOut"`

	// BytesIn is the number of payload stream bytes received.
	BytesIn int64 `json:"bytesIn"`

	// BytesOut is the number of frame bytes sent.
	BytesOut int64 `json:"bytesOut"`

	// Reconnects is the number of successful reconnects.
	Reconnects int `json:"reconnects"`

	// ConnectedAt is when the current connection was established.
	ConnectedAt time.Time `json:"connectedAt"`
}

// Uptime returns how long the current connection has been established.
func (s Stats) Uptime() time.Duration {
	if s.ConnectedAt.IsZero() {
		return 0
	}
	return time.Since(s.ConnectedAt)
}
