package wsproto

// Opcode identifies a WebSocket frame type per RFC 6455 section 5.2.
type Opcode byte

// Frame opcodes.
const (
	// OpContinuation indicates a continuation of a fragmented message.
	OpContinuation Opcode = 0x0
	// OpText indicates a UTF-8 text data frame.
	OpText Opcode = 0x1
	// OpBinary indicates a binary data frame.
	OpBinary Opcode = 0x2
	// OpClose indicates a close control frame.
	OpClose Opcode = 0x8
	// OpPing indicates a ping control frame.
	OpPing Opcode = 0x9
	// OpPong indicates a pong control frame.
	OpPong Opcode = 0xA
)

// IsControl reports whether the opcode is a control frame opcode.
func (o Opcode) IsControl() bool {
	return o >= 0x8
}

// IsData reports whether the opcode is a data frame opcode, including
// continuation.
func (o Opcode) IsData() bool {
	return o == OpContinuation || o == OpText || o == OpBinary
}

// IsReserved reports whether the opcode is reserved by RFC 6455.
func (o Opcode) IsReserved() bool {
	return (o > OpBinary && o < OpClose) || o > OpPong
}

// String returns the lowercase name of the opcode.
func (o Opcode) String() string {
	switch o {
	case OpContinuation:
		return "continuation"
	case OpText:
		return "text"
	case OpBinary:
		return "binary"
	case OpClose:
		return "close"
	case OpPing:
		return "ping"
	case OpPong:
		return "pong"
	default:
		return "reserved"
	}
}

// Frame is a single decoded WebSocket wire frame. The payload has already
// been unmasked.
type Frame struct {
	Fin     bool
	Opcode  Opcode
	Payload []byte
}

// CloseCode represents a WebSocket close status code per RFC 6455.
type CloseCode int

const (
	// CloseNormalClosure indicates a normal closure (1000).
	CloseNormalClosure CloseCode = 1000
	// CloseGoingAway indicates the endpoint is going away (1001).
	CloseGoingAway CloseCode = 1001
	// CloseProtocolError indicates a protocol error (1002).
	CloseProtocolError CloseCode = 1002
	// CloseUnsupportedData indicates unsupported data type (1003).
	CloseUnsupportedData CloseCode = 1003
	// CloseNoStatusReceived indicates no status code was received (1005).
	CloseNoStatusReceived CloseCode = 1005
	// CloseAbnormalClosure indicates abnormal closure (1006).
	CloseAbnormalClosure CloseCode = 1006
	// CloseInvalidPayload indicates invalid UTF-8 in a text message (1007).
	CloseInvalidPayload CloseCode = 1007
	// ClosePolicyViolation indicates a policy violation (1008).
	ClosePolicyViolation CloseCode = 1008
	// CloseMessageTooBig indicates the message is too large (1009).
	CloseMessageTooBig CloseCode = 1009
	// CloseMandatoryExtension indicates a missing mandatory extension (1010).
	CloseMandatoryExtension CloseCode = 1010
	// CloseInternalError indicates an internal server error (1011).
	CloseInternalError CloseCode = 1011
	// CloseServiceRestart indicates a service restart (1012).
	CloseServiceRestart CloseCode = 1012
	// CloseTryAgainLater indicates the client should try again later (1013).
	CloseTryAgainLater CloseCode = 1013
	// CloseTLSHandshake indicates a TLS handshake failure (1015).
	CloseTLSHandshake CloseCode = 1015
)

// Valid reports whether the code may appear on the wire in a close frame.
// Codes 1005, 1006 and 1015 are reserved for local reporting only.
func (c CloseCode) Valid() bool {
	return (c >= 1000 && c <= 1003) ||
		(c >= 1007 && c <= 1011) ||
		(c >= 3000 && c <= 4999)
}

// String returns a human-readable description of the close code.
func (c CloseCode) String() string {
	switch c {
	case CloseNormalClosure:
		return "normal closure"
	case CloseGoingAway:
		return "going away"
	case CloseProtocolError:
		return "protocol error"
	case CloseUnsupportedData:
		return "unsupported data"
	case CloseNoStatusReceived:
		return "no status received"
	case CloseAbnormalClosure:
		return "abnormal closure"
	case CloseInvalidPayload:
		return "invalid payload"
	case ClosePolicyViolation:
		return "policy violation"
	case CloseMessageTooBig:
		return "message too big"
	case CloseMandatoryExtension:
		return "mandatory extension"
	case CloseInternalError:
		return "internal error"
	case CloseServiceRestart:
		return "service restart"
	case CloseTryAgainLater:
		return "try again later"
	case CloseTLSHandshake:
		return "TLS handshake"
	default:
		return "unknown"
	}
}
