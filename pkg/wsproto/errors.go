package wsproto

import "errors"

// Protocol violations reported by the codec. Each one means the peer broke
// RFC 6455 framing rules and the connection must be failed.
var (
	// ErrReservedBits indicates a frame with RSV1-3 set without a negotiated
	// extension.
	ErrReservedBits = errors.New("reserved bits set without extension")
	// ErrReservedOpcode indicates a frame carrying a reserved opcode.
	ErrReservedOpcode = errors.New("reserved opcode")
	// ErrFragmentedControl indicates a control frame with FIN clear.
	ErrFragmentedControl = errors.New("fragmented control frame")
	// ErrControlTooLong indicates a control frame payload above 125 bytes.
	ErrControlTooLong = errors.New("control frame payload exceeds 125 bytes")
	// ErrFrameTooLarge indicates a frame payload above MaxFramePayload.
	ErrFrameTooLarge = errors.New("frame payload exceeds maximum allowed size")
	// ErrInvalidClosePayload indicates a close payload of exactly one byte.
	ErrInvalidClosePayload = errors.New("close payload too short for a status code")
	// ErrInvalidCloseCode indicates a close code outside the sendable ranges.
	ErrInvalidCloseCode = errors.New("invalid close code")
	// ErrInvalidCloseReason indicates a close reason that is not valid UTF-8
	// or does not fit a control frame.
	ErrInvalidCloseReason = errors.New("invalid close reason")
)
