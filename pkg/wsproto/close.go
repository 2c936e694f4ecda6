package wsproto

import (
	"encoding/binary"
	"unicode/utf8"
)

// EncodeClosePayload builds a close frame payload from a status code and
// reason. A zero code with an empty reason produces an empty payload, which
// the protocol reads as "no status". The code must be in a sendable range and
// the reason must be valid UTF-8 short enough to fit a control frame.
func EncodeClosePayload(code CloseCode, reason string) ([]byte, error) {
	if code == 0 {
		if reason != "" {
			return nil, ErrInvalidCloseReason
		}
		return nil, nil
	}
	if !code.Valid() {
		return nil, ErrInvalidCloseCode
	}
	if !utf8.ValidString(reason) {
		return nil, ErrInvalidCloseReason
	}
	if 2+len(reason) > MaxControlPayload {
		return nil, ErrInvalidCloseReason
	}

	payload := make([]byte, 2+len(reason))
	binary.BigEndian.PutUint16(payload, uint16(code))
	copy(payload[2:], reason)
	return payload, nil
}

// ParseClosePayload extracts the status code and reason from a received close
// frame payload. An empty payload yields CloseNoStatusReceived. A single-byte
// payload, a code outside the sendable ranges, or a reason that is not valid
// UTF-8 are protocol errors.
func ParseClosePayload(payload []byte) (CloseCode, string, error) {
	if len(payload) == 0 {
		return CloseNoStatusReceived, "", nil
	}
	if len(payload) == 1 {
		return 0, "", ErrInvalidClosePayload
	}

	code := CloseCode(binary.BigEndian.Uint16(payload))
	if !code.Valid() {
		return 0, "", ErrInvalidCloseCode
	}
	reason := payload[2:]
	if !utf8.Valid(reason) {
		return 0, "", ErrInvalidCloseReason
	}
	return code, string(reason), nil
}
