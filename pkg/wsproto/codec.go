package wsproto

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

const (
	// MaxControlPayload is the largest payload a control frame may carry
	// (RFC 6455 section 5.5).
	MaxControlPayload = 125

	// MaxFramePayload is the default limit on a single frame's payload.
	// It protects against absurd length headers; callers that accept larger
	// frames use DecodeFrameLimit with their own limit.
	MaxFramePayload = 1 << 20 // 1 MiB

	finBit  = 0x80
	rsvMask = 0x70
	maskBit = 0x80
)

// DecodeFrame parses the first complete frame in buf using the default
// MaxFramePayload limit. See DecodeFrameLimit.
func DecodeFrame(buf []byte) (*Frame, int, error) {
	return DecodeFrameLimit(buf, MaxFramePayload)
}

// DecodeFrameLimit parses the first complete frame in buf, enforcing limit as
// the maximum payload size (limit <= 0 disables the check). It returns the
// frame, the number of bytes consumed, and an error for protocol-invalid
// encodings. If buf holds only a partial frame it returns (nil, 0, nil) so the
// caller can read more bytes and retry. Masked payloads are unmasked; the
// returned payload never aliases buf.
func DecodeFrameLimit(buf []byte, limit int64) (*Frame, int, error) {
	if len(buf) < 2 {
		return nil, 0, nil
	}

	fin := buf[0]&finBit != 0
	if buf[0]&rsvMask != 0 {
		return nil, 0, ErrReservedBits
	}
	opcode := Opcode(buf[0] & 0x0F)
	if opcode.IsReserved() {
		return nil, 0, fmt.Errorf("%w 0x%x", ErrReservedOpcode, byte(opcode))
	}

	masked := buf[1]&maskBit != 0
	length := int64(buf[1] & 0x7F)

	if opcode.IsControl() {
		if !fin {
			return nil, 0, ErrFragmentedControl
		}
		if length > MaxControlPayload {
			return nil, 0, ErrControlTooLong
		}
	}

	offset := 2
	switch length {
	case 126:
		if len(buf) < offset+2 {
			return nil, 0, nil
		}
		length = int64(binary.BigEndian.Uint16(buf[offset:]))
		offset += 2
	case 127:
		if len(buf) < offset+8 {
			return nil, 0, nil
		}
		length = int64(binary.BigEndian.Uint64(buf[offset:]))
		offset += 8
		if length < 0 {
			return nil, 0, ErrFrameTooLarge
		}
	}

	if limit > 0 && length > limit {
		return nil, 0, ErrFrameTooLarge
	}

	var maskKey [4]byte
	if masked {
		if len(buf) < offset+4 {
			return nil, 0, nil
		}
		copy(maskKey[:], buf[offset:offset+4])
		offset += 4
	}

	total := offset + int(length)
	if total < 0 || len(buf) < total {
		return nil, 0, nil
	}

	payload := make([]byte, length)
	copy(payload, buf[offset:total])
	if masked {
		maskBytes(payload, maskKey)
	}

	return &Frame{
		Fin:     fin,
		Opcode:  opcode,
		Payload: payload,
	}, total, nil
}

// EncodeFrame serializes f into wire bytes. When mask is true the payload is
// masked with a fresh random key, as required for client-to-server frames.
// Control frames are rejected if they are not final or exceed
// MaxControlPayload.
func EncodeFrame(f *Frame, mask bool) ([]byte, error) {
	if f.Opcode.IsReserved() {
		return nil, fmt.Errorf("%w 0x%x", ErrReservedOpcode, byte(f.Opcode))
	}
	if f.Opcode.IsControl() {
		if !f.Fin {
			return nil, ErrFragmentedControl
		}
		if len(f.Payload) > MaxControlPayload {
			return nil, ErrControlTooLong
		}
	}

	var b0 byte
	if f.Fin {
		b0 = finBit
	}
	b0 |= byte(f.Opcode) & 0x0F

	plen := len(f.Payload)
	var hdr [10]byte
	var header []byte
	switch {
	case plen <= 125:
		header = hdr[:2]
		header[1] = byte(plen)
	case plen <= 0xFFFF:
		header = hdr[:4]
		header[1] = 126
		binary.BigEndian.PutUint16(header[2:], uint16(plen))
	default:
		header = hdr[:10]
		header[1] = 127
		binary.BigEndian.PutUint64(header[2:], uint64(plen))
	}
	header[0] = b0
	if mask {
		header[1] |= maskBit
	}

	out := make([]byte, 0, len(header)+4+plen)
	out = append(out, header...)
	if mask {
		var maskKey [4]byte
		if _, err := rand.Read(maskKey[:]); err != nil {
			return nil, fmt.Errorf("generating mask key: %w", err)
		}
		out = append(out, maskKey[:]...)
		start := len(out)
		out = append(out, f.Payload...)
		maskBytes(out[start:], maskKey)
	} else {
		out = append(out, f.Payload...)
	}

	return out, nil
}

// maskBytes XORs p in place with the repeating 4-byte key. Masking and
// unmasking are the same operation.
func maskBytes(p []byte, key [4]byte) {
	for i := range p {
		p[i] ^= key[i%4]
	}
}
