// Package wsproto implements the RFC 6455 wire primitives used by the
// wirecat client: frame encoding and decoding, close payload handling, and
// the opening-handshake key computation.
//
// The package is stateless. Fragmentation reassembly, dispatch, and the close
// handshake live in pkg/wsclient; wsproto only turns bytes into frames and
// frames into bytes.
//
// Key properties:
//   - Incremental decoding: DecodeFrame reports how many bytes it consumed so
//     callers can keep a rolling buffer of partial socket reads.
//   - Client-side masking: EncodeFrame masks payloads with a fresh random key
//     when asked to, as required for client-to-server frames.
//   - Strict validation: reserved bits, reserved opcodes, fragmented or
//     oversized control frames, and malformed close payloads are rejected.
//
// Usage:
//
//	frame, n, err := wsproto.DecodeFrame(buf)
//	if err != nil {
//	    // protocol violation
//	}
//	if frame == nil {
//	    // incomplete: read more bytes, try again
//	}
//	buf = buf[n:]
package wsproto
