package wsclient

import (
	"bytes"

	"github.com/wirecat/wirecat/pkg/wsproto"
)

// protocolViolation is a peer protocol error that must close the
// connection with the given status code.
type protocolViolation struct {
	code   CloseCode
	reason string
}

// fragmentState reassembles fragmented messages. It sees only data
// frames; control frames are interleaved on the wire but never reach
// the accumulator.
type fragmentState struct {
	active bool
	opcode wsproto.Opcode
	buf    bytes.Buffer
	max    int64
}

// absorb feeds one data frame into the reassembler. It returns a
// complete message once the final fragment arrives, nil while a
// message is still being assembled, or a violation that the caller
// must turn into a close handshake. After a violation the accumulator
// is untouched.
func (f *fragmentState) absorb(fr *wsproto.Frame) (*wsproto.Frame, *protocolViolation) {
	switch {
	case fr.Opcode == wsproto.OpContinuation && !f.active:
		return nil, &protocolViolation{
			code:   CloseProtocolError,
			reason: "continuation without starting a fragment",
		}

	case fr.Opcode != wsproto.OpContinuation && f.active:
		return nil, &protocolViolation{
			code:   CloseProtocolError,
			reason: "tried to start a fragment without finishing another",
		}

	case fr.Opcode == wsproto.OpContinuation:
		if f.exceeds(f.buf.Len() + len(fr.Payload)) {
			return nil, &protocolViolation{
				code:   CloseMessageTooBig,
				reason: "message too large",
			}
		}
		f.buf.Write(fr.Payload)
		if !fr.Fin {
			return nil, nil
		}
		msg := &wsproto.Frame{
			Fin:     true,
			Opcode:  f.opcode,
			Payload: append([]byte(nil), f.buf.Bytes()...),
		}
		f.reset()
		return msg, nil

	case !fr.Fin:
		// First fragment of a new message.
		if f.exceeds(len(fr.Payload)) {
			return nil, &protocolViolation{
				code:   CloseMessageTooBig,
				reason: "message too large",
			}
		}
		f.active = true
		f.opcode = fr.Opcode
		f.buf.Reset()
		f.buf.Write(fr.Payload)
		return nil, nil

	default:
		// Unfragmented message.
		if f.exceeds(len(fr.Payload)) {
			return nil, &protocolViolation{
				code:   CloseMessageTooBig,
				reason: "message too large",
			}
		}
		return fr, nil
	}
}

func (f *fragmentState) exceeds(n int) bool {
	return f.max > 0 && int64(n) > f.max
}

// reset discards any partial message, for reuse after a reconnect.
func (f *fragmentState) reset() {
	f.active = false
	f.opcode = 0
	f.buf.Reset()
}
