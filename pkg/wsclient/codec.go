package wsclient

import (
	"github.com/wirecat/wirecat/pkg/wsproto"
)

// FrameCodec translates between wire bytes and frames. Decode operates
// at the wire level so the actor can reassemble fragments; Encode
// operates on whole user frames.
//
// Implementations must be safe for concurrent use: sends encode on the
// calling goroutine while the actor encodes replies.
type FrameCodec interface {
	// Decode extracts the first complete frame from buf. It returns
	// the frame and the number of bytes consumed, (nil, 0, nil) when
	// buf holds no complete frame yet, or an error for bytes that can
	// never become a valid frame.
	Decode(buf []byte) (*wsproto.Frame, int, error)

	// Encode produces the wire bytes for one outgoing frame, masked as
	// required for client-to-server frames.
	Encode(f Frame) ([]byte, error)
}

// protoCodec is the built-in RFC 6455 codec.
type protoCodec struct {
	// maxFrame caps a single incoming frame's payload length. A frame
	// over the cap fails decoding with wsproto.ErrFrameTooLarge.
	maxFrame int64
}

func (c *protoCodec) Decode(buf []byte) (*wsproto.Frame, int, error) {
	return wsproto.DecodeFrameLimit(buf, c.maxFrame)
}

func (c *protoCodec) Encode(f Frame) ([]byte, error) {
	wf, err := wireFrame(f)
	if err != nil {
		return nil, err
	}
	out, err := wsproto.EncodeFrame(wf, true)
	if err != nil {
		return nil, &FrameEncodeError{Type: f.Type, Reason: err.Error()}
	}
	return out, nil
}

// wireFrame maps a user frame onto a wire frame, building the close
// payload for close frames.
func wireFrame(f Frame) (*wsproto.Frame, error) {
	switch f.Type {
	case FrameText:
		return &wsproto.Frame{Fin: true, Opcode: wsproto.OpText, Payload: f.Payload}, nil
	case FrameBinary:
		return &wsproto.Frame{Fin: true, Opcode: wsproto.OpBinary, Payload: f.Payload}, nil
	case FramePing:
		return &wsproto.Frame{Fin: true, Opcode: wsproto.OpPing, Payload: f.Payload}, nil
	case FramePong:
		return &wsproto.Frame{Fin: true, Opcode: wsproto.OpPong, Payload: f.Payload}, nil
	case FrameClose:
		payload, err := wsproto.EncodeClosePayload(f.Code, string(f.Payload))
		if err != nil {
			return nil, &FrameEncodeError{Type: FrameClose, Reason: err.Error()}
		}
		return &wsproto.Frame{Fin: true, Opcode: wsproto.OpClose, Payload: payload}, nil
	default:
		return nil, &FrameEncodeError{Type: f.Type, Reason: "unknown frame type"}
	}
}

// frameTypeOf maps a data opcode to its user frame type.
func frameTypeOf(op wsproto.Opcode) FrameType {
	if op == wsproto.OpBinary {
		return FrameBinary
	}
	return FrameText
}
