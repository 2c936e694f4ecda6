package wsclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/wirecat/wirecat/pkg/wsproto"
)

// Mailbox message classes. Socket messages carry the generation of the
// connection that produced them so events from a replaced connection
// can be dropped after a reconnect.
type (
	socketData struct {
		gen uint64
		p   []byte
	}
	socketClosed struct {
		gen uint64
		err error
	}
	castMsg struct {
		msg any
	}
	infoMsg struct {
		msg any
	}
	sendMsg struct {
		frame Frame
		wire  []byte
	}
	closeMsg struct {
		code   CloseCode
		reason string
	}
	snapshotMsg struct {
		reply chan any
	}
)

func (c *Client) run() {
	reason := c.loop()
	c.shutdown(reason)
}

// loop is the actor: it alternates between draining complete frames
// out of the receive buffer and taking the next mailbox message, so
// buffered frames are always dispatched before new input is awaited.
// It returns the termination reason.
func (c *Client) loop() CloseReason {
	for {
		for {
			frame, n, err := c.codec.Decode(c.buf)
			if err != nil {
				if done, reason := c.decodeFailed(err); done {
					return reason
				}
				break
			}
			if frame == nil {
				break
			}
			c.buf = c.buf[n:]
			c.framesIn.Add(1)
			if done, reason := c.dispatchWire(frame); done {
				return reason
			}
		}
		if done, reason := c.handleMessage(c.mailbox.take()); done {
			return reason
		}
	}
}

// decodeFailed turns an undecodable byte stream into a close
// handshake: too-large frames close with CloseMessageTooBig, anything
// else is a protocol error.
func (c *Client) decodeFailed(err error) (bool, CloseReason) {
	if errors.Is(err, wsproto.ErrFrameTooLarge) {
		return c.closeLocal(CloseMessageTooBig, "message too large")
	}
	return c.closeLocal(CloseProtocolError, err.Error())
}

func (c *Client) handleMessage(msg any) (bool, CloseReason) {
	switch m := msg.(type) {
	case socketData:
		if m.gen != c.gen {
			return false, CloseReason{}
		}
		c.bytesIn.Add(int64(len(m.p)))
		c.buf = append(c.buf, m.p...)
		return false, CloseReason{}

	case socketClosed:
		if m.gen != c.gen {
			return false, CloseReason{}
		}
		err := m.err
		if err == nil {
			err = errors.New("connection closed without a close frame")
		}
		return true, CloseReason{Err: &ConnError{Op: "read", Err: err}}

	case castMsg:
		return c.dispatch("HandleCast", m.msg, func() Result {
			return c.handler.HandleCast(m.msg, c.state)
		})

	case infoMsg:
		c.log.Debug("info message", slog.String("type", fmt.Sprintf("%T", m.msg)))
		return c.dispatch("HandleInfo", m.msg, func() Result {
			return c.handler.HandleInfo(m.msg, c.state)
		})

	case sendMsg:
		if err := c.transport.Send(m.wire); err != nil {
			return true, CloseReason{Err: &ConnError{Op: "send", Err: err}}
		}
		c.framesOut.Add(1)
		c.bytesOut.Add(int64(len(m.wire)))
		return false, CloseReason{}

	case closeMsg:
		return c.closeLocal(m.code, m.reason)

	case snapshotMsg:
		m.reply <- c.state
		return false, CloseReason{}

	default:
		return c.dispatch("HandleInfo", msg, func() Result {
			return c.handler.HandleInfo(msg, c.state)
		})
	}
}

// dispatchWire routes one decoded frame: close frames enter the close
// handshake, pings and pongs go to their callbacks, data frames pass
// through reassembly before reaching HandleFrame.
func (c *Client) dispatchWire(f *wsproto.Frame) (bool, CloseReason) {
	switch f.Opcode {
	case wsproto.OpClose:
		return c.closeRemote(f.Payload)

	case wsproto.OpPing:
		ping := Frame{Type: FramePing, Payload: f.Payload}
		return c.dispatch("HandlePing", ping, func() Result {
			return c.handler.HandlePing(ping, c.state)
		})

	case wsproto.OpPong:
		pong := Frame{Type: FramePong, Payload: f.Payload}
		return c.dispatch("HandlePong", pong, func() Result {
			return c.handler.HandlePong(pong, c.state)
		})

	default:
		msg, viol := c.frag.absorb(f)
		if viol != nil {
			return c.closeLocal(viol.code, viol.reason)
		}
		if msg == nil {
			return false, CloseReason{}
		}
		if msg.Opcode == wsproto.OpText && !utf8.Valid(msg.Payload) {
			return c.closeLocal(CloseInvalidPayload, "invalid utf-8 in text message")
		}
		frame := Frame{Type: frameTypeOf(msg.Opcode), Payload: msg.Payload}
		return c.dispatch("HandleFrame", frame, func() Result {
			return c.handler.HandleFrame(frame, c.state)
		})
	}
}

// dispatch runs one callback and applies its Result. A panic or an
// invalid Result terminates the connection with a BadResponseError.
func (c *Client) dispatch(callback string, input any, fn func() Result) (bool, CloseReason) {
	res, err := c.callResult(callback, input, fn)
	if err != nil {
		return true, CloseReason{Err: err}
	}
	return c.applyResult(callback, input, res)
}

func (c *Client) callResult(callback string, input any, fn func() Result) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &BadResponseError{
				Handler:  handlerName(c.handler),
				Callback: callback,
				Input:    input,
				Panic:    r,
			}
		}
	}()
	return fn(), nil
}

func (c *Client) applyResult(callback string, input any, res Result) (bool, CloseReason) {
	switch res.kind {
	case resultContinue:
		c.state = res.state
		return false, CloseReason{}

	case resultReply:
		c.state = res.state
		wire, err := c.codec.Encode(res.frame)
		if err != nil {
			return true, CloseReason{Err: err}
		}
		if err := c.transport.Send(wire); err != nil {
			return true, CloseReason{Err: &ConnError{Op: "send", Err: err}}
		}
		c.framesOut.Add(1)
		c.bytesOut.Add(int64(len(wire)))
		return false, CloseReason{}

	case resultClose:
		c.state = res.state
		return c.closeLocal(res.code, res.reason)

	default:
		return true, CloseReason{Err: &BadResponseError{
			Handler:  handlerName(c.handler),
			Callback: callback,
			Input:    input,
			Value:    res,
		}}
	}
}

// closeRemote completes a close handshake the peer started: echo the
// close frame back, wait for the socket to drop, then let the handler
// decide between stopping and reconnecting. A send failure caused by
// the peer dropping the socket first is benign.
func (c *Client) closeRemote(payload []byte) (bool, CloseReason) {
	code, reasonText, err := wsproto.ParseClosePayload(payload)
	if err != nil {
		return c.closeLocal(CloseProtocolError, "invalid close frame payload")
	}

	var echo Frame
	if code == CloseNoStatusReceived {
		echo = Frame{Type: FrameClose}
		code = 0
	} else {
		echo = NewCloseFrame(code, reasonText)
	}
	c.log.Debug("close frame received",
		slog.Int("code", int(code)),
		slog.String("reason", reasonText),
	)

	wire, err := c.codec.Encode(echo)
	if err != nil {
		return true, CloseReason{Err: err}
	}
	switch err := c.transport.Send(wire); {
	case err == nil:
		c.framesOut.Add(1)
		c.bytesOut.Add(int64(len(wire)))
	case errors.Is(err, ErrSocketClosed):
		// Peer dropped the socket before the echo landed.
	default:
		return true, CloseReason{Err: &ConnError{Op: "send", Err: err}}
	}

	if err := c.waitClose(); err != nil {
		return true, CloseReason{Err: err}
	}
	return c.disconnected(CloseReason{Origin: OriginRemote, Code: code, Reason: reasonText})
}

// closeLocal runs a close handshake this side started, whether by a
// handler result, a Close call or a protocol violation: stop
// dispatching input, send the close frame, wait for the peer to drop
// the socket. Unlike the remote case a send failure here is fatal; the
// peer has given no sign it is closing.
func (c *Client) closeLocal(code CloseCode, reasonText string) (bool, CloseReason) {
	reasonText = clampCloseReason(reasonText)
	if err := c.transport.SetActive(false); err != nil {
		return true, CloseReason{Err: &ConnError{Op: "deactivate", Err: err}}
	}

	var f Frame
	if code == 0 {
		f = Frame{Type: FrameClose}
	} else {
		f = NewCloseFrame(code, reasonText)
	}
	c.log.Debug("closing connection",
		slog.Int("code", int(code)),
		slog.String("reason", reasonText),
	)

	wire, err := c.codec.Encode(f)
	if err != nil {
		return true, CloseReason{Err: err}
	}
	if err := c.transport.Send(wire); err != nil {
		return true, CloseReason{Err: &ConnError{Op: "send", Err: err}}
	}
	c.framesOut.Add(1)
	c.bytesOut.Add(int64(len(wire)))

	if err := c.waitClose(); err != nil {
		return true, CloseReason{Err: err}
	}
	return c.disconnected(CloseReason{Origin: OriginLocal, Code: code, Reason: reasonText})
}

// waitClose waits for the socket to drop, bounded by CloseTimeout. A
// peer that never drops the socket is an error, never a clean close.
func (c *Client) waitClose() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.CloseTimeout)
	defer cancel()
	if err := c.transport.WaitClose(ctx); err != nil {
		return &ConnError{Op: "close wait", Err: err}
	}
	return nil
}

// disconnected runs HandleDisconnect after a completed close handshake
// and applies its verdict.
func (c *Client) disconnected(reason CloseReason) (bool, CloseReason) {
	res, err := c.callDisconnect(reason)
	if err != nil {
		return true, CloseReason{Err: err}
	}
	switch res.kind {
	case disconnectStop:
		c.state = res.state
		return true, reason

	case disconnectReconnect:
		c.state = res.state
		if err := c.reconnect(); err != nil {
			return true, CloseReason{Err: err}
		}
		return false, CloseReason{}

	default:
		return true, CloseReason{Err: &BadResponseError{
			Handler:  handlerName(c.handler),
			Callback: "HandleDisconnect",
			Input:    reason,
			Value:    res,
		}}
	}
}

func (c *Client) callDisconnect(reason CloseReason) (res DisconnectResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &BadResponseError{
				Handler:  handlerName(c.handler),
				Callback: "HandleDisconnect",
				Input:    reason,
				Panic:    r,
			}
		}
	}()
	return c.handler.HandleDisconnect(reason, c.state), nil
}

// reconnect replaces the connection with a fresh one to the original
// URL. Socket events from the old connection are invalidated by the
// generation bump. Init is not re-run.
func (c *Client) reconnect() error {
	c.transport.Close()
	c.gen++
	c.buf = nil
	c.frag.reset()

	ctx, cancel := context.WithTimeout(context.Background(), c.opts.HandshakeTimeout)
	defer cancel()
	if err := c.connect(ctx); err != nil {
		return fmt.Errorf("reconnecting to %s: %w", c.rawURL, err)
	}
	c.reconnects.Add(1)
	c.log.Debug("reconnected", slog.Int("attempts", int(c.reconnects.Load())))
	return nil
}

func (c *Client) callInit(initial any) (state any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &BadResponseError{
				Handler:  handlerName(c.handler),
				Callback: "Init",
				Panic:    r,
			}
		}
	}()
	return c.handler.Init(c, initial)
}

// shutdown finalizes the client: refuse new work, record the reason,
// run Terminate exactly once, drop the socket, release waiters.
func (c *Client) shutdown(reason CloseReason) {
	c.terminated.Store(true)
	c.mu.Lock()
	c.reason = reason
	c.mu.Unlock()

	c.callTerminate(reason)
	c.transport.Close()
	close(c.done)

	if reason.Err != nil {
		c.log.Error("connection terminated", slog.Any("error", reason.Err))
	} else {
		c.log.Debug("connection closed", slog.String("reason", reason.String()))
	}
}

func (c *Client) callTerminate(reason CloseReason) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("terminate hook panicked", slog.Any("panic", r))
		}
	}()
	c.handler.Terminate(reason, c.state)
}

func handlerName(h Handler) string {
	return fmt.Sprintf("%T", h)
}

const maxCloseReasonBytes = wsproto.MaxControlPayload - 2

// clampCloseReason keeps a close reason within the 123 bytes a close
// frame payload can carry, cutting on a rune boundary.
func clampCloseReason(reason string) string {
	if len(reason) <= maxCloseReasonBytes {
		return reason
	}
	return strings.ToValidUTF8(reason[:maxCloseReasonBytes], "")
}
