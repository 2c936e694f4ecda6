package wsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wirecat/wirecat/internal/id"
	"github.com/wirecat/wirecat/pkg/logging"
	"github.com/wirecat/wirecat/pkg/wsproto"
)

// Client is a managed WebSocket connection. Its exported methods are
// safe for concurrent use; they communicate with the connection actor
// through the mailbox and never touch the socket directly.
type Client struct {
	id      string
	url     *url.URL
	rawURL  string
	opts    Options
	handler Handler
	codec   FrameCodec
	log     *slog.Logger

	mailbox *mailbox

	// Actor-owned fields. Only the actor goroutine touches these once
	// Start has returned.
	transport Transport
	state     any
	buf       []byte
	frag      fragmentState
	gen       uint64

	mu          sync.RWMutex
	subprotocol string
	localAddr   string
	connectedAt time.Time
	reason      CloseReason

	framesIn   atomic.Int64
	framesOut  atomic.Int64
	bytesIn    atomic.Int64
	bytesOut   atomic.Int64
	reconnects atomic.Int32

	terminated atomic.Bool
	done       chan struct{}
}

// Start connects to rawURL, performs the upgrade handshake, runs the
// handler's Init with initialState, and starts the connection actor.
// It returns only once the connection is established and Init has
// succeeded, so a nil error means frames are flowing.
//
// opts may be nil for defaults. The options are captured at Start and
// reused verbatim for reconnects.
func Start(rawURL string, handler Handler, initialState any, opts *Options) (*Client, error) {
	if handler == nil {
		return nil, errors.New("handler is required")
	}
	if opts == nil {
		opts = &Options{}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	u, err := parseWSURL(rawURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		id:      id.Conn(),
		url:     u,
		rawURL:  rawURL,
		opts:    opts.normalized(),
		handler: handler,
		mailbox: newMailbox(),
		gen:     1,
		done:    make(chan struct{}),
	}
	c.codec = c.opts.Codec
	c.frag.max = c.opts.MaxMessageSize
	c.log = logging.WithConn(c.opts.Logger, c.id, rawURL)

	ctx, cancel := context.WithTimeout(context.Background(), c.opts.HandshakeTimeout)
	defer cancel()
	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	state, err := c.callInit(initialState)
	if err != nil {
		c.transport.Close()
		return nil, err
	}
	c.state = state

	go c.run()
	if c.opts.PingInterval > 0 {
		go c.keepalive()
	}
	c.log.Debug("connection established",
		slog.String("subprotocol", c.Subprotocol()),
	)
	return c, nil
}

// connect performs one full connection attempt: transport, dial,
// upgrade exchange, verification, activation. It is used by Start and
// by reconnects.
func (c *Client) connect(ctx context.Context) error {
	recv := &receiver{c: c, gen: c.gen}
	tr, err := c.opts.NewTransport(c.url, &c.opts, recv)
	if err != nil {
		return &ConnError{Op: "open", Err: err}
	}
	if err := tr.Open(ctx); err != nil {
		return &ConnError{Op: "open", Err: err}
	}

	key, err := wsproto.GenerateKey()
	if err != nil {
		tr.Close()
		return &ConnError{Op: "handshake", Err: err}
	}
	req, err := tr.UpgradeRequest(key)
	if err != nil {
		tr.Close()
		return &ConnError{Op: "handshake", Err: err}
	}
	if err := tr.Send(req); err != nil {
		tr.Close()
		return &ConnError{Op: "handshake", Err: err}
	}
	resp, err := tr.ReadResponse(ctx)
	if err != nil {
		tr.Close()
		return &ConnError{Op: "handshake", Err: err}
	}
	if err := verifyUpgrade(resp, key, c.rawURL); err != nil {
		tr.Close()
		return err
	}
	if err := tr.SetActive(true); err != nil {
		tr.Close()
		return &ConnError{Op: "activate", Err: err}
	}

	c.transport = tr
	c.mu.Lock()
	c.subprotocol = resp.Header.Get("Sec-WebSocket-Protocol")
	c.connectedAt = time.Now()
	if addr := tr.LocalAddr(); addr != nil {
		c.localAddr = addr.String()
	}
	c.mu.Unlock()
	return nil
}

// verifyUpgrade checks the handshake response per RFC 6455 section
// 4.2.2: status 101, the upgrade headers, and a byte-exact
// Sec-WebSocket-Accept.
func verifyUpgrade(resp *http.Response, key, rawURL string) error {
	if resp.StatusCode != http.StatusSwitchingProtocols {
		return &HandshakeError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Reason:     "server did not switch protocols",
		}
	}
	if !strings.EqualFold(resp.Header.Get("Upgrade"), "websocket") {
		return &HandshakeError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Reason:     "missing Upgrade: websocket header",
		}
	}
	if !strings.Contains(strings.ToLower(resp.Header.Get("Connection")), "upgrade") {
		return &HandshakeError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Reason:     "missing Connection: Upgrade header",
		}
	}
	if accept := resp.Header.Get("Sec-WebSocket-Accept"); accept != wsproto.AcceptKey(key) {
		return &HandshakeError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Reason:     "Sec-WebSocket-Accept mismatch",
		}
	}
	return nil
}

// parseWSURL validates a connection URL: ws or wss scheme, a host, a
// sane port, no fragment.
func parseWSURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &URLError{URL: rawURL, Reason: err.Error()}
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, &URLError{URL: rawURL, Reason: fmt.Sprintf("scheme %q is not ws or wss", u.Scheme)}
	}
	if u.Hostname() == "" {
		return nil, &URLError{URL: rawURL, Reason: "missing host"}
	}
	if port := u.Port(); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return nil, &URLError{URL: rawURL, Reason: fmt.Sprintf("invalid port %q", port)}
		}
	}
	if u.Fragment != "" {
		return nil, &URLError{URL: rawURL, Reason: "fragment identifiers are not allowed"}
	}
	return u, nil
}

// receiver adapts a transport's socket events into mailbox messages.
// The generation tag lets the actor drop events from a connection it
// has already replaced.
type receiver struct {
	c   *Client
	gen uint64
}

func (r *receiver) Data(p []byte) {
	buf := make([]byte, len(p))
	copy(buf, p)
	r.c.mailbox.put(socketData{gen: r.gen, p: buf})
}

func (r *receiver) Closed(err error) {
	r.c.mailbox.put(socketClosed{gen: r.gen, err: err})
}

// Cast enqueues msg for HandleCast.
func (c *Client) Cast(msg any) error {
	if c.terminated.Load() {
		return ErrTerminated
	}
	c.mailbox.put(castMsg{msg: msg})
	return nil
}

// Notify enqueues msg for HandleInfo. It is how timers, watchers and
// other goroutines inject events into the callback sequence.
func (c *Client) Notify(msg any) error {
	if c.terminated.Load() {
		return ErrTerminated
	}
	c.mailbox.put(infoMsg{msg: msg})
	return nil
}

// SendFrame encodes f and enqueues it for transmission. Encoding
// errors surface here; transmission errors terminate the connection
// and surface through Err.
func (c *Client) SendFrame(f Frame) error {
	if c.terminated.Load() {
		return ErrTerminated
	}
	wire, err := c.codec.Encode(f)
	if err != nil {
		return err
	}
	c.mailbox.put(sendMsg{frame: f, wire: wire})
	return nil
}

// SendText sends a text frame.
func (c *Client) SendText(text string) error {
	return c.SendFrame(NewTextFrame(text))
}

// SendBinary sends a binary frame.
func (c *Client) SendBinary(payload []byte) error {
	return c.SendFrame(NewBinaryFrame(payload))
}

// SendJSON marshals v and sends it as a text frame.
func (c *Client) SendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling frame payload: %w", err)
	}
	return c.SendFrame(Frame{Type: FrameText, Payload: data})
}

// Close starts a local close handshake with the given status code and
// reason. A zero code sends a close frame with no payload. The client
// keeps running until the handshake completes and HandleDisconnect
// decides what happens next; wait on Done for the outcome.
func (c *Client) Close(code CloseCode, reason string) error {
	if c.terminated.Load() {
		return ErrTerminated
	}
	if _, err := wsproto.EncodeClosePayload(code, reason); err != nil {
		return &FrameEncodeError{Type: FrameClose, Reason: err.Error()}
	}
	c.mailbox.put(closeMsg{code: code, reason: reason})
	return nil
}

// CloseNormal starts a local close handshake with CloseNormalClosure.
func (c *Client) CloseNormal() error {
	return c.Close(CloseNormalClosure, "")
}

// Done returns a channel closed when the actor has terminated and the
// handler's Terminate has run.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err reports how the connection ended: nil while running or after a
// clean close, the terminating error after a failure, or a CloseError
// for a completed close handshake with a non-normal code.
func (c *Client) Err() error {
	select {
	case <-c.done:
	default:
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.reason.Clean() {
		return nil
	}
	if c.reason.Err != nil {
		return c.reason.Err
	}
	return &CloseError{Reason: c.reason}
}

// State asks the actor for a snapshot of the current handler state. It
// waits in line behind queued messages, so the snapshot reflects all
// messages enqueued before the call. Treat the returned value as
// read-only; the handler may keep mutating it.
//
// State must not be called from handler callbacks: it would wait on
// the goroutine running the callback.
func (c *Client) State(ctx context.Context) (any, error) {
	if c.terminated.Load() {
		return nil, ErrTerminated
	}
	reply := make(chan any, 1)
	c.mailbox.put(snapshotMsg{reply: reply})
	select {
	case state := <-reply:
		return state, nil
	case <-c.done:
		return nil, ErrTerminated
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ID returns the connection identifier assigned at Start.
func (c *Client) ID() string {
	return c.id
}

// URL returns the URL the client was started with.
func (c *Client) URL() string {
	return c.rawURL
}

// Subprotocol returns the subprotocol the server selected, or empty.
func (c *Client) Subprotocol() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subprotocol
}

// Info returns a snapshot of connection details.
func (c *Client) Info() ConnInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ConnInfo{
		ID:          c.id,
		URL:         c.rawURL,
		Subprotocol: c.subprotocol,
		LocalAddr:   c.localAddr,
		ConnectedAt: c.connectedAt,
	}
}

// Stats returns a snapshot of connection counters.
func (c *Client) Stats() Stats {
	c.mu.RLock()
	connectedAt := c.connectedAt
	c.mu.RUnlock()
	return Stats{
		FramesIn:    c.framesIn.Load(),
		FramesOut:   c.framesOut.Load(),
		BytesIn:     c.bytesIn.Load(),
		BytesOut:    c.bytesOut.Load(),
		Reconnects:  int(c.reconnects.Load()),
		ConnectedAt: connectedAt,
	}
}

// keepalive sends pings at the configured interval until termination.
func (c *Client) keepalive() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.SendFrame(NewPingFrame(nil)); err != nil {
				return
			}
		}
	}
}
