package wsclient

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/net/proxy"
)

// Handshake headers the caller may not override through ExtraHeaders.
var reservedHeaders = map[string]bool{
	"Host":                     true,
	"Upgrade":                  true,
	"Connection":               true,
	"Sec-Websocket-Key":        true,
	"Sec-Websocket-Version":    true,
	"Sec-Websocket-Protocol":   true,
	"Sec-Websocket-Extensions": true,
}

// netTransport is the built-in transport: TCP, optionally wrapped in
// TLS for wss URLs, optionally dialed through a SOCKS5 proxy.
type netTransport struct {
	u    *url.URL
	opts *Options
	recv Receiver

	conn net.Conn
	br   *bufio.Reader

	active  atomic.Bool
	started atomic.Bool
	dead    atomic.Bool

	writeMu sync.Mutex

	// closed is closed when the read pump exits, meaning no more
	// socket input can arrive.
	closed    chan struct{}
	closeOnce sync.Once
}

// newNetTransport is the default TransportFactory.
func newNetTransport(u *url.URL, opts *Options, recv Receiver) (Transport, error) {
	return &netTransport{
		u:      u,
		opts:   opts,
		recv:   recv,
		closed: make(chan struct{}),
	}, nil
}

func (t *netTransport) Open(ctx context.Context) error {
	addr := hostPort(t.u)

	conn, err := t.dial(ctx, addr)
	if err != nil {
		return err
	}

	if t.u.Scheme == "wss" {
		cfg := t.opts.TLSConfig
		if cfg == nil {
			cfg = &tls.Config{}
		} else {
			cfg = cfg.Clone()
		}
		if cfg.ServerName == "" {
			cfg.ServerName = t.u.Hostname()
		}
		tlsConn := tls.Client(conn, cfg)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return err
		}
		conn = tlsConn
	}

	t.conn = conn
	t.br = bufio.NewReaderSize(conn, t.opts.ReadBufferSize)
	return nil
}

func (t *netTransport) dial(ctx context.Context, addr string) (net.Conn, error) {
	if t.opts.Proxy == nil {
		var d net.Dialer
		return d.DialContext(ctx, "tcp", addr)
	}

	var auth *proxy.Auth
	if user := t.opts.Proxy.User; user != nil {
		password, _ := user.Password()
		auth = &proxy.Auth{User: user.Username(), Password: password}
	}
	d, err := proxy.SOCKS5("tcp", proxyHostPort(t.opts.Proxy), auth, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("building socks5 dialer: %w", err)
	}
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, "tcp", addr)
	}
	return d.Dial("tcp", addr)
}

func (t *netTransport) UpgradeRequest(key string) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "GET %s HTTP/1.1\r\n", t.u.RequestURI())
	fmt.Fprintf(&b, "Host: %s\r\n", t.u.Host)
	b.WriteString("Upgrade: websocket\r\n")
	b.WriteString("Connection: Upgrade\r\n")
	fmt.Fprintf(&b, "Sec-WebSocket-Key: %s\r\n", key)
	b.WriteString("Sec-WebSocket-Version: 13\r\n")
	if len(t.opts.Subprotocols) > 0 {
		fmt.Fprintf(&b, "Sec-WebSocket-Protocol: %s\r\n", strings.Join(t.opts.Subprotocols, ", "))
	}
	for name, values := range t.opts.ExtraHeaders {
		if reservedHeaders[http.CanonicalHeaderKey(name)] {
			return nil, fmt.Errorf("extra header %q conflicts with handshake headers", name)
		}
		for _, v := range values {
			fmt.Fprintf(&b, "%s: %s\r\n", name, v)
		}
	}
	b.WriteString("\r\n")
	return b.Bytes(), nil
}

func (t *netTransport) ReadResponse(ctx context.Context) (*http.Response, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if err := t.conn.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
		defer t.conn.SetReadDeadline(time.Time{})
	}
	// A 101 response has no body, so any bytes past the header block
	// stay buffered in t.br for the read pump.
	resp, err := http.ReadResponse(t.br, nil)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()
	return resp, nil
}

func (t *netTransport) Send(p []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if t.dead.Load() || t.conn == nil {
		return ErrSocketClosed
	}
	if _, err := t.conn.Write(p); err != nil {
		if isClosedConnError(err) {
			return fmt.Errorf("%w: %v", ErrSocketClosed, err)
		}
		return err
	}
	return nil
}

func (t *netTransport) SetActive(active bool) error {
	if t.conn == nil {
		return errors.New("transport not open")
	}
	t.active.Store(active)
	if active && t.started.CompareAndSwap(false, true) {
		go t.readPump()
	}
	return nil
}

// readPump moves socket bytes to the receiver. It keeps reading while
// the transport is passive so socket closure is observed either way.
func (t *netTransport) readPump() {
	defer close(t.closed)
	buf := make([]byte, t.opts.ReadBufferSize)
	for {
		n, err := t.br.Read(buf)
		if n > 0 && t.active.Load() {
			t.recv.Data(buf[:n])
		}
		if err != nil {
			t.dead.Store(true)
			if t.active.Load() {
				if errors.Is(err, io.EOF) || isClosedConnError(err) {
					t.recv.Closed(nil)
				} else {
					t.recv.Closed(err)
				}
			}
			return
		}
	}
}

func (t *netTransport) WaitClose(ctx context.Context) error {
	if !t.started.Load() {
		t.closeConn()
		return nil
	}
	select {
	case <-t.closed:
		t.closeConn()
		return nil
	case <-ctx.Done():
		t.closeConn()
		return ctx.Err()
	}
}

func (t *netTransport) Close() error {
	t.closeConn()
	return nil
}

func (t *netTransport) closeConn() {
	t.closeOnce.Do(func() {
		t.dead.Store(true)
		if t.conn != nil {
			t.conn.Close()
		}
	})
}

func (t *netTransport) LocalAddr() net.Addr {
	if t.conn == nil {
		return nil
	}
	return t.conn.LocalAddr()
}

func hostPort(u *url.URL) string {
	port := u.Port()
	if port == "" {
		if u.Scheme == "wss" {
			port = "443"
		} else {
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port)
}

func proxyHostPort(u *url.URL) string {
	port := u.Port()
	if port == "" {
		port = "1080"
	}
	return net.JoinHostPort(u.Hostname(), port)
}

func isClosedConnError(err error) bool {
	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET)
}
