package wsclient

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/wirecat/wirecat/pkg/logging"
)

// Default option values.
const (
	// DefaultHandshakeTimeout bounds dialing plus the HTTP upgrade
	// exchange.
	DefaultHandshakeTimeout = 30 * time.Second

	// DefaultCloseTimeout bounds the wait for the underlying socket to
	// close after a close handshake.
	DefaultCloseTimeout = 5 * time.Second

	// DefaultMaxMessageSize caps a reassembled incoming message.
	DefaultMaxMessageSize = 10 << 20

	// DefaultReadBufferSize is the socket read buffer size.
	DefaultReadBufferSize = 4096
)

// Options configures a connection. The zero value is usable; Start
// fills in defaults for unset fields. Reconnects reuse the same
// options.
type Options struct {
	// ExtraHeaders are added to the upgrade request, for example an
	// Authorization header. Handshake-critical headers (Host, Upgrade,
	// Connection, Sec-WebSocket-*) cannot be overridden.
	ExtraHeaders http.Header

	// Subprotocols are offered during the handshake in order of
	// preference. The server's choice is available from Subprotocol
	// and Info after Start returns.
	Subprotocols []string

	// TLSConfig is used for wss URLs. Nil means a default config with
	// the server name taken from the URL.
	TLSConfig *tls.Config

	// Proxy routes the connection through a SOCKS5 proxy.
	Proxy *url.URL

	// HandshakeTimeout bounds dialing plus the upgrade exchange, both
	// at Start and on each reconnect.
	HandshakeTimeout time.Duration

	// CloseTimeout bounds the wait for the peer to drop the socket
	// after a close handshake. On expiry the socket is dropped and the
	// client terminates with a ConnError.
	CloseTimeout time.Duration

	// PingInterval, when positive, sends a ping at this interval.
	// Zero disables keepalive pings.
	PingInterval time.Duration

	// MaxMessageSize caps a single incoming message after reassembly.
	// A message over the cap closes the connection with
	// CloseMessageTooBig.
	MaxMessageSize int64

	// ReadBufferSize is the socket read buffer size.
	ReadBufferSize int

	// Logger receives connection lifecycle logs. Nil disables logging.
	Logger *slog.Logger

	// NewTransport overrides the transport. Nil uses the built-in
	// TCP/TLS transport. Each connection attempt, including
	// reconnects, asks the factory for a fresh transport.
	NewTransport TransportFactory

	// Codec overrides the frame codec. Nil uses the built-in RFC 6455
	// codec. A codec must be safe for concurrent use.
	Codec FrameCodec
}

// DefaultOptions returns options with all defaults applied.
func DefaultOptions() *Options {
	return &Options{
		HandshakeTimeout: DefaultHandshakeTimeout,
		CloseTimeout:     DefaultCloseTimeout,
		MaxMessageSize:   DefaultMaxMessageSize,
		ReadBufferSize:   DefaultReadBufferSize,
	}
}

// Validate checks the options for values that can never work.
func (o *Options) Validate() error {
	if o.HandshakeTimeout < 0 {
		return fmt.Errorf("handshake timeout must not be negative, got %v", o.HandshakeTimeout)
	}
	if o.CloseTimeout < 0 {
		return fmt.Errorf("close timeout must not be negative, got %v", o.CloseTimeout)
	}
	if o.PingInterval < 0 {
		return fmt.Errorf("ping interval must not be negative, got %v", o.PingInterval)
	}
	if o.MaxMessageSize < 0 {
		return fmt.Errorf("max message size must not be negative, got %d", o.MaxMessageSize)
	}
	if o.ReadBufferSize < 0 {
		return fmt.Errorf("read buffer size must not be negative, got %d", o.ReadBufferSize)
	}
	return nil
}

// normalized returns a copy with defaults filled in for zero fields.
func (o *Options) normalized() Options {
	out := *o
	if out.HandshakeTimeout == 0 {
		out.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if out.CloseTimeout == 0 {
		out.CloseTimeout = DefaultCloseTimeout
	}
	if out.MaxMessageSize == 0 {
		out.MaxMessageSize = DefaultMaxMessageSize
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = DefaultReadBufferSize
	}
	if out.Logger == nil {
		out.Logger = logging.Nop()
	}
	if out.NewTransport == nil {
		out.NewTransport = newNetTransport
	}
	if out.Codec == nil {
		out.Codec = &protoCodec{maxFrame: out.MaxMessageSize}
	}
	return out
}
