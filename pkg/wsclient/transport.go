package wsclient

import (
	"context"
	"net"
	"net/http"
	"net/url"
)

// Receiver is where a transport delivers socket events. Both methods
// must never block for long: they enqueue into the actor's mailbox.
// The transport may reuse the byte slice after Data returns.
type Receiver interface {
	// Data delivers raw bytes read from the socket while the
	// transport is active.
	Data(p []byte)

	// Closed reports that the socket closed. err is nil for an
	// orderly closure at the transport level; whether that closure was
	// clean at the protocol level is the actor's call.
	Closed(err error)
}

// Transport is one connection attempt's byte pipe plus the pieces of
// the upgrade handshake that touch the socket. The built-in transport
// dials TCP or TLS; tests and tunnels substitute their own.
//
// A transport starts passive: bytes read before SetActive(true) are
// discarded and no Closed event is delivered. The actor flips it
// active once the handshake response has been verified, and passive
// again while it waits out a local close handshake.
type Transport interface {
	// Open establishes the underlying connection.
	Open(ctx context.Context) error

	// UpgradeRequest renders the HTTP upgrade request for this
	// connection using the given Sec-WebSocket-Key.
	UpgradeRequest(key string) ([]byte, error)

	// ReadResponse reads the server's handshake response. Bytes
	// following the response headers are kept and delivered through
	// the Receiver once the transport is active.
	ReadResponse(ctx context.Context) (*http.Response, error)

	// Send writes p to the socket. It returns an error wrapping
	// ErrSocketClosed when the socket is already closed.
	Send(p []byte) error

	// SetActive turns delivery of socket input to the Receiver on or
	// off. Input read while passive is discarded, but reading
	// continues so socket closure is still observed.
	SetActive(active bool) error

	// WaitClose blocks until the peer closes the socket or ctx
	// expires. Either way the socket is fully closed when it returns.
	WaitClose(ctx context.Context) error

	// Close drops the socket immediately.
	Close() error

	// LocalAddr returns the local address, or nil before Open.
	LocalAddr() net.Addr
}

// TransportFactory builds a transport for one connection attempt.
// Reconnects call the factory again so every attempt gets a fresh
// transport.
type TransportFactory func(u *url.URL, opts *Options, recv Receiver) (Transport, error)
