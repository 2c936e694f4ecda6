package wsclient

import (
	"bufio"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	coderws "github.com/coder/websocket"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirecat/wirecat/pkg/wsproto"
)

// End-to-end tests against real servers: gorilla/websocket and
// coder/websocket for interoperability, plus a raw wsproto server for
// wire sequences those libraries do not let a test script.

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

var testUpgrader = gorillaws.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func gorillaEcho(t *testing.T, closed chan<- *gorillaws.CloseError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			mt, p, err := conn.ReadMessage()
			if err != nil {
				if closed != nil {
					var ce *gorillaws.CloseError
					if errors.As(err, &ce) {
						closed <- ce
					} else {
						closed <- nil
					}
				}
				return
			}
			if err := conn.WriteMessage(mt, p); err != nil {
				return
			}
		}
	}
}

func TestEchoAgainstGorilla(t *testing.T) {
	closed := make(chan *gorillaws.CloseError, 1)
	ts := httptest.NewServer(gorillaEcho(t, closed))
	defer ts.Close()

	h := newScriptHandler()
	c, err := Start(wsURL(ts), h, nil, nil)
	require.NoError(t, err)

	require.NoError(t, c.SendText("hello wirecat"))
	ev := waitEvent(t, h, "HandleFrame")
	assert.Equal(t, FrameText, ev.frame.Type)
	assert.Equal(t, "hello wirecat", ev.frame.Text())

	require.NoError(t, c.CloseNormal())
	waitDone(t, c)
	assert.NoError(t, c.Err())

	select {
	case ce := <-closed:
		require.NotNil(t, ce, "server saw a non-close error")
		assert.Equal(t, int(CloseNormalClosure), ce.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("server never observed the close")
	}

	stats := c.Stats()
	assert.GreaterOrEqual(t, stats.FramesIn, int64(1))
	assert.GreaterOrEqual(t, stats.FramesOut, int64(2))
}

func TestServerInitiatedCloseAgainstGorilla(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		deadline := time.Now().Add(time.Second)
		data := gorillaws.FormatCloseMessage(int(CloseNormalClosure), "bye")
		if err := conn.WriteControl(gorillaws.CloseMessage, data, deadline); err != nil {
			t.Errorf("write close: %v", err)
			return
		}
		// Pump until the client's echo arrives.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer ts.Close()

	h := newScriptHandler()
	c, err := Start(wsURL(ts), h, nil, nil)
	require.NoError(t, err)

	waitDone(t, c)
	assert.NoError(t, c.Err())

	ev := waitEvent(t, h, "HandleDisconnect")
	assert.Equal(t, OriginRemote, ev.reason.Origin)
	assert.Equal(t, CloseNormalClosure, ev.reason.Code)
	assert.Equal(t, "bye", ev.reason.Reason)
}

func TestSubprotocolAndBinaryAgainstCoder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := coderws.Accept(w, r, &coderws.AcceptOptions{
			Subprotocols: []string{"chat"},
		})
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		defer conn.Close(coderws.StatusInternalError, "test over")

		ctx := r.Context()
		typ, p, err := conn.Read(ctx)
		if err != nil {
			t.Errorf("read: %v", err)
			return
		}
		if err := conn.Write(ctx, typ, p); err != nil {
			t.Errorf("write: %v", err)
			return
		}
		// Block until the client closes.
		conn.Read(ctx)
	}))
	defer ts.Close()

	h := newScriptHandler()
	c, err := Start(wsURL(ts), h, nil, &Options{
		Subprotocols: []string{"chat", "superchat"},
	})
	require.NoError(t, err)
	assert.Equal(t, "chat", c.Subprotocol())
	assert.Equal(t, "chat", c.Info().Subprotocol)

	require.NoError(t, c.SendBinary([]byte{1, 2, 3}))
	ev := waitEvent(t, h, "HandleFrame")
	assert.Equal(t, FrameBinary, ev.frame.Type)
	assert.Equal(t, []byte{1, 2, 3}, ev.frame.Payload)

	require.NoError(t, c.CloseNormal())
	waitDone(t, c)
	assert.NoError(t, c.Err())
}

func TestTLSAgainstGorilla(t *testing.T) {
	ts := httptest.NewTLSServer(gorillaEcho(t, nil))
	defer ts.Close()

	pool := x509.NewCertPool()
	pool.AddCert(ts.Certificate())

	h := newScriptHandler()
	c, err := Start(wsURL(ts), h, nil, &Options{
		TLSConfig: &tls.Config{RootCAs: pool},
	})
	require.NoError(t, err)

	require.NoError(t, c.SendText("over tls"))
	ev := waitEvent(t, h, "HandleFrame")
	assert.Equal(t, "over tls", ev.frame.Text())

	require.NoError(t, c.CloseNormal())
	waitDone(t, c)
	assert.NoError(t, c.Err())
}

func TestKeepalivePingsAgainstGorilla(t *testing.T) {
	pings := make(chan string, 8)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		conn.SetPingHandler(func(appData string) error {
			select {
			case pings <- appData:
			default:
			}
			return conn.WriteControl(gorillaws.PongMessage, []byte(appData), time.Now().Add(time.Second))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer ts.Close()

	h := newScriptHandler()
	c, err := Start(wsURL(ts), h, nil, &Options{PingInterval: 30 * time.Millisecond})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		select {
		case <-pings:
		case <-time.After(2 * time.Second):
			t.Fatal("keepalive ping never arrived")
		}
	}
	waitEvent(t, h, "HandlePong")

	require.NoError(t, c.CloseNormal())
	waitDone(t, c)
	assert.NoError(t, c.Err())
}

// rawConn gives a test full control over the server side of the wire.
type rawConn struct {
	conn net.Conn
	br   *bufio.Reader
	buf  []byte
}

func acceptRaw(ln net.Listener) (*rawConn, error) {
	conn, err := ln.Accept()
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(conn)
	req, err := http.ReadRequest(br)
	if err != nil {
		conn.Close()
		return nil, err
	}
	resp := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + wsproto.AcceptKey(req.Header.Get("Sec-WebSocket-Key")) + "\r\n\r\n"
	if _, err := conn.Write([]byte(resp)); err != nil {
		conn.Close()
		return nil, err
	}
	return &rawConn{conn: conn, br: br}, nil
}

func (rc *rawConn) send(f *wsproto.Frame) error {
	b, err := wsproto.EncodeFrame(f, false)
	if err != nil {
		return err
	}
	_, err = rc.conn.Write(b)
	return err
}

func (rc *rawConn) read() (*wsproto.Frame, error) {
	for {
		f, n, err := wsproto.DecodeFrame(rc.buf)
		if err != nil {
			return nil, err
		}
		if f != nil {
			rc.buf = rc.buf[n:]
			return f, nil
		}
		chunk := make([]byte, 4096)
		k, err := rc.br.Read(chunk)
		if k > 0 {
			rc.buf = append(rc.buf, chunk[:k]...)
		}
		if err != nil {
			return nil, err
		}
	}
}

// readUntilClose consumes client frames until a close frame arrives.
func (rc *rawConn) readUntilClose() error {
	for {
		f, err := rc.read()
		if err != nil {
			return err
		}
		if f.Opcode == wsproto.OpClose {
			return nil
		}
	}
}

func TestFragmentedMessageFromRawServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	serverErr := make(chan error, 1)
	go func() {
		rc, err := acceptRaw(ln)
		if err != nil {
			serverErr <- err
			return
		}
		defer rc.conn.Close()
		frames := []*wsproto.Frame{
			{Fin: false, Opcode: wsproto.OpText, Payload: []byte("ab")},
			{Fin: false, Opcode: wsproto.OpContinuation, Payload: []byte("cd")},
			{Fin: true, Opcode: wsproto.OpContinuation, Payload: []byte("ef")},
		}
		for _, f := range frames {
			if err := rc.send(f); err != nil {
				serverErr <- err
				return
			}
		}
		payload, _ := wsproto.EncodeClosePayload(wsproto.CloseNormalClosure, "")
		if err := rc.send(&wsproto.Frame{Fin: true, Opcode: wsproto.OpClose, Payload: payload}); err != nil {
			serverErr <- err
			return
		}
		serverErr <- rc.readUntilClose()
	}()

	h := newScriptHandler()
	c, err := Start("ws://"+ln.Addr().String(), h, nil, nil)
	require.NoError(t, err)

	ev := waitEvent(t, h, "HandleFrame")
	assert.Equal(t, "abcdef", ev.frame.Text(), "fragments must arrive as one frame")

	waitDone(t, c)
	assert.NoError(t, c.Err())
	require.NoError(t, <-serverErr)
}

func TestReconnectAgainstRawServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan string, 1)
	serverErr := make(chan error, 2)
	go func() {
		// First connection: close immediately with 1001.
		rc, err := acceptRaw(ln)
		if err != nil {
			serverErr <- err
			return
		}
		payload, _ := wsproto.EncodeClosePayload(wsproto.CloseGoingAway, "restarting")
		if err := rc.send(&wsproto.Frame{Fin: true, Opcode: wsproto.OpClose, Payload: payload}); err != nil {
			serverErr <- err
			return
		}
		if err := rc.readUntilClose(); err != nil {
			serverErr <- err
			return
		}
		rc.conn.Close()

		// Second connection: receive one text frame, then close
		// normally.
		rc2, err := acceptRaw(ln)
		if err != nil {
			serverErr <- err
			return
		}
		defer rc2.conn.Close()
		f, err := rc2.read()
		if err != nil {
			serverErr <- err
			return
		}
		received <- string(f.Payload)
		payload, _ = wsproto.EncodeClosePayload(wsproto.CloseNormalClosure, "done")
		if err := rc2.send(&wsproto.Frame{Fin: true, Opcode: wsproto.OpClose, Payload: payload}); err != nil {
			serverErr <- err
			return
		}
		serverErr <- rc2.readUntilClose()
	}()

	h := newScriptHandler()
	h.onDisconnect = func(reason CloseReason, state any) DisconnectResult {
		if reason.Code == CloseGoingAway {
			return Reconnect(state)
		}
		return Stop(state)
	}
	c, err := Start("ws://"+ln.Addr().String(), h, nil, nil)
	require.NoError(t, err)

	ev := waitEvent(t, h, "HandleDisconnect")
	assert.Equal(t, CloseGoingAway, ev.reason.Code)

	require.Eventually(t, func() bool {
		return c.Stats().Reconnects == 1
	}, 2*time.Second, 10*time.Millisecond, "client never reconnected")

	require.NoError(t, c.SendText("hello again"))
	select {
	case got := <-received:
		assert.Equal(t, "hello again", got)
	case <-time.After(2 * time.Second):
		t.Fatal("second connection never received the frame")
	}

	waitDone(t, c)
	assert.NoError(t, c.Err(), "final close was normal")
	assert.Equal(t, 1, h.counts()["Init"], "init must not re-run on reconnect")
	require.NoError(t, <-serverErr)
}

func TestHandshakeRejectedByServer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no websockets here", http.StatusForbidden)
	}))
	defer ts.Close()

	_, err := Start(wsURL(ts), newScriptHandler(), nil, nil)
	var hsErr *HandshakeError
	require.ErrorAs(t, err, &hsErr)
	assert.Equal(t, http.StatusForbidden, hsErr.StatusCode)
}

func TestDialFailure(t *testing.T) {
	// Reserve a port and close the listener so nothing is there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = Start("ws://"+addr, newScriptHandler(), nil, &Options{
		HandshakeTimeout: 2 * time.Second,
	})
	var connErr *ConnError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "open", connErr.Op)
}
