// Package wsclient manages client-side WebSocket connections.
//
// Each connection is owned by a single goroutine (the connection actor)
// that processes socket input and application commands from one FIFO
// mailbox, so handler callbacks never run concurrently and state handed
// from one callback to the next needs no locking.
//
// Key features:
//   - Synchronous connect: Start returns after the HTTP upgrade
//     handshake and the handler's Init have both succeeded
//   - Transparent fragmentation reassembly with strict RFC 6455
//     violation handling
//   - Full close-handshake coordination for both local and remote
//     closes, with a bounded wait for the peer
//   - Handler-driven reconnects that reuse the original URL and
//     options on a fresh connection
//   - Pluggable transport and frame codec for tests and tunneling
//
// Usage:
//
//	type echo struct {
//		wsclient.BaseHandler
//	}
//
//	func (echo) HandleFrame(f wsclient.Frame, state any) wsclient.Result {
//		fmt.Println(f.Text())
//		return wsclient.Continue(state)
//	}
//
//	c, err := wsclient.Start("wss://example.com/ws", echo{}, nil, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	c.SendText("hello")
//	<-c.Done()
//
// Callbacks run on the actor goroutine. They may call Cast, Notify,
// SendFrame and Close on their own client, but must not call State,
// which would wait on the very goroutine running the callback.
package wsclient
