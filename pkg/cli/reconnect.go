package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/wirecat/wirecat/pkg/wsclient"
)

const (
	initialReconnectDelay = 1 * time.Second
	maxReconnectDelay     = 30 * time.Second
)

// reconnectPolicy decides what HandleDisconnect does after the server
// closes the connection: up to max attempts with exponential backoff.
// Backoff is a CLI concern; the library rebootstraps immediately.
type reconnectPolicy struct {
	max      int
	attempts int
	delay    time.Duration
}

func newReconnectPolicy(max int) *reconnectPolicy {
	return &reconnectPolicy{max: max, delay: initialReconnectDelay}
}

// next runs inside the actor's HandleDisconnect, so sleeping here
// delays the rebootstrap without blocking any caller.
func (p *reconnectPolicy) next(reason wsclient.CloseReason, state any) wsclient.DisconnectResult {
	if p.max <= 0 || reason.Origin != wsclient.OriginRemote {
		return wsclient.Stop(state)
	}
	if p.attempts >= p.max {
		fmt.Fprintf(os.Stderr, "Giving up after %d reconnect attempts\n", p.attempts)
		return wsclient.Stop(state)
	}
	p.attempts++
	fmt.Fprintf(os.Stderr, "Connection closed by server (%s), reconnecting in %s (attempt %d/%d)...\n",
		reason, p.delay, p.attempts, p.max)
	time.Sleep(p.delay)
	p.delay *= 2
	if p.delay > maxReconnectDelay {
		p.delay = maxReconnectDelay
	}
	return wsclient.Reconnect(state)
}

// reset marks the session healthy again. Called when a frame arrives,
// so only consecutive failed stretches count against max.
func (p *reconnectPolicy) reset() {
	p.attempts = 0
	p.delay = initialReconnectDelay
}
