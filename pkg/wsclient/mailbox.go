package wsclient

import (
	"sync"

	"github.com/eapache/queue"
)

// mailbox is the actor's unbounded FIFO inbox. Producers never block:
// socket input, casts and sends must not be able to deadlock against a
// busy actor. Only the actor goroutine consumes.
type mailbox struct {
	mu   sync.Mutex
	q    *queue.Queue
	wake chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{
		q:    queue.New(),
		wake: make(chan struct{}, 1),
	}
}

// put appends msg and wakes the consumer if it is blocked in take.
func (m *mailbox) put(msg any) {
	m.mu.Lock()
	m.q.Add(msg)
	m.mu.Unlock()
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// take removes and returns the oldest message, blocking until one is
// available. Single consumer only.
func (m *mailbox) take() any {
	for {
		m.mu.Lock()
		if m.q.Length() > 0 {
			msg := m.q.Remove()
			m.mu.Unlock()
			return msg
		}
		m.mu.Unlock()
		<-m.wake
	}
}

// len reports the number of queued messages.
func (m *mailbox) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.q.Length()
}
