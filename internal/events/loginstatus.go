// Package events provides channel-based fan-out of session events.
package events

import "sync"

// LoginStatusBroadcaster fans out login-status changes (true when a session
// is authenticated) to all subscribers via buffered channels. This signal is
// how presentation code detects login, logout and forced logout.
type LoginStatusBroadcaster struct {
	mu     sync.RWMutex
	subs   map[chan bool]struct{}
	buffer int
}

// NewLoginStatusBroadcaster creates a broadcaster with the given
// per-subscriber buffer.
func NewLoginStatusBroadcaster(buffer int) *LoginStatusBroadcaster {
	if buffer < 1 {
		buffer = 16
	}
	return &LoginStatusBroadcaster{
		subs:   make(map[chan bool]struct{}),
		buffer: buffer,
	}
}

// Publish sends the status to all subscribers, dropping if a reader is slow.
func (b *LoginStatusBroadcaster) Publish(loggedIn bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- loggedIn:
		default:
			// drop slow consumer
		}
	}
}

// Subscribe returns a channel that receives status changes until
// Unsubscribe is called.
func (b *LoginStatusBroadcaster) Subscribe() chan bool {
	ch := make(chan bool, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel and closes it.
func (b *LoginStatusBroadcaster) Unsubscribe(ch chan bool) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}
