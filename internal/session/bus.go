package session

import "sync"

// Invalidation announces that a session was forcibly cleared, typically after
// the records API rejected its token. Transport code publishes; whoever owns
// navigation subscribes. Keeps HTTP plumbing out of routing decisions.
type Invalidation struct {
	SessionID string
	Reason    string
}

// InvalidationBus fans invalidation events out to subscribers in-process.
type InvalidationBus struct {
	mu   sync.RWMutex
	subs []chan Invalidation
}

// NewInvalidationBus creates an empty bus.
func NewInvalidationBus() *InvalidationBus {
	return &InvalidationBus{}
}

// Subscribe returns a channel receiving future invalidations. Slow consumers
// drop events rather than block publishers.
func (b *InvalidationBus) Subscribe() <-chan Invalidation {
	ch := make(chan Invalidation, 16)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers the event to all subscribers without blocking.
func (b *InvalidationBus) Publish(ev Invalidation) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
