package domain

import "sync"

const defaultQueueSize = 64

// Subscription is one live consumer of a room's event stream. Events is
// closed when the room reaches its terminal event, when the subscriber is
// replaced or dropped, or when the room is evicted.
type Subscription struct {
	events chan Event
	token  string
}

func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Bus is the per-room broadcast channel. Publishes are fanned out to every
// live subscription in publish order. Each subscription has a bounded queue;
// a subscriber that cannot keep up is dropped rather than blocking the
// publisher (and with it the room's mutations).
type Bus struct {
	mu        sync.Mutex
	subs      map[*Subscription]struct{}
	queueSize int
	closed    bool
	onDrop    func()
}

func NewBus(queueSize int, onDrop func()) *Bus {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Bus{
		subs:      make(map[*Subscription]struct{}),
		queueSize: queueSize,
		onDrop:    onDrop,
	}
}

// Subscribe registers a new consumer. On a closed bus the returned
// subscription's channel is already closed, so the caller observes an
// immediate end-of-stream instead of an error.
func (b *Bus) Subscribe(token string) *Subscription {
	sub := &Subscription{
		events: make(chan Event, b.queueSize),
		token:  token,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(sub.events)
		return sub
	}

	b.subs[sub] = struct{}{}
	return sub
}

// Unsubscribe releases a subscription. Idempotent.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub.events)
	}
}

// Publish delivers ev to every live subscription without ever blocking.
// Subscribers with a full queue are disconnected.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.broadcastLocked(ev)
}

// CloseWith delivers the terminal event, then closes every subscription.
// Further publishes and subscriptions observe a closed bus.
func (b *Bus) CloseWith(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.broadcastLocked(ev)
	b.closeLocked()
}

// Close tears the bus down without a terminal event, e.g. on eviction.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closeLocked()
}

// Replace sends a disconnect notice to the subscriber currently registered
// for token, if any, and removes it. Used when a new stream takes over an
// existing member's connection.
func (b *Bus) Replace(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs {
		if sub.token == token {
			select {
			case sub.events <- NewDisconnected("replaced"):
			default:
			}
			delete(b.subs, sub)
			close(sub.events)
		}
	}
}

func (b *Bus) broadcastLocked(ev Event) {
	for sub := range b.subs {
		select {
		case sub.events <- ev:
		default:
			// Slow consumer: drop the connection, never the room.
			delete(b.subs, sub)
			close(sub.events)
			if b.onDrop != nil {
				b.onDrop()
			}
		}
	}
}

func (b *Bus) closeLocked() {
	b.closed = true
	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub.events)
	}
}

func (b *Bus) subscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
