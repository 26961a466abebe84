// Package events provides a per-pool broker for live dispatch-completion
// events, feeding the SSE endpoint. Delivery is best effort: events are
// dropped for subscribers that fall behind, never buffered unboundedly.
package events

import (
	"sync"

	"github.com/haldorsen/breakwater/internal/model"
)

// subscriberBufferSize is the channel buffer for each subscriber. Events are
// dropped if a subscriber falls this far behind.
const subscriberBufferSize = 64

// Firehose is the pseudo pool key that receives every event regardless of
// which pool produced it.
const Firehose = ""

// Broker fans dispatch events out to subscribers by pool key. It is safe for
// concurrent use. Topics are never closed: pools live for the process
// lifetime, so there is no terminal state to signal.
type Broker struct {
	mu     sync.Mutex
	topics map[string]*topic
}

type topic struct {
	subs   map[int]chan model.Dispatch
	nextID int
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{
		topics: make(map[string]*topic),
	}
}

// Subscribe returns a channel that receives dispatch events for the given
// pool key (or every pool for Firehose) and an unsubscribe function.
func (b *Broker) Subscribe(poolKey string) (<-chan model.Dispatch, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[poolKey]
	if !ok {
		t = &topic{subs: make(map[int]chan model.Dispatch)}
		b.topics[poolKey] = t
	}

	ch := make(chan model.Dispatch, subscriberBufferSize)
	id := t.nextID
	t.nextID++
	t.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(t.subs, id)
	}
}

// Publish sends a dispatch event to subscribers of its pool key and to the
// firehose. Events are dropped for subscribers whose buffers are full.
func (b *Broker) Publish(d model.Dispatch) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.publishLocked(d.PoolKey, d)
	if d.PoolKey != Firehose {
		b.publishLocked(Firehose, d)
	}
}

func (b *Broker) publishLocked(key string, d model.Dispatch) {
	t, ok := b.topics[key]
	if !ok {
		return
	}
	for _, ch := range t.subs {
		select {
		case ch <- d:
		default:
			// Drop for slow subscribers to keep publication non-blocking.
		}
	}
}
