package dispatch

import "sync"

// subscriberBufferSize is the channel buffer for each event subscriber.
// Events are dropped if a subscriber falls this far behind.
const subscriberBufferSize = 64

// Event is one pipeline progress notification. For sessions Tag is the agent
// role and Msg the log line; for jobs Tag is the phase status and Msg the
// progress value.
type Event struct {
	Tag string `json:"tag"`
	Msg string `json:"msg"`
}

// Broker fans pipeline events out to per-entity subscribers. It is safe for
// concurrent use.
//
// Closed topics are retained as markers so that late subscribers (those
// subscribing after a pipeline finishes) receive a closed channel instead of
// blocking forever. Each marker is a few bytes, which is acceptable for the
// expected entity volume.
type Broker struct {
	mu     sync.Mutex
	topics map[string]*topic
}

type topic struct {
	subs   map[int]chan Event
	nextID int
	closed bool
}

// NewBroker creates an empty event broker.
func NewBroker() *Broker {
	return &Broker{topics: make(map[string]*topic)}
}

// Subscribe returns a channel receiving events for the given entity and an
// unsubscribe function. If the entity's pipeline has already finished, the
// returned channel is immediately closed.
func (b *Broker) Subscribe(id string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[id]
	if !ok {
		t = &topic{subs: make(map[int]chan Event)}
		b.topics[id] = t
	}

	ch := make(chan Event, subscriberBufferSize)
	if t.closed {
		close(ch)
		return ch, func() {}
	}

	subID := t.nextID
	t.nextID++
	t.subs[subID] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(t.subs, subID)
	}
}

// Publish sends an event to all subscribers of the given entity. Events are
// dropped for subscribers whose buffers are full.
func (b *Broker) Publish(id string, ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[id]
	if !ok || t.closed {
		return
	}

	for _, ch := range t.subs {
		select {
		case ch <- ev:
		default:
			// Drop for slow subscribers to avoid blocking the pipeline.
		}
	}
}

// Close signals that no more events will be published for the given entity.
// All subscriber channels are closed and future Subscribe calls return a
// closed channel until the topic is reopened by a redispatch.
func (b *Broker) Close(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[id]
	if !ok {
		// Closed marker for late subscribers.
		b.topics[id] = &topic{subs: make(map[int]chan Event), closed: true}
		return
	}

	t.closed = true
	for subID, ch := range t.subs {
		close(ch)
		delete(t.subs, subID)
	}
}

// Reopen clears the closed marker for an entity so a subsequent run can
// publish again. Subscribers from the previous run already hold closed
// channels; new subscribers attach normally. Open or unknown topics are
// unaffected.
func (b *Broker) Reopen(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.topics[id]; ok {
		t.closed = false
	}
}
