// Package events provides the in-process publish/subscribe bus used to tell
// live observers that ingestion or CRUD state changed.
//
// Delivery is synchronous and unbuffered: observers registered at publish
// time receive the message in registration order, later observers never see
// it. Consumers treat a message as a signal to re-query current state.
package events

import "sync"

const (
	FetchCompleted   = "fetch.completed"
	FeedsUpdated     = "feeds.updated"
	ListsUpdated     = "lists.updated"
	ListItemsUpdated = "lists.items.updated"
	LogosRefreshed   = "logos.refreshed"
)

// Message is the tagged payload delivered to observers.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type Handler func(Message)

type Publisher interface {
	Publish(event string, data any)
}

type subscription struct {
	id      uint64
	handler Handler
}

type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription
}

var _ Publisher = (*Bus)(nil)

func NewBus() *Bus {
	return &Bus{}
}

// Publish delivers the message to every current observer before returning.
// Handlers run outside the bus lock, so a handler may subscribe or
// unsubscribe without deadlocking.
func (b *Bus) Publish(event string, data any) {
	if data == nil {
		data = map[string]any{}
	}
	msg := Message{Event: event, Data: data}

	b.mu.Lock()
	snapshot := make([]subscription, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, sub := range snapshot {
		sub.handler(msg)
	}
}

// Subscribe registers handler and returns a disposer that removes exactly
// this registration. Calling the disposer more than once is a no-op.
func (b *Bus) Subscribe(handler Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}
