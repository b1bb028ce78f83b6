// Package events carries store-changed notifications from the scheduler to
// whatever is presenting the coin list.
package events

import (
	"fmt"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"

	"meme-coin-tracker/internal/domain"
)

// TopicCoinsUpdated is published once per scan after the store has changed.
const TopicCoinsUpdated = "coins:updated"

// CoinsUpdated describes one store mutation.
type CoinsUpdated struct {
	Coin       domain.CoinRecord `json:"coin"`
	Count      int               `json:"count"`
	LastUpdate time.Time         `json:"lastUpdate"`
}

// Bus wraps an EventBus with typed publish/subscribe helpers.
// A single dispatcher is registered on the EventBus; subscribers are keyed
// by id so each unsubscribe removes exactly its own handler.
type Bus struct {
	bus EventBus.Bus

	mu       sync.RWMutex
	nextID   uint64
	handlers map[uint64]func(CoinsUpdated)
	order    []uint64
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	b := &Bus{
		bus:      EventBus.New(),
		handlers: make(map[uint64]func(CoinsUpdated)),
	}
	// Subscribe only fails for a non-func handler.
	if err := b.bus.Subscribe(TopicCoinsUpdated, b.dispatch); err != nil {
		panic(fmt.Sprintf("events: subscribe dispatcher: %v", err))
	}
	return b
}

// PublishCoinsUpdated notifies subscribers synchronously, in subscription order.
// Handlers must not block.
func (b *Bus) PublishCoinsUpdated(ev CoinsUpdated) {
	b.bus.Publish(TopicCoinsUpdated, ev)
}

// SubscribeCoinsUpdated registers fn and returns a function that removes it.
// The returned function is idempotent.
func (b *Bus) SubscribeCoinsUpdated(fn func(CoinsUpdated)) (func(), error) {
	if fn == nil {
		return nil, fmt.Errorf("subscribe %s: nil handler", TopicCoinsUpdated)
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers[id] = fn
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}, nil
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.handlers, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i:i], b.order[i+1:]...)
			break
		}
	}
}

// dispatch fans ev out to a snapshot of the current subscribers, so a
// handler may unsubscribe itself without deadlocking.
func (b *Bus) dispatch(ev CoinsUpdated) {
	b.mu.RLock()
	fns := make([]func(CoinsUpdated), 0, len(b.order))
	for _, id := range b.order {
		fns = append(fns, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
