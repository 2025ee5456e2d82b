// Package events fans device events out to SSE clients and the serial console.
package events

import (
	"strings"
	"sync"

	"github.com/micro-nova/an30259a/internal/models"
)

const subBufferSize = 8

// Kind classifies an event.
type Kind string

const (
	KindCommit  Kind = "commit"  // shadow image committed; State is current
	KindPattern Kind = "pattern" // named pattern triggered
	KindError   Kind = "error"   // bus transfer failed; Err holds the message
)

// Event is one notification delivered to subscribers.
type Event struct {
	Kind  Kind         `json:"kind"`
	State models.State `json:"state"`
	Err   string       `json:"err,omitempty"`
}

// ParseKinds splits a comma-separated kind list, ignoring unknown names.
func ParseKinds(s string) []Kind {
	var out []Kind
	for _, f := range strings.Split(s, ",") {
		switch k := Kind(strings.TrimSpace(f)); k {
		case KindCommit, KindPattern, KindError:
			out = append(out, k)
		}
	}
	return out
}

type subscriber struct {
	ch    chan Event
	kinds map[Kind]bool // nil: every kind
}

func (s subscriber) wants(k Kind) bool {
	return s.kinds == nil || s.kinds[k]
}

// Bus is a non-blocking publish-subscribe event bus.
// Subscribers that fall behind lose events rather than blocking the commit path.
type Bus struct {
	mu      sync.Mutex
	subs    map[string]subscriber
	dropped uint64
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]subscriber)}
}

// Subscribe registers id for the given kinds (all kinds when none are given)
// and returns its event channel. Subscribing an id that already exists
// closes the old channel. Call Unsubscribe when done.
func (b *Bus) Subscribe(id string, kinds ...Kind) <-chan Event {
	sub := subscriber{ch: make(chan Event, subBufferSize)}
	if len(kinds) > 0 {
		sub.kinds = make(map[Kind]bool, len(kinds))
		for _, k := range kinds {
			sub.kinds[k] = true
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if old, ok := b.subs[id]; ok {
		close(old.ch)
	}
	b.subs[id] = sub
	return sub.ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(sub.ch)
	}
}

// Publish delivers ev to every interested subscriber that has room for it.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		if !sub.wants(ev.Kind) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			b.dropped++
		}
	}
}

// SubscriberCount returns the current number of subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (b *Bus) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
