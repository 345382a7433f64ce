// Package notify distributes clip library change events to subscribers.
package notify

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// EventType identifies what changed in the library.
type EventType int

const (
	EventAdded EventType = iota
	EventRenamed
	EventRemoved
	EventMoved
	EventTextChanged
	EventReloaded
	EventSaved
)

// String returns the lowercase event name.
func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventRenamed:
		return "renamed"
	case EventRemoved:
		return "removed"
	case EventMoved:
		return "moved"
	case EventTextChanged:
		return "text-changed"
	case EventReloaded:
		return "reloaded"
	case EventSaved:
		return "saved"
	default:
		return "unknown"
	}
}

// Event describes one change. FullName is empty for library-wide events
// such as reloads and saves.
type Event struct {
	Type        EventType
	FullName    string
	OldFullName string
	Count       int
}

// Subscriber receives events whose full name starts with Prefix.
// An empty prefix receives everything.
type Subscriber struct {
	ID     string
	Prefix string
	Events chan Event
}

// Notifier fans events out to subscribers without ever blocking the sender.
type Notifier struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	closed      bool
}

// New creates a Notifier.
func New() *Notifier {
	return &Notifier{subscribers: make(map[string]*Subscriber)}
}

// Subscribe registers a subscriber for events under prefix.
// It returns nil once the notifier is closed.
func (n *Notifier) Subscribe(prefix string) *Subscriber {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}

	sub := &Subscriber{
		ID:     uuid.New().String(),
		Prefix: prefix,
		Events: make(chan Event, 100),
	}
	n.subscribers[sub.ID] = sub
	return sub
}

// Unsubscribe removes a subscriber and closes its channel.
func (n *Notifier) Unsubscribe(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if sub, ok := n.subscribers[id]; ok {
		close(sub.Events)
		delete(n.subscribers, id)
	}
}

// Notify delivers ev to every matching subscriber. Full channels drop the event.
func (n *Notifier) Notify(ev Event) {
	if n == nil {
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return
	}

	for _, sub := range n.subscribers {
		if !matches(sub, ev) {
			continue
		}
		select {
		case sub.Events <- ev:
		default:
		}
	}
}

func matches(sub *Subscriber, ev Event) bool {
	if sub.Prefix == "" || ev.FullName == "" {
		return true
	}
	return strings.HasPrefix(ev.FullName, sub.Prefix) ||
		(ev.OldFullName != "" && strings.HasPrefix(ev.OldFullName, sub.Prefix))
}

// Close closes every subscription. Later calls to Notify are ignored.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	for _, sub := range n.subscribers {
		close(sub.Events)
	}
	n.subscribers = make(map[string]*Subscriber)
}

// SubscriberCount returns the number of active subscribers.
func (n *Notifier) SubscriberCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscribers)
}
