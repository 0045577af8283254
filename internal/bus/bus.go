// Package bus provides the async event bus between the chat session core and
// its observers (terminal UI, local archive).
package bus

import (
	"context"
	"sync"
	"time"
)

// EventType identifies what a session event describes.
type EventType string

const (
	// EventStateChanged signals a connection state transition.
	EventStateChanged EventType = "state_changed"
	// EventTimelineUpdated signals that the message timeline was rewritten
	// or appended to, whichever writer acted last.
	EventTimelineUpdated EventType = "timeline_updated"
	// EventConversationMinted signals that the backend assigned a
	// conversation id to a session that had none.
	EventConversationMinted EventType = "conversation_minted"
)

// Event is a single session notification.
type Event struct {
	Type           EventType `json:"type"`
	State          string    `json:"state,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Bus decouples the session core from its observers. Publishing never blocks
// the session: events are advisory and are dropped when the buffer is full.
type Bus struct {
	events chan *Event
	subs   []func(*Event)
	mu     sync.RWMutex
}

// New creates an event bus.
func New() *Bus {
	return &Bus{
		events: make(chan *Event, 100),
	}
}

// Publish queues an event for dispatch. Drops the event if the buffer is
// saturated; observers are best-effort, the timeline itself is the state.
func (b *Bus) Publish(evt *Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	select {
	case b.events <- evt:
	default:
	}
}

// Subscribe registers a callback for all events.
func (b *Bus) Subscribe(callback func(*Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, callback)
}

// Dispatch runs the delivery loop. This should be run as a goroutine; it
// blocks until the context is cancelled.
func (b *Bus) Dispatch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt := <-b.events:
			b.mu.RLock()
			subs := b.subs
			b.mu.RUnlock()

			for _, cb := range subs {
				cb(evt)
			}
		}
	}
}

// Size returns the number of pending events.
func (b *Bus) Size() int {
	return len(b.events)
}
