// Package events fans claim changes out to live subscribers. Publishing
// never blocks: a subscriber whose buffer is full misses the event.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/kinganjia/backend/internal/logging"
	"github.com/kinganjia/backend/internal/timex"
)

type Type string

const (
	ClaimCreated Type = "claim.created"
	ClaimUpdated Type = "claim.updated"
	ClaimDeleted Type = "claim.deleted"
)

// Event describes one committed claim change. ClaimID is zero for a
// delete-all.
type Event struct {
	Type    Type            `json:"type"`
	ClaimID int64           `json:"claimId"`
	UserID  int64           `json:"userId,omitempty"`
	At      timex.Timestamp `json:"at"`
}

func NewEvent(t Type, claimID, userID int64, at time.Time) Event {
	return Event{Type: t, ClaimID: claimID, UserID: userID, At: timex.NewTimestamp(at)}
}

// Publisher is what services need from the hub.
type Publisher interface {
	Publish(e Event)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(Event) {}

const DefaultBuffer = 16

type Hub struct {
	log    logging.Logger
	buffer int

	mu   sync.RWMutex
	next int
	subs map[int]chan Event
}

func NewHub(buffer int, log logging.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		log:    log.With("module", "events"),
		buffer: buffer,
		subs:   make(map[int]chan Event),
	}
}

// Subscribe registers a listener. The returned cancel func unregisters it
// and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs {
		select {
		case ch <- e:
		default:
			h.log.Warn(context.Background(), "subscriber lagging, event dropped", "subscriber", id, "type", e.Type, "claim_id", e.ClaimID)
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
