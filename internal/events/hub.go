package events

import (
	"sync"
	"time"
)

// Event types.
const (
	TypeStarting = "starting"
	TypeProgress = "progress"
	TypeComplete = "complete"
)

// Progress statuses carried by TypeProgress events.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusStopped = "stopped"
)

// Event represents one progress signal emitted by a dispatch loop.
//
// Publish must never block a dispatch loop: slow subscribers drop events.
type Event struct {
	Type       string    `json:"type"`
	SessionID  string    `json:"sessionId,omitempty"`
	CampaignID string    `json:"campaignId,omitempty"`
	Total      int       `json:"total,omitempty"`
	Current    int       `json:"current,omitempty"`
	LastNumber string    `json:"lastNumber,omitempty"`
	Status     string    `json:"status,omitempty"`
	Error      string    `json:"error,omitempty"`
	Success    int       `json:"success,omitempty"`
	Failed     int       `json:"failed,omitempty"`
	Time       time.Time `json:"time"`
}

// Hub is an in-memory fanout of dispatch progress events
type Hub struct {
	mu   sync.RWMutex
	subs map[uint64]chan Event
	seq  uint64
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		subs: make(map[uint64]chan Event),
	}
}

// Publish delivers an event to every subscriber without blocking.
// Subscribers with a full buffer miss the event.
func (h *Hub) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a buffered event channel. The returned function
// removes the subscription and closes the channel.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	h.seq++
	id := h.seq
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsubscribe
}
