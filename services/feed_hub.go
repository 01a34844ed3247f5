// services/feed_hub.go - Live activity feed fan-out
package services

import (
	"sync"
	"time"
)

// Feed event types
const (
	FeedEchoCreated        = "echo_created"
	FeedEchoPlayed         = "echo_played"
	FeedAchievementGranted = "achievement_granted"
)

// FeedEvent is one activity item pushed to websocket subscribers.
type FeedEvent struct {
	Type        string    `json:"type"`
	EchoID      uint      `json:"echo_id,omitempty"`
	UserID      uint      `json:"user_id,omitempty"`
	Achievement string    `json:"achievement,omitempty"`
	At          time.Time `json:"at"`
}

// FeedHub fans events out to connected feed clients. Slow subscribers
// lose events rather than block the publisher.
type FeedHub struct {
	mu          sync.RWMutex
	subscribers map[chan FeedEvent]struct{}
}

func NewFeedHub() *FeedHub {
	return &FeedHub{subscribers: make(map[chan FeedEvent]struct{})}
}

// Subscribe registers a new feed client and returns its event channel.
func (h *FeedHub) Subscribe() chan FeedEvent {
	ch := make(chan FeedEvent, 16)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (h *FeedHub) Unsubscribe(ch chan FeedEvent) {
	h.mu.Lock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Broadcast delivers an event to every subscriber that has room.
func (h *FeedHub) Broadcast(event FeedEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount reports the number of connected feed clients.
func (h *FeedHub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
