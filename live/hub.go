// Package live is the in-process change feed behind the admin's live
// results view: vote writes publish to a poll's topic, result streams
// subscribe to it.
package live

import "sync"

type Hub struct {
	mu   sync.Mutex
	subs map[int]map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]map[chan struct{}]struct{})}
}

// Subscribe registers interest in a poll and returns a notification
// channel plus the matching unsubscribe. Notifications coalesce: a
// slow reader sees at least one tick for any burst of publishes, not
// one tick each. The unsubscribe must be called when the subscriber
// goes away, or the registration leaks.
func (h *Hub) Subscribe(pollId int) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[pollId] == nil {
		h.subs[pollId] = make(map[chan struct{}]struct{})
	}
	h.subs[pollId][ch] = struct{}{}

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		delete(h.subs[pollId], ch)
		if len(h.subs[pollId]) == 0 {
			delete(h.subs, pollId)
		}
	}
	return ch, unsubscribe
}

// Publish wakes every subscriber of the poll. Never blocks.
func (h *Hub) Publish(pollId int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[pollId] {
		select {
		case ch <- struct{}{}:
		default:
			// a tick is already pending
		}
	}
}
