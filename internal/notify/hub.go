// Package notify provides an in-process broadcast hub the stores use to
// push "collection changed" signals to live consumers (the SSE endpoint).
// The contract is at-least-once delivery of the latest state: subscribers
// get a nudge per committed mutation and re-read the collection themselves.
package notify

import "sync"

// Topic names one live-updating collection.
type Topic string

const (
	TopicMachines Topic = "machines"
	TopicSessions Topic = "sessions"
	TopicLogs     Topic = "logs"
	TopicRotation Topic = "rotation"
)

// Hub fans out change signals per topic. Publish never blocks: a subscriber
// that already has a pending signal is skipped, which is safe because a
// signal only means "re-read", not "one event happened".
type Hub struct {
	mu   sync.Mutex
	subs map[Topic]map[chan Topic]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[Topic]map[chan Topic]struct{})}
}

// Subscribe registers a listener for the given topics and returns its
// signal channel plus a cancel func. The channel is buffered so a slow
// reader coalesces bursts instead of blocking writers.
func (h *Hub) Subscribe(topics ...Topic) (<-chan Topic, func()) {
	ch := make(chan Topic, len(topics)+1)

	h.mu.Lock()
	for _, t := range topics {
		if h.subs[t] == nil {
			h.subs[t] = make(map[chan Topic]struct{})
		}
		h.subs[t][ch] = struct{}{}
	}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		for _, t := range topics {
			delete(h.subs[t], ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish signals every subscriber of the topic.
func (h *Hub) Publish(topic Topic) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[topic] {
		select {
		case ch <- topic:
		default:
		}
	}
}
