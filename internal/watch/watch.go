// Package watch is an in-process change-notification hub. Writers notify a
// topic after committing; readers subscribe and re-query on every signal.
// Signals carry no payload and coalesce, so a burst of writes wakes a
// subscriber at least once but not necessarily once per write.
package watch

import (
	"context"
	"sync"
)

type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe registers interest in the given topics. The returned channel
// receives a signal whenever any topic is notified and is closed when ctx is
// cancelled. Cancellation has no side effects beyond unregistering.
func (h *Hub) Subscribe(ctx context.Context, topics ...string) <-chan struct{} {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	for _, t := range topics {
		if h.subs[t] == nil {
			h.subs[t] = make(map[chan struct{}]struct{})
		}
		h.subs[t][ch] = struct{}{}
	}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		for _, t := range topics {
			delete(h.subs[t], ch)
			if len(h.subs[t]) == 0 {
				delete(h.subs, t)
			}
		}
		close(ch)
		h.mu.Unlock()
	}()

	return ch
}

// Notify wakes every subscriber of the given topics. Never blocks: a
// subscriber that already has a pending signal is left as-is.
func (h *Hub) Notify(topics ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range topics {
		for ch := range h.subs[t] {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}
