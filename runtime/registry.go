// Package runtime handles event propagation between the embedded backend
// and its subscribers. It contains no business logic or domain rules.
package runtime

import (
	"chat-client/contract"
	"sync"
)

// Registry is the thread-safe directory of live subscriptions.
// The message feed is a single shared collection, so there is no notion of
// rooms here: every registered sink receives every snapshot.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]contract.SnapshotSink // map subscriber -> Sink
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]contract.SnapshotSink),
	}
}

// Sinks returns all active subscription channels.
func (r *Registry) Sinks() []contract.SnapshotSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]contract.SnapshotSink, 0, len(r.sessions))
	for _, sink := range r.sessions {
		sinks = append(sinks, sink)
	}
	return sinks
}

// Subscribe registers a subscriber's active connection.
func (r *Registry) Subscribe(subscriberID string, sink contract.SnapshotSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[subscriberID] = sink
}

// Unsubscribe removes a subscriber from the registry so no empty entries
// are left behind over time.
func (r *Registry) Unsubscribe(subscriberID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, subscriberID)
}

// Count reports the number of live subscriptions, mostly for diagnostics.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
