package chat

import (
	"sync"
	"time"

	"github.com/GabrielG71/online-chat/logger"
)

// entry tracks one user's live connection.
type entry struct {
	sink        EventSink
	connectedAt time.Time
}

// Registry is the process-wide table mapping a user id to at most one live
// sink. One instance is constructed at startup and injected into the server;
// it is torn down at shutdown by CloseAll.
//
// Concurrency: every mutation and the fan-out lookup serialize through the
// one mutex around the map. Sink closes and writes happen outside the lock
// so a slow connection never stalls unrelated registry operations.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*entry)}
}

// Register installs sink as the sole entry for userID. An existing entry is
// replaced and its sink closed (last-connection-wins), outside the lock.
func (r *Registry) Register(userID string, sink EventSink) {
	if userID == "" || sink == nil {
		return
	}
	r.mu.Lock()
	old := r.conns[userID]
	r.conns[userID] = &entry{sink: sink, connectedAt: time.Now()}
	total := len(r.conns)
	r.mu.Unlock()

	if old != nil {
		_ = old.sink.Close()
		logger.Infof("[registry] replaced live stream user=%s total=%d", userID, total)
	} else {
		logger.Infof("[registry] added user=%s total=%d", userID, total)
	}
}

// Unregister closes and removes the entry for userID if present.
// Idempotent: absent keys and repeated calls are no-ops.
func (r *Registry) Unregister(userID string) {
	r.mu.Lock()
	e := r.conns[userID]
	delete(r.conns, userID)
	total := len(r.conns)
	r.mu.Unlock()

	if e != nil {
		_ = e.sink.Close()
		logger.Infof("[registry] removed user=%s total=%d", userID, total)
	}
}

// UnregisterSink removes the entry for userID only while it still holds the
// given sink. Lifecycle teardown and dispatcher eviction use this so a
// stream that was already superseded by a reconnect never tears down its
// replacement.
func (r *Registry) UnregisterSink(userID string, sink EventSink) {
	r.mu.Lock()
	e := r.conns[userID]
	if e == nil || e.sink != sink {
		r.mu.Unlock()
		return
	}
	delete(r.conns, userID)
	total := len(r.conns)
	r.mu.Unlock()

	_ = e.sink.Close()
	logger.Infof("[registry] removed user=%s total=%d", userID, total)
}

// Lookup returns the live sink for userID. Read-only.
func (r *Registry) Lookup(userID string) (EventSink, bool) {
	r.mu.RLock()
	e, ok := r.conns[userID]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return e.sink, true
}

// Size returns the number of live entries.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// CloseAll closes every sink and empties the table. Shutdown path.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	entries := make([]*entry, 0, len(r.conns))
	for _, e := range r.conns {
		entries = append(entries, e)
	}
	r.conns = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		_ = e.sink.Close()
	}
}
