package charges

import (
	"sync"
	"time"
)

// Registry owns one Store per workstation key. A store is created when the
// workstation selects a job, replaced on job switch, and purged after sitting
// idle past the TTL.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
	ttl     time.Duration
	now     func() time.Time
}

type registryEntry struct {
	store      *Store
	lastAccess time.Time
}

// NewRegistry constructs a registry with the given idle TTL.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Select installs the store for the workstation, discarding any prior one.
func (r *Registry) Select(station string, store *Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[station] = &registryEntry{store: store, lastAccess: r.now()}
}

// Get returns the workstation's store and refreshes its idle timer.
func (r *Registry) Get(station string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[station]
	if !ok {
		return nil, false
	}
	entry.lastAccess = r.now()
	return entry.store, true
}

// Drop removes the workstation's store, if any.
func (r *Registry) Drop(station string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, station)
}

// PurgeIdle removes stores idle past the TTL and reports how many went.
func (r *Registry) PurgeIdle() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)
	purged := 0
	for station, entry := range r.entries {
		if entry.lastAccess.Before(cutoff) {
			delete(r.entries, station)
			purged++
		}
	}
	return purged
}

// Len reports the number of active workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
