package registry

import (
	"sync"
	"time"

	"github.com/tidvatten/tidvatten/interfaces"
)

// KeepersRegistry is the process-wide cache of known keepers.
//
// Any number of goroutines may read concurrently. Replace installs a new
// map under the write lock, so every reader sees either the previous or the
// next complete set. Installed maps are never modified afterwards.
type KeepersRegistry struct {
	mu        sync.RWMutex
	keepers   interfaces.Keepers
	updatedAt time.Time
}

// NewKeepersRegistry returns an empty registry.
func NewKeepersRegistry() *KeepersRegistry {
	return &KeepersRegistry{
		keepers: interfaces.Keepers{},
	}
}

// Read returns a copy of the current set of keepers. The caller owns the
// copy; changes to it are not visible to the registry or other readers.
func (r *KeepersRegistry) Read() interfaces.Keepers {
	r.mu.RLock()
	current := r.keepers
	r.mu.RUnlock()
	// Installed maps are never written, so copying outside the lock is safe.
	return current.Clone()
}

// Replace discards the current contents and installs a copy of keepers.
func (r *KeepersRegistry) Replace(keepers interfaces.Keepers) {
	next := keepers.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.keepers = next
	r.updatedAt = time.Now()
}

// Get looks up a single keeper.
func (r *KeepersRegistry) Get(id interfaces.KeeperID) (interfaces.Keeper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keeper, ok := r.keepers[id]
	return keeper, ok
}

// Len returns the number of known keepers.
func (r *KeepersRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keepers)
}

// UpdatedAt returns the time of the last Replace, or the zero time if the
// registry has never been filled.
func (r *KeepersRegistry) UpdatedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.updatedAt
}

var _ interfaces.KeeperRegistry = (*KeepersRegistry)(nil)
