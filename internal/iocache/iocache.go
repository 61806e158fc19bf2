// Package iocache is for caching I/O calls and persisting generation runs.
package iocache

import (
	"sync"

	"github.com/taigaflow/taigaflow/internal/contract"
)

// CacheStoreManager manages the event cache and snapshot store instances.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	events       contract.CacheStore
	snapshots    contract.SnapshotStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetEventStore returns the event CacheStore.
func (mgr *CacheStoreManager) GetEventStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.events
}

// GetSnapshotStore returns the SnapshotStore.
func (mgr *CacheStoreManager) GetSnapshotStore() contract.SnapshotStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.snapshots
}
