package journey

import "sync"

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// keyLocks serializes read-merge-write cycles per snapshot key within the process.
// It is shared by every Store so that independently built stores over the same
// key never interleave. Reference counting garbage collects unused entries.
var keyLocks = struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}{locks: make(map[string]*lockEntry)}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func acquire(key string) *lockEntry {
	keyLocks.mu.Lock()
	defer keyLocks.mu.Unlock()

	entry, exists := keyLocks.locks[key]
	if !exists {
		entry = &lockEntry{}
		keyLocks.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func release(key string) {
	keyLocks.mu.Lock()
	defer keyLocks.mu.Unlock()

	entry, exists := keyLocks.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(keyLocks.locks, key)
	}
}
