package services

import "sync"

// keyedLock serializes critical sections per event id. The capacity check and
// the subsequent status write must not interleave for the same event, or two
// near-limit callers could both observe remaining capacity.
type keyedLock struct {
	mu    sync.Mutex
	locks map[int64]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLock() *keyedLock {
	return &keyedLock{locks: make(map[int64]*lockEntry)}
}

// Lock acquires the lock for key and returns the matching unlock func.
func (k *keyedLock) Lock(key int64) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
