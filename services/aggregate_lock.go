package services

import "sync"

// aggregateLock serialises mutations per convert aggregate. Every write
// path that touches a convert's stage, activities, snapshots, alerts or
// calls takes the convert's lock first; reads run lock-free against the
// last committed state.
type aggregateLock struct {
	locks sync.Map // convert id -> *sync.Mutex
}

var convertLocks aggregateLock

// Lock acquires the mutex for a convert id, creating it on first use
func (l *aggregateLock) Lock(convertID uint) func() {
	v, _ := l.locks.LoadOrStore(convertID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
