package stripe

import (
	"sync"
)

// LockManager manages per-session locks to prevent concurrent webhook
// processing for the same checkout session while allowing parallel
// processing for different sessions
type LockManager struct {
	locks sync.Map // map[string]*sync.Mutex
}

// NewLockManager creates a new lock manager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// LockSession acquires a lock for the given checkout session ID
// Returns a function that must be called to release the lock
func (lm *LockManager) LockSession(sessionID string) func() {
	// Get or create a mutex for this session
	lockInterface, _ := lm.locks.LoadOrStore(sessionID, &sync.Mutex{})
	lock, ok := lockInterface.(*sync.Mutex)
	if !ok {
		// This should never happen if we only store *sync.Mutex values
		panic("unexpected type in lock manager")
	}

	// Acquire the lock
	lock.Lock()

	// Return unlock function
	return func() {
		lock.Unlock()
	}
}

// CleanupLocks removes unused locks (optional optimization)
// This can be called periodically to prevent memory leaks from old sessions
func (lm *LockManager) CleanupLocks() {
	lm.locks.Range(func(key, value any) bool {
		lock, ok := value.(*sync.Mutex)
		if !ok {
			// This should never happen if we only store *sync.Mutex values
			return true
		}
		// Try to acquire the lock without blocking
		if lock.TryLock() {
			// If we can acquire it, it's not in use, so we can remove it
			lock.Unlock()
			lm.locks.Delete(key)
		}
		return true
	})
}
