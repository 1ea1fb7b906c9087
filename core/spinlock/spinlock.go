// Package spinlock implements a busy-waiting mutual exclusion lock on a
// single lock word.
//
// Acquisition issues compare-and-swap from unlocked to locked until it
// succeeds, the Go rendition of a load-reserved/store-conditional loop: the
// store only takes effect if the word still holds the value that was
// observed. There is no backoff, no yielding and no fairness; a contender
// spins until it wins, and starvation is possible.
package spinlock

import (
	"sync/atomic"
)

const (
	unlocked uint32 = 0
	locked   uint32 = 1
)

// Spinlock is a lock word. The zero value is unlocked. A Spinlock must not
// be copied after first use.
type Spinlock struct {
	state atomic.Uint32
}

// TryAcquire makes a single attempt to move the lock word from unlocked to
// locked and reports whether it succeeded.
func (l *Spinlock) TryAcquire() bool {
	return l.state.CompareAndSwap(unlocked, locked)
}

// Acquire spins until the caller holds the lock and returns the number of
// failed attempts. It cannot be cancelled: if the holder never releases,
// Acquire never returns.
func (l *Spinlock) Acquire() int {
	retries := 0
	for !l.TryAcquire() {
		retries++
	}
	return retries
}

// Release unlocks l with a single store. Only the current holder may call
// Release; releasing a lock that is not held, including a second release,
// is a programmer error and panics. The store is a swap only so that such
// misuse can be detected; the holder is unique and needs no read to unlock.
func (l *Spinlock) Release() {
	if l.state.Swap(unlocked) != locked {
		panic("spinlock: release of unlocked spinlock")
	}
}

// Locked reports whether the lock word is currently set. The answer may be
// stale by the time the caller acts on it.
func (l *Spinlock) Locked() bool {
	return l.state.Load() == locked
}
