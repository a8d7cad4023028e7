package broker

import (
	"sync"
	"time"
)

// Ledger tracks, per key, when the last execution completed and what it
// produced. Entries are written only when an execution finishes — success and
// failure alike — and are consulted to decide whether a new submission falls
// inside the cooldown window.
type Ledger struct {
	mu       sync.Mutex
	last     map[Key]time.Time
	retained map[Key]Result
	now      func() time.Time
}

// NewLedger creates an empty ledger. now defaults to time.Now.
func NewLedger(now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		last:     make(map[Key]time.Time),
		retained: make(map[Key]Result),
		now:      now,
	}
}

// Ready reports whether key is outside its cooldown window for the given
// interval. Keys that never executed are always ready.
func (l *Ledger) Ready(key Key, interval time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	at, ok := l.last[key]
	if !ok {
		return true
	}
	return l.now().Sub(at) >= interval
}

// Touch records that an execution of key completed now and retains its
// result for replay.
func (l *Ledger) Touch(key Key, res Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last[key] = l.now()
	l.retained[key] = res
}

// Retained returns the last completed result for key, if any.
func (l *Ledger) Retained(key Key) (Result, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	res, ok := l.retained[key]
	return res, ok
}

// Len returns the number of tracked keys.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.last)
}

// Prune drops entries whose last execution is older than maxAge and returns
// how many were removed. Keys still inside a plausible cooldown should be
// kept; callers pass a maxAge well above the operator interval.
func (l *Ledger) Prune(maxAge time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-maxAge)
	removed := 0
	for k, at := range l.last {
		if at.Before(cutoff) {
			delete(l.last, k)
			delete(l.retained, k)
			removed++
		}
	}
	return removed
}
