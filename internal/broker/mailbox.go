package broker

import (
	"errors"
	"sync"
	"time"
)

// ErrStreamActive is returned when a session attempts to attach a second
// consumer while one is already draining its mailbox.
var ErrStreamActive = errors.New("broker: stream already active for session")

// Mailbox is a session's ordered output queue. Results are enqueued by the
// operator as executions complete and drained by at most one attached
// consumer. When the queue is full the oldest unread result is dropped.
type Mailbox struct {
	mu       sync.Mutex
	capacity int
	items    []Result
	dropped  uint64
	attached bool
	lastUsed time.Time
	notify   chan struct{}
	now      func() time.Time
}

func newMailbox(capacity int, now func() time.Time) *Mailbox {
	if capacity <= 0 {
		capacity = defaultMailboxCap
	}
	if now == nil {
		now = time.Now
	}
	return &Mailbox{
		capacity: capacity,
		notify:   make(chan struct{}),
		now:      now,
		lastUsed: now(),
	}
}

// enqueue appends res, dropping the oldest unread result when full. It never
// blocks, which lets the operator fan out under its own lock while keeping
// completion order per session.
func (b *Mailbox) enqueue(res Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) >= b.capacity {
		over := len(b.items) - b.capacity + 1
		b.items = append(b.items[:0], b.items[over:]...)
		b.dropped += uint64(over)
	}
	b.items = append(b.items, res)
	b.lastUsed = b.now()
	// wake waiters
	close(b.notify)
	b.notify = make(chan struct{})
}

// takeAll removes and returns all queued results in arrival order.
func (b *Mailbox) takeAll() []Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := b.items
	b.items = nil
	if len(items) > 0 {
		b.lastUsed = b.now()
	}
	return items
}

// wait blocks until a result is available or timeout elapses. It returns true
// when results are ready, false on timeout. A non-positive timeout waits
// forever.
func (b *Mailbox) wait(timeout time.Duration) bool {
	b.mu.Lock()
	if len(b.items) > 0 {
		b.mu.Unlock()
		return true
	}
	ch := b.notify
	b.mu.Unlock()
	if timeout <= 0 {
		<-ch
		return true
	}
	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}

// attach claims the mailbox's single consumer slot.
func (b *Mailbox) attach() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.attached {
		return ErrStreamActive
	}
	b.attached = true
	b.lastUsed = b.now()
	return nil
}

// release frees the consumer slot so the session can attach again.
func (b *Mailbox) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attached = false
	b.lastUsed = b.now()
}

// Dropped returns how many results were discarded due to backpressure.
func (b *Mailbox) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// idleSince reports whether the mailbox is detached, empty, and untouched
// since before cutoff.
func (b *Mailbox) idleSince(cutoff time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.attached && len(b.items) == 0 && b.lastUsed.Before(cutoff)
}
