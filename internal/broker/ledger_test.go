package broker

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestLedgerReadyAndTouch(t *testing.T) {
	clock := newFakeClock()
	l := NewLedger(clock.Now)

	if !l.Ready("k", 10*time.Second) {
		t.Fatalf("fresh key should be ready")
	}

	l.Touch("k", Success("k", nil))
	if l.Ready("k", 10*time.Second) {
		t.Fatalf("key inside cooldown should not be ready")
	}

	clock.Advance(9 * time.Second)
	if l.Ready("k", 10*time.Second) {
		t.Fatalf("key should still be cooling down at 9s")
	}

	clock.Advance(time.Second)
	if !l.Ready("k", 10*time.Second) {
		t.Fatalf("key should be ready after the full interval")
	}
}

func TestLedgerRetained(t *testing.T) {
	clock := newFakeClock()
	l := NewLedger(clock.Now)

	if _, ok := l.Retained("k"); ok {
		t.Fatalf("nothing should be retained before any execution")
	}

	l.Touch("k", Failure("k", "not found"))
	res, ok := l.Retained("k")
	if !ok {
		t.Fatalf("expected retained result")
	}
	if res.Status != StatusFailure || res.Err != "not found" {
		t.Fatalf("retained result mismatch: %+v", res)
	}

	// A later completion replaces the retained result.
	l.Touch("k", Success("k", "payload"))
	res, _ = l.Retained("k")
	if res.Status != StatusSuccess {
		t.Fatalf("expected retained result to be replaced")
	}
}

func TestLedgerPrune(t *testing.T) {
	clock := newFakeClock()
	l := NewLedger(clock.Now)

	l.Touch("old", Success("old", nil))
	clock.Advance(2 * time.Hour)
	l.Touch("fresh", Success("fresh", nil))

	removed := l.Prune(time.Hour)
	if removed != 1 {
		t.Fatalf("want 1 pruned entry, got %d", removed)
	}
	if l.Len() != 1 {
		t.Fatalf("want 1 remaining entry, got %d", l.Len())
	}
	if _, ok := l.Retained("old"); ok {
		t.Fatalf("pruned key should drop its retained result")
	}
	if !l.Ready("old", time.Hour) {
		t.Fatalf("pruned key should be ready again")
	}
	if _, ok := l.Retained("fresh"); !ok {
		t.Fatalf("fresh key should keep its retained result")
	}
}
