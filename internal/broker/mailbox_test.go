package broker

import (
	"errors"
	"testing"
	"time"
)

func TestMailboxOrderAndTake(t *testing.T) {
	box := newMailbox(8, nil)
	box.enqueue(Success("a", nil))
	box.enqueue(Success("b", nil))
	box.enqueue(Failure("c", "x"))

	items := box.takeAll()
	if len(items) != 3 {
		t.Fatalf("want 3 items, got %d", len(items))
	}
	for i, want := range []Key{"a", "b", "c"} {
		if items[i].Key != want {
			t.Fatalf("item %d = %s, want %s", i, items[i].Key, want)
		}
	}
	if got := box.takeAll(); len(got) != 0 {
		t.Fatalf("second take should be empty, got %d", len(got))
	}
}

func TestMailboxDropOldest(t *testing.T) {
	box := newMailbox(2, nil)
	box.enqueue(Success("a", nil))
	box.enqueue(Success("b", nil))
	box.enqueue(Success("c", nil))

	items := box.takeAll()
	if len(items) != 2 {
		t.Fatalf("want capacity-bounded 2 items, got %d", len(items))
	}
	if items[0].Key != "b" || items[1].Key != "c" {
		t.Fatalf("oldest should be dropped, got %s,%s", items[0].Key, items[1].Key)
	}
	if box.Dropped() != 1 {
		t.Fatalf("want 1 dropped, got %d", box.Dropped())
	}
}

func TestMailboxWait(t *testing.T) {
	box := newMailbox(8, nil)

	if box.wait(10 * time.Millisecond) {
		t.Fatalf("wait on empty mailbox should time out")
	}

	go func() {
		time.Sleep(5 * time.Millisecond)
		box.enqueue(Success("a", nil))
	}()
	if !box.wait(500 * time.Millisecond) {
		t.Fatalf("wait should wake on enqueue")
	}

	// Items already queued return immediately.
	if !box.wait(time.Millisecond) {
		t.Fatalf("wait with queued items should not block")
	}
}

func TestMailboxSingleConsumer(t *testing.T) {
	box := newMailbox(8, nil)
	if err := box.attach(); err != nil {
		t.Fatalf("first attach: %v", err)
	}
	if err := box.attach(); !errors.Is(err, ErrStreamActive) {
		t.Fatalf("second attach = %v, want ErrStreamActive", err)
	}
	box.release()
	if err := box.attach(); err != nil {
		t.Fatalf("attach after release: %v", err)
	}
}

func TestMailboxIdleSince(t *testing.T) {
	clock := newFakeClock()
	box := newMailbox(8, clock.Now)

	cutoff := clock.Now().Add(time.Minute)
	if !box.idleSince(cutoff) {
		t.Fatalf("untouched detached mailbox should be idle")
	}

	box.enqueue(Success("a", nil))
	if box.idleSince(cutoff) {
		t.Fatalf("mailbox with queued items is not idle")
	}
	box.takeAll()

	if err := box.attach(); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if box.idleSince(clock.Now().Add(time.Minute)) {
		t.Fatalf("attached mailbox is not idle")
	}
}
