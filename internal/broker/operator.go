package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/DAYGoodTime/nogu/pkg/log"
)

const (
	defaultInterval   = 30 * time.Second
	defaultMailboxCap = 256
)

// ErrClosed is returned by Submit after the operator has shut down.
var ErrClosed = errors.New("broker: operator closed")

// Runner executes one operation for key. session is the submitter whose
// request triggered the run. A returned error (or a panic) becomes a failure
// result; runners report domain misses by returning a failure result
// themselves.
type Runner func(ctx context.Context, session Session, key Key) (Result, error)

// SkipPolicy controls what a session receives when its submission lands
// inside the key's cooldown window.
type SkipPolicy int

const (
	// SkipReplay re-delivers the retained last result for the key.
	SkipReplay SkipPolicy = iota
	// SkipSilent delivers nothing.
	SkipSilent
)

// ParseSkipPolicy maps config strings ("replay", "silent") to a policy.
func ParseSkipPolicy(s string) (SkipPolicy, error) {
	switch s {
	case "replay", "":
		return SkipReplay, nil
	case "silent":
		return SkipSilent, nil
	default:
		return SkipReplay, fmt.Errorf("broker: unknown skip policy %q", s)
	}
}

// Options configures an Operator.
type Options struct {
	// Interval is the minimum spacing between completed executions of one key.
	Interval time.Duration
	// SkipPolicy selects the cooldown-hit behavior. The default replays the
	// retained result.
	SkipPolicy SkipPolicy
	// MailboxCap bounds each session's output queue.
	MailboxCap int
	// Logger receives operational events. Defaults to a nop logger.
	Logger log.Logger
	// Now is the clock used for throttling decisions. Defaults to time.Now.
	Now func() time.Time
}

// Stats is a snapshot of operator counters.
type Stats struct {
	Submitted uint64
	Coalesced uint64
	Throttled uint64
	Executed  uint64
	Delivered uint64
}

// Operator admits operation submissions, coalescing duplicates of a key onto
// the in-flight run and spacing completed executions by a cooldown interval.
// Results fan out to the mailbox of every waiting session.
type Operator struct {
	runner Runner
	opts   Options
	logger log.Logger
	now    func() time.Time
	ledger *Ledger

	mu        sync.Mutex
	inflight  map[Key][]Session
	mailboxes map[Session]*Mailbox
	stats     Stats
	closed    bool

	baseCtx context.Context
	cancel  context.CancelFunc
	doneCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates an Operator that executes submissions with runner.
func New(runner Runner, opts Options) *Operator {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.MailboxCap <= 0 {
		opts.MailboxCap = defaultMailboxCap
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Operator{
		runner:    runner,
		opts:      opts,
		logger:    logger.WithComponent("broker"),
		now:       now,
		ledger:    NewLedger(now),
		inflight:  make(map[Key][]Session),
		mailboxes: make(map[Session]*Mailbox),
		baseCtx:   ctx,
		cancel:    cancel,
		doneCh:    make(chan struct{}),
	}
}

// Interval returns the configured cooldown interval.
func (o *Operator) Interval() time.Duration { return o.opts.Interval }

// Submit admits one operation for key on behalf of session. It never blocks
// on execution: the call returns once the submission has been coalesced,
// throttled, or handed to a new run. The session's result arrives on its
// mailbox.
func (o *Operator) Submit(ctx context.Context, session Session, key Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	o.stats.Submitted++

	// Coalesce onto the in-flight run for this key.
	if waiters, ok := o.inflight[key]; ok {
		o.inflight[key] = append(waiters, session)
		o.stats.Coalesced++
		o.mu.Unlock()
		return nil
	}

	// Inside the cooldown window: no new execution.
	if !o.ledger.Ready(key, o.opts.Interval) {
		o.stats.Throttled++
		if o.opts.SkipPolicy == SkipReplay {
			if res, ok := o.ledger.Retained(key); ok {
				o.deliverLocked(session, res)
			}
		}
		o.mu.Unlock()
		return nil
	}

	// Claim the key and start a run. The claim shares one critical section
	// with the checks above so concurrent submissions cannot double-execute.
	o.inflight[key] = []Session{session}
	o.stats.Executed++
	o.wg.Add(1)
	o.mu.Unlock()

	go o.run(session, key)
	return nil
}

func (o *Operator) run(initiator Session, key Key) {
	defer o.wg.Done()
	started := o.now()
	res := o.execute(initiator, key)
	o.complete(key, res)
	o.logger.Debug("run complete",
		log.Str("key", string(key)),
		log.Str("status", res.Status.String()),
		log.Dur("elapsed", o.now().Sub(started)))
}

// execute invokes the runner, converting errors and panics into failure
// results so faults never escape to submitters.
func (o *Operator) execute(initiator Session, key Key) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("runner panic", log.Str("key", string(key)), log.Any("panic", r))
			res = Failure(key, fmt.Sprintf("internal error: %v", r))
		}
	}()
	out, err := o.runner(o.baseCtx, initiator, key)
	if err != nil {
		o.logger.Warn("runner error", log.Str("key", string(key)), log.Err(err))
		return Failure(key, err.Error())
	}
	if out.Key == "" {
		out.Key = key
	}
	return out
}

// complete arms the cooldown, retains the result, and fans it out to every
// waiter. The ledger update precedes the in-flight removal inside one
// critical section, so a submission arriving concurrently is either coalesced
// or throttled, never re-executed early.
func (o *Operator) complete(key Key, res Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ledger.Touch(key, res)
	waiters := o.inflight[key]
	delete(o.inflight, key)
	for _, s := range waiters {
		o.deliverLocked(s, res)
	}
}

// deliverLocked enqueues res for session, creating the mailbox on first use.
// Caller holds o.mu; enqueue never blocks, so per-session delivery order
// follows completion order.
func (o *Operator) deliverLocked(session Session, res Result) {
	box, ok := o.mailboxes[session]
	if !ok {
		box = newMailbox(o.opts.MailboxCap, o.now)
		o.mailboxes[session] = box
	}
	box.enqueue(res)
	o.stats.Delivered++
}

// mailboxFor returns the session's mailbox, creating it on first use.
func (o *Operator) mailboxFor(session Session) *Mailbox {
	o.mu.Lock()
	defer o.mu.Unlock()
	box, ok := o.mailboxes[session]
	if !ok {
		box = newMailbox(o.opts.MailboxCap, o.now)
		o.mailboxes[session] = box
	}
	return box
}

// InFlight returns the number of keys currently executing.
func (o *Operator) InFlight() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.inflight)
}

// Stats returns a snapshot of operator counters.
func (o *Operator) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats
}

// Prune evicts throttle entries older than maxAge along with mailboxes that
// are detached, empty, and equally stale. It returns how many of each were
// removed. Callers should pass a maxAge comfortably above the interval.
func (o *Operator) Prune(maxAge time.Duration) (entries, boxes int) {
	entries = o.ledger.Prune(maxAge)
	cutoff := o.now().Add(-maxAge)
	o.mu.Lock()
	defer o.mu.Unlock()
	for s, box := range o.mailboxes {
		if box.idleSince(cutoff) {
			delete(o.mailboxes, s)
			boxes++
		}
	}
	return entries, boxes
}

// Close stops admission, waits for in-flight runs to complete and fan out,
// then ends attached streams. Results already queued are drained by their
// consumers before the streams end. Close is idempotent.
func (o *Operator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.mu.Unlock()

	o.wg.Wait()
	close(o.doneCh)
	o.cancel()
}
