// Package broker implements the request operator that fronts expensive,
// rate-limited operations such as remote beatmap fetches.
//
// # Overview
//
// Submissions are admitted by key. The operator guarantees that
//   - concurrent submissions of one key coalesce onto a single in-flight
//     execution, every submitter still receiving its own result;
//   - completed executions of one key (success or failure alike) are spaced
//     by at least the configured cooldown interval;
//   - each result fans out to the mailbox of every session that was waiting,
//     in completion order.
//
// Sessions drain their mailbox through at most one attached EventSink at a
// time (SSE or WebSocket transports implement the sink). Attaching while a
// stream is active fails with ErrStreamActive; detaching releases the slot so
// the session can reconnect, and never cancels an in-flight execution — its
// result stays queued for the next consumer. Mailboxes are bounded: when one
// overflows the oldest unread result is dropped.
//
// Submissions landing inside a key's cooldown window execute nothing; per
// SkipPolicy the retained last result is replayed to the submitter (default)
// or silently skipped.
//
// Example:
//
//	op := broker.New(runner, broker.Options{Interval: 30 * time.Second})
//	_ = op.Submit(ctx, "user:42", "1a2b3c...")
//	_ = op.Subscribe("user:42", sseSink) // blocks, streaming results
//	op.Close()
package broker
