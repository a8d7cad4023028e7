package broker

import (
	"context"
	"time"

	"github.com/DAYGoodTime/nogu/pkg/log"
)

// EventSink is implemented by transports (SSE, WebSocket) to receive a
// session's result stream.
type EventSink interface {
	Send(Result) error
	Context() context.Context
	Flush() error
}

// drainWait bounds each blocking wait so detached contexts are noticed even
// without traffic.
const drainWait = 2 * time.Second

// Subscribe attaches sink as the session's single consumer and drains the
// mailbox until the sink's context is canceled or the operator shuts down.
// A concurrent second Subscribe for the same session fails with
// ErrStreamActive. Detaching never cancels in-flight runs; their results stay
// queued for the session's next consumer.
func (o *Operator) Subscribe(session Session, sink EventSink) error {
	box := o.mailboxFor(session)
	if err := box.attach(); err != nil {
		return err
	}
	defer box.release()

	o.logger.Debug("stream attached", log.Str("session", string(session)))
	defer o.logger.Debug("stream detached", log.Str("session", string(session)))

	for {
		items := box.takeAll()
		for _, res := range items {
			if err := sink.Send(res); err != nil {
				return err
			}
		}
		if len(items) > 0 {
			if err := sink.Flush(); err != nil {
				return err
			}
			continue
		}
		select {
		case <-sink.Context().Done():
			// Peer went away: end cleanly, leaving queued work untouched.
			return nil
		case <-o.doneCh:
			// Operator shutdown: flush anything already queued, then end.
			for _, res := range box.takeAll() {
				if err := sink.Send(res); err != nil {
					return err
				}
			}
			_ = sink.Flush()
			return nil
		default:
		}
		if !box.wait(drainWait) {
			if sink.Context().Err() != nil {
				return nil
			}
		}
	}
}
