package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/DAYGoodTime/nogu/internal/broker"
)

// sseSink adapts an HTTP response into a broker event sink, formatting each
// result as a Server-Sent Events data frame.
type sseSink struct {
	w http.ResponseWriter
	r *http.Request
}

// Send writes one result as an SSE data event: the JSON body prefixed with
// "data: " and terminated by a blank line.
func (s sseSink) Send(res broker.Result) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := s.w.Write(b); err != nil {
		return err
	}
	_, err = s.w.Write([]byte("\n\n"))
	return err
}

// sendError emits a named error event and flushes it.
func (s sseSink) sendError(msg string) error {
	b, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("event: error\ndata: ")); err != nil {
		return err
	}
	if _, err := s.w.Write(b); err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("\n\n")); err != nil {
		return err
	}
	return s.Flush()
}

// Context returns the request context for cancellation.
func (s sseSink) Context() context.Context {
	return s.r.Context()
}

// Flush pushes buffered events to the client immediately.
func (s sseSink) Flush() error {
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
