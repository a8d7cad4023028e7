package transports

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Result is the wire shape of one stream event: the requested ident, its
// outcome class, and either the beatmap payload or a failure reason.
type Result struct {
	Key     string          `json:"key"`
	Status  string          `json:"status"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Err     string          `json:"error,omitempty"`
}

// StreamRequest describes one result-stream subscription.
type StreamRequest struct {
	BaseURL string
	Token   string
	Idents  []string
	// Limit stops the stream after N results (0 = until cancelled).
	Limit int
}

// StreamTransport abstracts the transport used by the CLI (SSE or WebSocket).
type StreamTransport interface {
	Stream(ctx context.Context, req StreamRequest, onResult func(Result) error) error
}

// apiError extracts the server's error message from a non-2xx response.
func apiError(resp *http.Response) error {
	var e struct {
		Error string `json:"error"`
	}
	if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
		return fmt.Errorf("%s: %s", resp.Status, e.Error)
	}
	return fmt.Errorf("http error: %s", resp.Status)
}
