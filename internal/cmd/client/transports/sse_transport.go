package transports

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// SSETransport consumes the POST /v1/beatmaps/stream endpoint and decodes
// Server-Sent Events frames.
type SSETransport struct {
	Client *http.Client
}

func NewSSETransport() *SSETransport {
	return &SSETransport{Client: http.DefaultClient}
}

// Stream submits the idents and relays each event to onResult until the
// limit is reached, the server closes the stream, or ctx ends.
func (t *SSETransport) Stream(ctx context.Context, req StreamRequest, onResult func(Result) error) error {
	body, err := json.Marshal(map[string][]string{"idents": req.Idents})
	if err != nil {
		return err
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.BaseURL+"/v1/beatmaps/stream", bytes.NewReader(body))
	if err != nil {
		return err
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "text/event-stream")
	if req.Token != "" {
		hreq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	resp, err := t.Client.Do(hreq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	var (
		seen  int
		event string
	)
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			// Blank line ends a frame; reset the event name.
			event = ""
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data := strings.TrimPrefix(line, "data: ")
			if event == "error" {
				var e struct {
					Error string `json:"error"`
				}
				if json.Unmarshal([]byte(data), &e) == nil && e.Error != "" {
					return fmt.Errorf("stream error: %s", e.Error)
				}
				return fmt.Errorf("stream error: %s", data)
			}
			var res Result
			if err := json.Unmarshal([]byte(data), &res); err != nil {
				return fmt.Errorf("bad stream frame: %w", err)
			}
			if err := onResult(res); err != nil {
				return err
			}
			seen++
			if req.Limit > 0 && seen >= req.Limit {
				return nil
			}
		}
	}
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
