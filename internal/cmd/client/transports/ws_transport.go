package transports

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// WSTransport consumes the /v1/beatmaps/stream/ws endpoint.
type WSTransport struct {
	Dialer *websocket.Dialer
}

func NewWSTransport() *WSTransport {
	return &WSTransport{Dialer: websocket.DefaultDialer}
}

// wsURL rewrites an http(s) base URL into its ws(s) form.
func wsURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	default:
		return base
	}
}

// Stream dials the socket, submits the idents, and relays results until the
// limit is reached, the server closes, or ctx ends.
func (t *WSTransport) Stream(ctx context.Context, req StreamRequest, onResult func(Result) error) error {
	hdr := http.Header{}
	if req.Token != "" {
		hdr.Set("Authorization", "Bearer "+req.Token)
	}
	conn, resp, err := t.Dialer.DialContext(ctx, wsURL(req.BaseURL)+"/v1/beatmaps/stream/ws", hdr)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			return apiError(resp)
		}
		return err
	}
	defer conn.Close()

	// Force the blocked read below to return when ctx ends.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	if err := conn.WriteJSON(map[string][]string{"idents": req.Idents}); err != nil {
		return err
	}

	var seen int
	for {
		var res Result
		if err := conn.ReadJSON(&res); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		// Server-side rejections arrive as bare {"error": ...} frames.
		if res.Key == "" && res.Err != "" {
			return fmt.Errorf("stream error: %s", res.Err)
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
