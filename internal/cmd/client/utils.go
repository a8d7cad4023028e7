package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	transports "github.com/DAYGoodTime/nogu/internal/cmd/client/transports"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// tokenFromEnv returns the bearer token from NOGU_TOKEN, if set.
func tokenFromEnv() string { return os.Getenv("NOGU_TOKEN") }

// getTransport selects the stream transport by name.
func getTransport(name string) (transports.StreamTransport, error) {
	switch name {
	case "", "sse":
		return transports.NewSSETransport(), nil
	case "ws", "websocket":
		return transports.NewWSTransport(), nil
	default:
		return nil, fmt.Errorf("unknown transport %q; use sse|ws", name)
	}
}

// httpError extracts the server's error message from a non-2xx response.
func httpError(resp *http.Response) error {
	var e struct {
		Error string `json:"error"`
	}
	if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
		return fmt.Errorf("%s: %s", resp.Status, e.Error)
	}
	return fmt.Errorf("http error: %s", resp.Status)
}

// getJSON fetches url and decodes the response into out.
func getJSON(url, token string, out any) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return httpError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// postJSON posts body to url and decodes the response into out when it is
// non-nil.
func postJSON(url, token string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return httpError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
