package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/DAYGoodTime/nogu/internal/broker"
	"github.com/DAYGoodTime/nogu/pkg/log"
)

const (
	// Time allowed to write a message to the peer.
	wsWriteWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	wsPongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than wsPongWait.
	wsPingPeriod = (wsPongWait * 9) / 10

	// Maximum message size allowed from peer.
	wsMaxMessageSize = 64 * 1024
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsStream serializes writes to one WebSocket connection. Gorilla permits a
// single concurrent writer, and both the result drain and the ping ticker
// write here.
type wsStream struct {
	conn *websocket.Conn
	ctx  context.Context
	mu   sync.Mutex
}

func (s *wsStream) writeJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return s.conn.WriteJSON(v)
}

func (s *wsStream) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

func (s *wsStream) close(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	s.mu.Lock()
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
	s.mu.Unlock()
	_ = s.conn.Close()
}

// Send delivers one result as a text frame.
func (s *wsStream) Send(res broker.Result) error { return s.writeJSON(res) }

func (s *wsStream) Context() context.Context { return s.ctx }

// Flush is a no-op: frames are not buffered.
func (s *wsStream) Flush() error { return nil }

// handleStreamWS upgrades to a WebSocket and runs the result stream over it.
// The peer submits idents as {"idents": [...]} text frames at any time;
// results are pushed back as they complete.
func (c *BeatmapsController) handleStreamWS(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	session := u.ID.String()

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.Debug("websocket upgrade failed", log.Err(err))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stream := &wsStream{conn: conn, ctx: ctx}

	// Read pump: accepts ident submissions until the peer goes away.
	go func() {
		defer cancel()
		conn.SetReadLimit(wsMaxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					c.logger.Debug("websocket read ended", log.Str("session", session), log.Err(err))
				}
				return
			}
			var req streamReq
			if err := json.Unmarshal(msg, &req); err != nil || len(req.Idents) == 0 {
				_ = stream.writeJSON(map[string]string{"error": "Invalid submission"})
				continue
			}
			if len(req.Idents) > maxStreamIdents {
				_ = stream.writeJSON(map[string]string{"error": "Too many idents in one request"})
				continue
			}
			for _, ident := range req.Idents {
				if err := c.bm.Request(ctx, session, ident); err != nil {
					_ = stream.writeJSON(map[string]string{"error": "Submission rejected"})
					break
				}
			}
		}
	}()

	// Ping ticker keeps intermediaries from dropping the idle connection.
	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := stream.ping(); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	err = c.bm.Subscribe(session, stream)
	switch {
	case errors.Is(err, broker.ErrStreamActive):
		stream.close(websocket.ClosePolicyViolation, "stream already active")
	default:
		stream.close(websocket.CloseNormalClosure, "")
	}
}
