package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DAYGoodTime/nogu/internal/beatmap"
	"github.com/DAYGoodTime/nogu/internal/broker"
	beatmapsvc "github.com/DAYGoodTime/nogu/internal/services/beatmaps"
	"github.com/DAYGoodTime/nogu/pkg/log"
)

// maxStreamIdents bounds one stream request's ident list.
const maxStreamIdents = 100

// BeatmapsController serves local beatmap lookups and the request stream:
// clients submit idents, the operator coalesces and throttles the upstream
// fetches, and results are pushed back over SSE or WebSocket.
type BeatmapsController struct {
	bm     *beatmapsvc.Service
	logger log.Logger
}

func NewBeatmapsController(svc *beatmapsvc.Service, logger log.Logger) *BeatmapsController {
	if logger == nil {
		logger = log.NewNop()
	}
	return &BeatmapsController{bm: svc, logger: logger.WithComponent("http.beatmaps")}
}

// RegisterRoutes registers the public beatmap routes.
func (c *BeatmapsController) RegisterRoutes(r chi.Router) {
	r.Get("/beatmaps/{ident}", c.handleGet)
}

// RegisterProtectedRoutes registers routes requiring authentication.
func (c *BeatmapsController) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/beatmaps/stream", c.handleStreamSSE)
	r.Get("/beatmaps/stream/ws", c.handleStreamWS)
}

// handleGet resolves an ident against the local store only. Missing maps are
// requested through the stream endpoints, never synchronously here.
func (c *BeatmapsController) handleGet(w http.ResponseWriter, r *http.Request) {
	ident := chi.URLParam(r, "ident")
	if !beatmap.Ident(ident).Valid() {
		writeError(w, http.StatusBadRequest, "Invalid beatmap identifier")
		return
	}
	bm, err := c.bm.Lookup(r.Context(), ident)
	if err != nil {
		if errors.Is(err, beatmap.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Beatmap not found.")
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, bm)
}

// submitIdents queues every ident for the session. Invalid idents are queued
// too; the provider answers them with failure results on the stream.
func (c *BeatmapsController) submitIdents(w http.ResponseWriter, r *http.Request, session string, idents []string) bool {
	if len(idents) == 0 {
		writeError(w, http.StatusBadRequest, "At least one ident is required")
		return false
	}
	if len(idents) > maxStreamIdents {
		writeError(w, http.StatusBadRequest, "Too many idents in one request")
		return false
	}
	for _, ident := range idents {
		if err := c.bm.Request(r.Context(), session, ident); err != nil {
			writeDomainError(w, err)
			return false
		}
	}
	return true
}

// handleStreamSSE submits the posted idents for the authenticated session and
// answers with a live event stream carrying each ident's result.
func (c *BeatmapsController) handleStreamSSE(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	session := u.ID.String()

	var req streamReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if !c.submitIdents(w, r, session, req.Idents) {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, okf := w.(http.Flusher); okf {
		f.Flush()
	}

	sink := sseSink{w: w, r: r}
	if err := c.bm.Subscribe(session, sink); err != nil {
		if errors.Is(err, broker.ErrStreamActive) {
			// Headers are already out; surface the conflict in-band.
			_ = sink.sendError("A result stream is already active for this session")
			return
		}
		c.logger.Debug("sse stream ended", log.Str("session", session), log.Err(err))
	}
}
