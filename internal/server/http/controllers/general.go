package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DAYGoodTime/nogu/internal/runtime"
	beatmapsvc "github.com/DAYGoodTime/nogu/internal/services/beatmaps"
)

// GeneralController handles health and operator statistics.
type GeneralController struct {
	rt *runtime.Runtime
	bm *beatmapsvc.Service
}

func NewGeneralController(rt *runtime.Runtime, bm *beatmapsvc.Service) *GeneralController {
	return &GeneralController{rt: rt, bm: bm}
}

// RegisterRoutes registers the general routes.
func (c *GeneralController) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", c.handleHealth)
	r.Get("/stats", c.handleStats)
}

// handleHealth returns 200 with {"status": "ok"} when storage answers,
// 503 otherwise.
func (c *GeneralController) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := c.rt.CheckHealth(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_serving")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleStats reports the request operator's counters and configuration.
func (c *GeneralController) handleStats(w http.ResponseWriter, r *http.Request) {
	st := c.bm.Stats()
	writeJSON(w, map[string]any{
		"beatmaps": map[string]any{
			"interval_sec": c.bm.Interval().Seconds(),
			"submitted":    st.Submitted,
			"coalesced":    st.Coalesced,
			"throttled":    st.Throttled,
			"executed":     st.Executed,
			"delivered":    st.Delivered,
		},
	})
}
