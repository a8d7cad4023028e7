package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DAYGoodTime/nogu/internal/osu"
	tourneysvc "github.com/DAYGoodTime/nogu/internal/services/tourney"
	"github.com/DAYGoodTime/nogu/internal/tourney"
	"github.com/DAYGoodTime/nogu/pkg/id"
)

// StagesController serves stages, their maps, and score submission.
type StagesController struct {
	tn *tourneysvc.Service
}

func NewStagesController(svc *tourneysvc.Service) *StagesController {
	return &StagesController{tn: svc}
}

// RegisterRoutes registers the public stage and score routes.
func (c *StagesController) RegisterRoutes(r chi.Router) {
	r.Get("/stages/{id}", c.handleGet)
	r.Get("/stages/{id}/maps", c.handleMaps)
	r.Get("/stages/{id}/scores", c.handleScores)
	r.Get("/scores/{id}", c.handleScore)
}

// RegisterProtectedRoutes registers routes requiring authentication.
func (c *StagesController) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/stages", c.handleCreate)
	r.Post("/stages/{id}/scores", c.handleSubmitScore)
}

func (c *StagesController) handleGet(w http.ResponseWriter, r *http.Request) {
	sid, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	st, err := c.tn.StageByID(sid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, st)
}

func (c *StagesController) handleMaps(w http.ResponseWriter, r *http.Request) {
	sid, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	maps, err := c.tn.StageMaps(sid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"maps": maps})
}

func (c *StagesController) handleScores(w http.ResponseWriter, r *http.Request) {
	sid, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	scores, err := c.tn.ScoresByStage(sid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"scores": scores})
}

func (c *StagesController) handleScore(w http.ResponseWriter, r *http.Request) {
	scid, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	sc, err := c.tn.ScoreByID(scid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, sc)
}

func (c *StagesController) handleCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	var req stageReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Stage name is required")
		return
	}
	tid, err := id.Parse(req.TeamID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team id")
		return
	}
	pid, err := id.Parse(req.PoolID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pool id")
		return
	}
	st, err := c.tn.StartStage(r.Context(), tourney.Stage{
		Name:    req.Name,
		TeamID:  tid,
		PoolID:  pid,
		Formula: req.Formula,
	}, u.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeCreated(w, st)
}

func (c *StagesController) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	sid, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req scoreReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.BeatmapMD5 == "" {
		writeError(w, http.StatusBadRequest, "Beatmap md5 is required")
		return
	}
	sc, err := c.tn.SubmitScore(r.Context(), tourneysvc.ScoreSubmission{
		UserID:       u.ID,
		StageID:      sid,
		BeatmapMD5:   req.BeatmapMD5,
		Score:        req.Score,
		Accuracy:     req.Accuracy,
		HighestCombo: req.HighestCombo,
		FullCombo:    req.FullCombo,
		Mods:         osu.Mods(req.Mods),
		Num300s:      req.Num300s,
		Num100s:      req.Num100s,
		Num50s:       req.Num50s,
		NumMisses:    req.NumMisses,
		NumGekis:     req.NumGekis,
		NumKatus:     req.NumKatus,
		Grade:        req.Grade,
		ServerID:     osu.Server(req.ServerID),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeCreated(w, sc)
}
