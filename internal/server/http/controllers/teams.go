package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	tourneysvc "github.com/DAYGoodTime/nogu/internal/services/tourney"
	"github.com/DAYGoodTime/nogu/internal/tourney"
	"github.com/DAYGoodTime/nogu/pkg/id"
)

// TeamsController serves team rosters and stage history.
type TeamsController struct {
	tn *tourneysvc.Service
}

func NewTeamsController(svc *tourneysvc.Service) *TeamsController {
	return &TeamsController{tn: svc}
}

// RegisterRoutes registers the public team routes.
func (c *TeamsController) RegisterRoutes(r chi.Router) {
	r.Get("/teams", c.handleList)
	r.Get("/teams/{id}", c.handleGet)
	r.Get("/teams/{id}/members", c.handleMembers)
	r.Get("/teams/{id}/stages", c.handleStages)
}

// RegisterProtectedRoutes registers routes requiring authentication.
func (c *TeamsController) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/teams", c.handleCreate)
	r.Post("/teams/{id}/members", c.handleJoin)
	r.Delete("/teams/{id}/members/{userID}", c.handleLeave)
}

func (c *TeamsController) handleList(w http.ResponseWriter, r *http.Request) {
	ts, err := c.tn.Teams()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"teams": ts})
}

func (c *TeamsController) handleGet(w http.ResponseWriter, r *http.Request) {
	tid, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	t, err := c.tn.TeamByID(tid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, t)
}

func (c *TeamsController) handleMembers(w http.ResponseWriter, r *http.Request) {
	tid, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	ms, err := c.tn.TeamMembers(tid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"members": ms})
}

func (c *TeamsController) handleStages(w http.ResponseWriter, r *http.Request) {
	tid, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	sts, err := c.tn.StagesOf(tid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"stages": sts})
}

func (c *TeamsController) handleCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	var req teamReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Team name is required")
		return
	}
	priv := tourney.Privacy(req.Privacy)
	if priv < tourney.PrivacyPublic || priv > tourney.PrivacyPrivate {
		writeError(w, http.StatusBadRequest, "Invalid privacy")
		return
	}
	t, err := c.tn.CreateTeam(r.Context(), req.Name, priv, u.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeCreated(w, t)
}

func (c *TeamsController) handleJoin(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	tid, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req memberReq
	if !decodeJSON(w, r, &req) {
		return
	}
	target := u.ID
	if req.UserID != "" {
		parsed, err := id.Parse(req.UserID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid user id")
			return
		}
		target = parsed
	}
	m, err := c.tn.JoinTeam(r.Context(), tid, target, u.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeCreated(w, m)
}

func (c *TeamsController) handleLeave(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	tid, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	target, ok := urlID(w, r, "userID")
	if !ok {
		return
	}
	if err := c.tn.LeaveTeam(r.Context(), tid, target, u.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeNoContent(w)
}
