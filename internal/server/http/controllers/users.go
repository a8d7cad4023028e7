package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DAYGoodTime/nogu/internal/osu"
	tourneysvc "github.com/DAYGoodTime/nogu/internal/services/tourney"
	"github.com/DAYGoodTime/nogu/internal/tourney"
	"github.com/DAYGoodTime/nogu/pkg/id"
)

// UsersController serves user profiles and linked osu! accounts.
type UsersController struct {
	tn *tourneysvc.Service
}

func NewUsersController(svc *tourneysvc.Service) *UsersController {
	return &UsersController{tn: svc}
}

// RegisterRoutes registers the public user routes.
func (c *UsersController) RegisterRoutes(r chi.Router) {
	r.Get("/users", c.handleList)
	r.Get("/users/{id}", c.handleGet)
	r.Get("/users/{id}/accounts", c.handleAccounts)
	r.Get("/users/{id}/teams", c.handleTeams)
	r.Get("/users/{id}/scores", c.handleScores)
}

// RegisterProtectedRoutes registers routes requiring authentication.
func (c *UsersController) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/users/me", c.handleMe)
	r.Post("/users/me/accounts", c.handleLinkAccount)
	r.Post("/users/me/active-team", c.handleActivateTeam)
}

func (c *UsersController) handleList(w http.ResponseWriter, r *http.Request) {
	us, err := c.tn.Users()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"users": sanitizeUsers(us)})
}

func (c *UsersController) handleGet(w http.ResponseWriter, r *http.Request) {
	uid, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	u, err := c.tn.UserByID(uid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, sanitizeUser(u))
}

func (c *UsersController) handleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	writeJSON(w, sanitizeUser(u))
}

func (c *UsersController) handleAccounts(w http.ResponseWriter, r *http.Request) {
	uid, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	accts, err := c.tn.AccountsOf(uid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"accounts": accts})
}

func (c *UsersController) handleLinkAccount(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	var req accountReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ServerUserName == "" {
		writeError(w, http.StatusBadRequest, "Server user name is required")
		return
	}
	acct, err := c.tn.LinkAccount(r.Context(), tourney.UserAccount{
		UserID:         u.ID,
		ServerID:       osu.Server(req.ServerID),
		ServerUserID:   req.ServerUserID,
		ServerUserName: req.ServerUserName,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeCreated(w, acct)
}

func (c *UsersController) handleActivateTeam(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	var req activateReq
	if !decodeJSON(w, r, &req) {
		return
	}
	tid, err := id.Parse(req.TeamID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team id")
		return
	}
	updated, err := c.tn.SetActiveTeam(r.Context(), u.ID, tid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, sanitizeUser(updated))
}

func (c *UsersController) handleTeams(w http.ResponseWriter, r *http.Request) {
	uid, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	ts, err := c.tn.TeamsOf(uid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"teams": ts})
}

func (c *UsersController) handleScores(w http.ResponseWriter, r *http.Request) {
	uid, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	scores, err := c.tn.ScoresByUser(uid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"scores": scores})
}
