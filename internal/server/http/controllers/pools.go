package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DAYGoodTime/nogu/internal/osu"
	tourneysvc "github.com/DAYGoodTime/nogu/internal/services/tourney"
	"github.com/DAYGoodTime/nogu/internal/tourney"
)

// PoolsController serves map pools and their slots.
type PoolsController struct {
	tn *tourneysvc.Service
}

func NewPoolsController(svc *tourneysvc.Service) *PoolsController {
	return &PoolsController{tn: svc}
}

// RegisterRoutes registers the public pool routes.
func (c *PoolsController) RegisterRoutes(r chi.Router) {
	r.Get("/pools", c.handleList)
	r.Get("/pools/{id}", c.handleGet)
	r.Get("/pools/{id}/maps", c.handleMaps)
}

// RegisterProtectedRoutes registers routes requiring authentication.
func (c *PoolsController) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/pools", c.handleCreate)
	r.Post("/pools/{id}/maps", c.handleAddMap)
	r.Delete("/pools/{id}/maps/{mapID}", c.handleRemoveMap)
}

func (c *PoolsController) handleList(w http.ResponseWriter, r *http.Request) {
	ps, err := c.tn.Pools()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"pools": ps})
}

func (c *PoolsController) handleGet(w http.ResponseWriter, r *http.Request) {
	pid, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	p, err := c.tn.PoolByID(pid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, p)
}

func (c *PoolsController) handleMaps(w http.ResponseWriter, r *http.Request) {
	pid, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	maps, err := c.tn.PoolMaps(pid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"maps": maps})
}

func (c *PoolsController) handleCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	var req poolReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Pool name is required")
		return
	}
	mode := osu.Mode(req.Mode)
	if !mode.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid mode")
		return
	}
	priv := tourney.Privacy(req.Privacy)
	if priv < tourney.PrivacyPublic || priv > tourney.PrivacyPrivate {
		writeError(w, http.StatusBadRequest, "Invalid privacy")
		return
	}
	p, err := c.tn.CreatePool(r.Context(), tourney.Pool{
		Name:        req.Name,
		Description: req.Description,
		Mode:        mode,
		Privacy:     priv,
	}, u.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeCreated(w, p)
}

func (c *PoolsController) handleAddMap(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	pid, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req poolMapReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.MapMD5 == "" {
		writeError(w, http.StatusBadRequest, "Map md5 is required")
		return
	}
	pm, err := c.tn.AddPoolMap(r.Context(), tourney.PoolMap{
		PoolID: pid,
		MapEntry: tourney.MapEntry{
			MapMD5:                 req.MapMD5,
			Description:            req.Description,
			ConditionAST:           req.ConditionAST,
			ConditionName:          req.ConditionName,
			ConditionRepresentMods: osu.Mods(req.ConditionRepresentMods),
		},
	}, u.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeCreated(w, pm)
}

func (c *PoolsController) handleRemoveMap(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	pid, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	mid, ok := urlID(w, r, "mapID")
	if !ok {
		return
	}
	if err := c.tn.RemovePoolMap(r.Context(), pid, mid, u.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeNoContent(w)
}
