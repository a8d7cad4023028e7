package controllers

import (
	"github.com/go-chi/chi/v5"

	"github.com/DAYGoodTime/nogu/internal/runtime"
	beatmapsvc "github.com/DAYGoodTime/nogu/internal/services/beatmaps"
	tourneysvc "github.com/DAYGoodTime/nogu/internal/services/tourney"
	"github.com/DAYGoodTime/nogu/pkg/log"
)

// Registry wires all HTTP controllers onto one router.
type Registry struct {
	auth     *AuthController
	general  *GeneralController
	users    *UsersController
	teams    *TeamsController
	pools    *PoolsController
	stages   *StagesController
	beatmaps *BeatmapsController
}

// NewRegistry builds the controllers from the runtime and services.
func NewRegistry(rt *runtime.Runtime, bm *beatmapsvc.Service, tn *tourneysvc.Service, logger log.Logger) *Registry {
	return &Registry{
		auth:     NewAuthController(tn),
		general:  NewGeneralController(rt, bm),
		users:    NewUsersController(tn),
		teams:    NewTeamsController(tn),
		pools:    NewPoolsController(tn),
		stages:   NewStagesController(tn),
		beatmaps: NewBeatmapsController(bm, logger),
	}
}

// Routes mounts every endpoint under /v1. Mutating routes sit behind the
// bearer-token middleware; reads are public.
func (reg *Registry) Routes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		reg.general.RegisterRoutes(r)
		reg.auth.RegisterRoutes(r)
		reg.users.RegisterRoutes(r)
		reg.teams.RegisterRoutes(r)
		reg.pools.RegisterRoutes(r)
		reg.stages.RegisterRoutes(r)
		reg.beatmaps.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(reg.auth.Require)
			reg.auth.RegisterProtectedRoutes(r)
			reg.users.RegisterProtectedRoutes(r)
			reg.teams.RegisterProtectedRoutes(r)
			reg.pools.RegisterProtectedRoutes(r)
			reg.stages.RegisterProtectedRoutes(r)
			reg.beatmaps.RegisterProtectedRoutes(r)
		})
	})
}
