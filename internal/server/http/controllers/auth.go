package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	tourneysvc "github.com/DAYGoodTime/nogu/internal/services/tourney"
	"github.com/DAYGoodTime/nogu/internal/tourney"
)

type ctxKey int

const userCtxKey ctxKey = iota

// AuthController handles registration, login, and the bearer-token
// middleware guarding authenticated routes.
type AuthController struct {
	tn *tourneysvc.Service
}

func NewAuthController(svc *tourneysvc.Service) *AuthController {
	return &AuthController{tn: svc}
}

// RegisterRoutes registers the public auth routes.
func (c *AuthController) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", c.handleRegister)
	r.Post("/auth/login", c.handleLogin)
}

// RegisterProtectedRoutes registers routes requiring authentication. The
// caller mounts them behind Require.
func (c *AuthController) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/auth/logout", c.handleLogout)
}

// bearerToken extracts the token from the Authorization header, falling back
// to the access_token query parameter for transports that cannot set headers
// (EventSource, browser WebSocket).
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("access_token")
}

// Require authenticates the request and stores the user in the context.
// Unauthenticated requests are answered with 401.
func (c *AuthController) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := c.tn.Authenticate(bearerToken(r))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), userCtxKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUser returns the authenticated user stored by Require.
func CurrentUser(ctx context.Context) (tourney.User, bool) {
	u, ok := ctx.Value(userCtxKey).(tourney.User)
	return u, ok
}

func (c *AuthController) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username, email, and password are required")
		return
	}
	u, err := c.tn.Register(r.Context(), tourneysvc.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Country:  req.Country,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeCreated(w, sanitizeUser(u))
}

func (c *AuthController) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !decodeJSON(w, r, &req) {
		return
	}
	tok, u, err := c.tn.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, loginResp{Token: tok.Value, ExpiresAt: tok.ExpiresAt, User: sanitizeUser(u)})
}

func (c *AuthController) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := c.tn.Logout(r.Context(), bearerToken(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeNoContent(w)
}
