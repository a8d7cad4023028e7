package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DAYGoodTime/nogu/internal/auth"
	"github.com/DAYGoodTime/nogu/internal/broker"
	tourneysvc "github.com/DAYGoodTime/nogu/internal/services/tourney"
	"github.com/DAYGoodTime/nogu/internal/tourney"
	"github.com/DAYGoodTime/nogu/pkg/id"
)

// maxBodyBytes bounds request bodies; none of the API's payloads come close.
const maxBodyBytes = 1 << 20

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// writeCreated writes a 201 Created response carrying the created entity.
func writeCreated(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(data)
}

// writeNoContent writes a 204 No Content response.
func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// decodeJSON decodes the request body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// urlID parses the named chi route parameter as an entity id, answering 400
// on malformed input.
func urlID(w http.ResponseWriter, r *http.Request, name string) (id.ID, bool) {
	v, err := id.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return id.Zero, false
	}
	return v, true
}

// writeDomainError translates service errors into HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tourney.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, tourney.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "Username already taken")
	case errors.Is(err, tourney.ErrEmailTaken):
		writeError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, tourney.ErrConditionNotMet):
		writeError(w, http.StatusUnprocessableEntity, "Score does not meet the map condition")
	case errors.Is(err, tourney.ErrBadCondition):
		writeError(w, http.StatusBadRequest, "Invalid map condition")
	case errors.Is(err, tourneysvc.ErrForbidden):
		writeError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, tourneysvc.ErrBadCredentials), errors.Is(err, auth.ErrTokenInvalid):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, broker.ErrStreamActive):
		writeError(w, http.StatusConflict, "A result stream is already active for this session")
	case errors.Is(err, broker.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "Service shutting down")
	default:
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}

// sanitizeUser strips the password hash before a user leaves the API.
func sanitizeUser(u tourney.User) tourney.User {
	u.HashedPassword = ""
	return u
}

func sanitizeUsers(us []tourney.User) []tourney.User {
	out := make([]tourney.User, len(us))
	for i, u := range us {
		out[i] = sanitizeUser(u)
	}
	return out
}
