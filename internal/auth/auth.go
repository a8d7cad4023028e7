package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	pebblestore "github.com/DAYGoodTime/nogu/internal/storage/pebble"
	"github.com/DAYGoodTime/nogu/pkg/id"
)

// ErrTokenInvalid reports an unknown, revoked, or expired token.
var ErrTokenInvalid = errors.New("auth: invalid token")

// defaultTTL is how long issued tokens stay valid.
const defaultTTL = 72 * time.Hour

// Token is one bearer session.
type Token struct {
	Value     string    `json:"value"`
	UserID    id.ID     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HashPassword derives a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("auth: empty password")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword compares a stored hash against a candidate password.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Store keeps bearer tokens in Pebble under auth/tok/{token}.
type Store struct {
	db  *pebblestore.DB
	ttl time.Duration
	now func() time.Time
}

func NewStore(db *pebblestore.DB) *Store {
	return &Store{db: db, ttl: defaultTTL, now: time.Now}
}

func tokenKey(token string) []byte {
	// auth/tok/{token}
	b := make([]byte, 0, len(token)+9)
	b = append(b, 'a', 'u', 't', 'h', '/', 't', 'o', 'k', '/')
	b = append(b, token...)
	return b
}

// Issue creates a fresh token for uid.
func (s *Store) Issue(ctx context.Context, uid id.ID) (Token, error) {
	now := s.now().UTC()
	t := Token{
		Value:     uuid.NewString(),
		UserID:    uid,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return Token{}, err
	}
	if err := s.db.Set(tokenKey(t.Value), raw); err != nil {
		return Token{}, err
	}
	return t, nil
}

// Resolve validates a bearer token. Expired tokens are deleted on sight.
func (s *Store) Resolve(token string) (Token, error) {
	if token == "" {
		return Token{}, ErrTokenInvalid
	}
	raw, err := s.db.Get(tokenKey(token))
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return Token{}, ErrTokenInvalid
		}
		return Token{}, err
	}
	var t Token
	if err := json.Unmarshal(raw, &t); err != nil {
		return Token{}, err
	}
	if s.now().UTC().After(t.ExpiresAt) {
		_ = s.db.Delete(tokenKey(token))
		return Token{}, ErrTokenInvalid
	}
	return t, nil
}

// Revoke drops a token. Revoking an unknown token is not an error.
func (s *Store) Revoke(ctx context.Context, token string) error {
	return s.db.Delete(tokenKey(token))
}
