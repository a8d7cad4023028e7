package tourney

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DAYGoodTime/nogu/pkg/id"
)

// CreateUser persists a new user. Username and email must be unique; the
// uniqueness indexes are case-insensitive.
func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	if u.Username == "" {
		return User{}, errors.New("tourney: username required")
	}
	if u.Email == "" {
		return User{}, errors.New("tourney: email required")
	}

	nameKey := userNameKey(strings.ToLower(u.Username))
	emailKey := userEmailKey(strings.ToLower(u.Email))
	if taken, err := s.db.Has(nameKey); err != nil {
		return User{}, err
	} else if taken {
		return User{}, ErrUsernameTaken
	}
	if taken, err := s.db.Has(emailKey); err != nil {
		return User{}, err
	} else if taken {
		return User{}, ErrEmailTaken
	}

	u.ID = s.ids.Next()
	u.CreatedAt = s.now().UTC()
	u.UpdatedAt = u.CreatedAt
	if u.Privileges == 0 {
		u.Privileges = 1
	}

	raw, err := json.Marshal(u)
	if err != nil {
		return User{}, err
	}
	b := s.db.NewBatch()
	if err := b.Set(userKey(u.ID), raw, nil); err != nil {
		return User{}, err
	}
	if err := b.Set(nameKey, u.ID.Bytes(), nil); err != nil {
		return User{}, err
	}
	if err := b.Set(emailKey, u.ID.Bytes(), nil); err != nil {
		return User{}, err
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return User{}, err
	}
	return u, nil
}

// UserByID loads one user.
func (s *Store) UserByID(uid id.ID) (User, error) {
	var u User
	if err := s.getJSON(userKey(uid), &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// UserByName resolves a username case-insensitively.
func (s *Store) UserByName(username string) (User, error) {
	ref, err := s.db.Get(userNameKey(strings.ToLower(username)))
	if err != nil {
		return User{}, mapNotFound(err)
	}
	var u User
	if err := s.resolve(ref, userKey, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// UserByEmail resolves an email case-insensitively.
func (s *Store) UserByEmail(email string) (User, error) {
	ref, err := s.db.Get(userEmailKey(strings.ToLower(email)))
	if err != nil {
		return User{}, mapNotFound(err)
	}
	var u User
	if err := s.resolve(ref, userKey, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// UpdateUser rewrites a user row, moving the uniqueness indexes when the
// username or email changed.
func (s *Store) UpdateUser(ctx context.Context, u User) (User, error) {
	prev, err := s.UserByID(u.ID)
	if err != nil {
		return User{}, err
	}

	b := s.db.NewBatch()
	if !strings.EqualFold(prev.Username, u.Username) {
		nameKey := userNameKey(strings.ToLower(u.Username))
		if taken, err := s.db.Has(nameKey); err != nil {
			return User{}, err
		} else if taken {
			return User{}, ErrUsernameTaken
		}
		if err := b.Delete(userNameKey(strings.ToLower(prev.Username)), nil); err != nil {
			return User{}, err
		}
		if err := b.Set(nameKey, u.ID.Bytes(), nil); err != nil {
			return User{}, err
		}
	}
	if !strings.EqualFold(prev.Email, u.Email) {
		emailKey := userEmailKey(strings.ToLower(u.Email))
		if taken, err := s.db.Has(emailKey); err != nil {
			return User{}, err
		} else if taken {
			return User{}, ErrEmailTaken
		}
		if err := b.Delete(userEmailKey(strings.ToLower(prev.Email)), nil); err != nil {
			return User{}, err
		}
		if err := b.Set(emailKey, u.ID.Bytes(), nil); err != nil {
			return User{}, err
		}
	}

	u.CreatedAt = prev.CreatedAt
	u.UpdatedAt = s.now().UTC()
	raw, err := json.Marshal(u)
	if err != nil {
		return User{}, err
	}
	if err := b.Set(userKey(u.ID), raw, nil); err != nil {
		return User{}, err
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return User{}, err
	}
	return u, nil
}

// ListUsers returns every user in creation order.
func (s *Store) ListUsers() ([]User, error) {
	var out []User
	err := s.scan(userPrefix(), func(_, val []byte) error {
		var u User
		if err := json.Unmarshal(val, &u); err != nil {
			return err
		}
		out = append(out, u)
		return nil
	})
	return out, err
}

// AddAccount links an osu! server identity to a user.
func (s *Store) AddAccount(ctx context.Context, a UserAccount) (UserAccount, error) {
	if _, err := s.UserByID(a.UserID); err != nil {
		return UserAccount{}, fmt.Errorf("account owner: %w", err)
	}
	a.ID = s.ids.Next()
	a.CheckedAt = s.now().UTC()
	if err := s.setJSON(acctKey(a.UserID, a.ID), a); err != nil {
		return UserAccount{}, err
	}
	return a, nil
}

// AccountsByUser lists a user's linked server identities.
func (s *Store) AccountsByUser(uid id.ID) ([]UserAccount, error) {
	var out []UserAccount
	err := s.scan(acctPrefix(uid), func(_, val []byte) error {
		var a UserAccount
		if err := json.Unmarshal(val, &a); err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	return out, err
}
