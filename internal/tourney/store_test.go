package tourney

import (
	"context"
	"errors"
	"testing"

	"github.com/DAYGoodTime/nogu/internal/osu"
	pebblestore "github.com/DAYGoodTime/nogu/internal/storage/pebble"
	"github.com/DAYGoodTime/nogu/pkg/id"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir: t.TempDir(),
		Fsync:   pebblestore.FsyncModeNever,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db, id.NewGenerator())
}

func seedUser(t *testing.T, s *Store, name string) User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), User{
		Username:       name,
		Email:          name + "@example.com",
		HashedPassword: "x",
		Country:        "JP",
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return u
}

func TestCreateUserAssignsDefaults(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "cookiezi")

	if u.ID.IsZero() {
		t.Fatal("id not assigned")
	}
	if u.Privileges != 1 {
		t.Fatalf("privileges = %d, want 1", u.Privileges)
	}
	if u.CreatedAt.IsZero() || !u.CreatedAt.Equal(u.UpdatedAt) {
		t.Fatalf("timestamps wrong: %v / %v", u.CreatedAt, u.UpdatedAt)
	}

	got, err := s.UserByID(u.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if got.Username != "cookiezi" || got.HashedPassword != "x" {
		t.Fatalf("loaded user = %+v", got)
	}
}

func TestUserUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "cookiezi")

	_, err := s.CreateUser(ctx, User{Username: "Cookiezi", Email: "other@example.com"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("err = %v, want ErrUsernameTaken", err)
	}
	_, err = s.CreateUser(ctx, User{Username: "other", Email: "COOKIEZI@example.com"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestUserLookupByNameAndEmail(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "rafis")

	got, err := s.UserByName("RAFIS")
	if err != nil {
		t.Fatalf("by name: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("by name id = %s, want %s", got.ID, u.ID)
	}

	got, err = s.UserByEmail("rafis@example.com")
	if err != nil {
		t.Fatalf("by email: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("by email id = %s, want %s", got.ID, u.ID)
	}

	if _, err := s.UserByName("nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user err = %v, want ErrNotFound", err)
	}
}

func TestUpdateUserMovesIndexes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "oldname")

	u.Username = "newname"
	u.Country = "PL"
	updated, err := s.UpdateUser(ctx, u)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Fatalf("updated_at behind created_at: %+v", updated)
	}

	if _, err := s.UserByName("oldname"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old name still resolves: %v", err)
	}
	got, err := s.UserByName("newname")
	if err != nil {
		t.Fatalf("new name: %v", err)
	}
	if got.Country != "PL" {
		t.Fatalf("country = %q, want PL", got.Country)
	}

	other := seedUser(t, s, "taken")
	other.Username = "newname"
	if _, err := s.UpdateUser(ctx, other); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("err = %v, want ErrUsernameTaken", err)
	}
}

func TestListUsersCreationOrder(t *testing.T) {
	s := newTestStore(t)
	a := seedUser(t, s, "first")
	b := seedUser(t, s, "second")
	c := seedUser(t, s, "third")

	users, err := s.ListUsers()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("len = %d, want 3", len(users))
	}
	if users[0].ID != a.ID || users[1].ID != b.ID || users[2].ID != c.ID {
		t.Fatalf("order wrong: %s %s %s", users[0].Username, users[1].Username, users[2].Username)
	}
}

func TestAccounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "player")

	a, err := s.AddAccount(ctx, UserAccount{
		UserID:         u.ID,
		ServerID:       osu.ServerBancho,
		ServerUserID:   124493,
		ServerUserName: "player",
	})
	if err != nil {
		t.Fatalf("add account: %v", err)
	}
	if a.ID.IsZero() || a.CheckedAt.IsZero() {
		t.Fatalf("account fields not stamped: %+v", a)
	}

	accts, err := s.AccountsByUser(u.ID)
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}
	if len(accts) != 1 || accts[0].ServerUserID != 124493 {
		t.Fatalf("accounts = %+v", accts)
	}

	if _, err := s.AddAccount(ctx, UserAccount{UserID: id.ID{1}}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("orphan account err = %v, want ErrNotFound", err)
	}
}
