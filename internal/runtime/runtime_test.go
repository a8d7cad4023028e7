package runtime

import (
	"context"
	"testing"

	"github.com/DAYGoodTime/nogu/internal/beatmap"
	cfgpkg "github.com/DAYGoodTime/nogu/internal/config"
	"github.com/DAYGoodTime/nogu/internal/tourney"
)

func testConfig(t *testing.T) cfgpkg.Config {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Storage.Fsync = "never"
	return cfg
}

func TestOpenCloseHealth(t *testing.T) {
	rt, err := Open(Options{Config: testConfig(t)})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	defer rt.Close()
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestStoresShareStorage(t *testing.T) {
	rt, err := Open(Options{Config: testConfig(t)})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()
	ctx := context.Background()

	u, err := rt.Tourney().CreateUser(ctx, tourney.User{
		Username: "peppy",
		Email:    "peppy@example.com",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := rt.Tourney().UserByID(u.ID); err != nil {
		t.Fatalf("user by id: %v", err)
	}

	err = rt.Beatmaps().Put(ctx, beatmap.Beatmap{
		MD5: "aaaabbbbccccddddeeeeffff00001111",
		ID:  75,
	})
	if err != nil {
		t.Fatalf("put beatmap: %v", err)
	}
	if _, err := rt.Beatmaps().ByID(75); err != nil {
		t.Fatalf("beatmap by id: %v", err)
	}
}

func TestOpenRejectsBadFsyncMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Fsync = "sometimes"
	if _, err := Open(Options{Config: cfg}); err == nil {
		t.Fatal("expected error for bad fsync mode")
	}
}
