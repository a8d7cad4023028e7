package tourney

import (
	"context"
	"errors"
	"testing"

	"github.com/DAYGoodTime/nogu/internal/osu"
	"github.com/DAYGoodTime/nogu/pkg/id"
)

func TestInsertScoreAndIndexes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "player")
	team := seedTeam(t, s, "squad", u)
	pool := seedPool(t, s, "week1", u)
	seedPoolMap(t, s, pool, "aaaabbbbccccddddeeeeffff00001111", "")
	st := seedStage(t, s, "run", team, pool)

	first, err := s.InsertScore(ctx, Score{
		UserID:       u.ID,
		StageID:      st.ID,
		BeatmapMD5:   "aaaabbbbccccddddeeeeffff00001111",
		Score:        734212,
		Accuracy:     97.3,
		HighestCombo: 512,
		Mods:         osu.ModHidden,
		Grade:        "A",
		Mode:         osu.ModeOsu,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if first.ID.IsZero() || first.CreatedAt.IsZero() {
		t.Fatalf("score not stamped: %+v", first)
	}

	second, err := s.InsertScore(ctx, Score{
		UserID:       u.ID,
		StageID:      st.ID,
		BeatmapMD5:   "aaaabbbbccccddddeeeeffff00001111",
		Score:        812001,
		Accuracy:     98.1,
		HighestCombo: 600,
		Grade:        "S",
		Mode:         osu.ModeOsu,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	byStage, err := s.ScoresByStage(st.ID)
	if err != nil {
		t.Fatalf("by stage: %v", err)
	}
	if len(byStage) != 2 || byStage[0].ID != first.ID || byStage[1].ID != second.ID {
		t.Fatalf("stage scores out of order: %+v", byStage)
	}

	byUser, err := s.ScoresByUser(u.ID)
	if err != nil {
		t.Fatalf("by user: %v", err)
	}
	if len(byUser) != 2 {
		t.Fatalf("user scores = %d, want 2", len(byUser))
	}

	got, err := s.ScoreByID(first.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if got.Mods != osu.ModHidden || got.Grade != "A" {
		t.Fatalf("score = %+v", got)
	}
}

func TestInsertScoreValidates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertScore(ctx, Score{StageID: id.ID{1}, UserID: id.ID{2}}); err == nil {
		t.Fatal("expected error for missing md5")
	}
	if _, err := s.InsertScore(ctx, Score{BeatmapMD5: "x", UserID: id.ID{2}}); err == nil {
		t.Fatal("expected error for missing stage")
	}
	if _, err := s.InsertScore(ctx, Score{BeatmapMD5: "x", StageID: id.ID{1}}); err == nil {
		t.Fatal("expected error for missing user")
	}
}

func TestScoreConditionVariables(t *testing.T) {
	sc := Score{
		Accuracy:     96.5,
		HighestCombo: 444,
		Mods:         osu.ModHidden | osu.ModHardRock,
		Score:        654321,
	}
	vars := sc.ConditionVariables()
	if vars.Acc != 96.5 || vars.MaxCombo != 444 || vars.Score != 654321 {
		t.Fatalf("vars = %+v", vars)
	}
	if !vars.Mods.Has(osu.ModHidden) || !vars.Mods.Has(osu.ModHardRock) {
		t.Fatalf("mods = %v", vars.Mods)
	}
}

func TestErrConditionNotMetIsDistinct(t *testing.T) {
	if errors.Is(ErrConditionNotMet, ErrNotFound) {
		t.Fatal("sentinels must be distinct")
	}
}
