package tourney

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/DAYGoodTime/nogu/pkg/id"
)

// InsertScore persists a score with its stage and user index rows. Callers
// are expected to have gated the score on its stage map condition first.
func (s *Store) InsertScore(ctx context.Context, sc Score) (Score, error) {
	if sc.BeatmapMD5 == "" {
		return Score{}, errors.New("tourney: score beatmap md5 required")
	}
	if sc.StageID.IsZero() {
		return Score{}, errors.New("tourney: score stage required")
	}
	if sc.UserID.IsZero() {
		return Score{}, errors.New("tourney: score user required")
	}

	sc.ID = s.ids.Next()
	sc.CreatedAt = s.now().UTC()
	raw, err := json.Marshal(sc)
	if err != nil {
		return Score{}, err
	}

	b := s.db.NewBatch()
	if err := b.Set(scoreKey(sc.ID), raw, nil); err != nil {
		return Score{}, err
	}
	if err := b.Set(stageScoreKey(sc.StageID, sc.ID), sc.ID.Bytes(), nil); err != nil {
		return Score{}, err
	}
	if err := b.Set(userScoreKey(sc.UserID, sc.ID), sc.ID.Bytes(), nil); err != nil {
		return Score{}, err
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return Score{}, err
	}
	return sc, nil
}

// ScoreByID loads one score.
func (s *Store) ScoreByID(scid id.ID) (Score, error) {
	var sc Score
	if err := s.getJSON(scoreKey(scid), &sc); err != nil {
		return Score{}, err
	}
	return sc, nil
}

// ScoresByStage lists a stage's scores in submission order.
func (s *Store) ScoresByStage(sid id.ID) ([]Score, error) {
	var out []Score
	err := s.scan(stageScorePrefix(sid), func(_, val []byte) error {
		var sc Score
		if err := s.resolve(val, scoreKey, &sc); err != nil {
			return err
		}
		out = append(out, sc)
		return nil
	})
	return out, err
}

// ScoresByUser lists a user's scores in submission order.
func (s *Store) ScoresByUser(uid id.ID) ([]Score, error) {
	var out []Score
	err := s.scan(userScorePrefix(uid), func(_, val []byte) error {
		var sc Score
		if err := s.resolve(val, scoreKey, &sc); err != nil {
			return err
		}
		out = append(out, sc)
		return nil
	})
	return out, err
}
