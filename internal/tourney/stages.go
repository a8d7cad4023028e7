package tourney

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/DAYGoodTime/nogu/pkg/id"
)

// CreateStage starts a team's run through a pool. Every slot of the pool is
// copied into the stage in the same batch, so later pool edits never affect
// an ongoing stage, and the team's active stage moves to the new one.
func (s *Store) CreateStage(ctx context.Context, st Stage) (Stage, error) {
	if st.Name == "" {
		return Stage{}, errors.New("tourney: stage name required")
	}
	team, err := s.TeamByID(st.TeamID)
	if err != nil {
		return Stage{}, err
	}
	pool, err := s.PoolByID(st.PoolID)
	if err != nil {
		return Stage{}, err
	}
	poolMaps, err := s.PoolMaps(pool.ID)
	if err != nil {
		return Stage{}, err
	}

	st.ID = s.ids.Next()
	st.Mode = pool.Mode
	if st.Formula == 0 {
		st.Formula = BanchoFormulaID
	}
	if _, ok := FormulaByID(st.Formula); !ok {
		return Stage{}, errors.New("tourney: unknown formula")
	}
	st.CreatedAt = s.now().UTC()
	st.UpdatedAt = st.CreatedAt

	stageRaw, err := json.Marshal(st)
	if err != nil {
		return Stage{}, err
	}

	b := s.db.NewBatch()
	if err := b.Set(stageKey(st.ID), stageRaw, nil); err != nil {
		return Stage{}, err
	}
	if err := b.Set(teamStageKey(st.TeamID, st.ID), st.ID.Bytes(), nil); err != nil {
		return Stage{}, err
	}
	for _, pm := range poolMaps {
		sm := StageMap{
			ID:       s.ids.Next(),
			StageID:  st.ID,
			MapEntry: pm.MapEntry,
		}
		raw, err := json.Marshal(sm)
		if err != nil {
			return Stage{}, err
		}
		if err := b.Set(stageMapKey(st.ID, sm.MapMD5), raw, nil); err != nil {
			return Stage{}, err
		}
	}

	team.ActiveStageID = st.ID
	teamRaw, err := json.Marshal(team)
	if err != nil {
		return Stage{}, err
	}
	if err := b.Set(teamKey(team.ID), teamRaw, nil); err != nil {
		return Stage{}, err
	}

	if err := s.db.CommitBatch(ctx, b); err != nil {
		return Stage{}, err
	}
	return st, nil
}

// StageByID loads one stage.
func (s *Store) StageByID(sid id.ID) (Stage, error) {
	var st Stage
	if err := s.getJSON(stageKey(sid), &st); err != nil {
		return Stage{}, err
	}
	return st, nil
}

// StagesByTeam lists a team's stages in creation order.
func (s *Store) StagesByTeam(tid id.ID) ([]Stage, error) {
	var out []Stage
	err := s.scan(teamStagePrefix(tid), func(_, val []byte) error {
		var st Stage
		if err := s.resolve(val, stageKey, &st); err != nil {
			return err
		}
		out = append(out, st)
		return nil
	})
	return out, err
}

// StageMaps lists a stage's slots.
func (s *Store) StageMaps(sid id.ID) ([]StageMap, error) {
	var out []StageMap
	err := s.scan(stageMapPrefix(sid), func(_, val []byte) error {
		var sm StageMap
		if err := json.Unmarshal(val, &sm); err != nil {
			return err
		}
		out = append(out, sm)
		return nil
	})
	return out, err
}

// StageMapByMD5 finds the slot of a stage holding the given beatmap.
func (s *Store) StageMapByMD5(sid id.ID, md5 string) (StageMap, error) {
	var sm StageMap
	if err := s.getJSON(stageMapKey(sid, md5), &sm); err != nil {
		return StageMap{}, err
	}
	return sm, nil
}
