package tourney

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DAYGoodTime/nogu/internal/rules"
	"github.com/DAYGoodTime/nogu/pkg/id"
)

// CreatePool persists a new map pool owned by creatorID.
func (s *Store) CreatePool(ctx context.Context, p Pool, creatorID id.ID) (Pool, error) {
	if p.Name == "" {
		return Pool{}, errors.New("tourney: pool name required")
	}
	if _, err := s.UserByID(creatorID); err != nil {
		return Pool{}, err
	}

	p.ID = s.ids.Next()
	p.CreatorID = creatorID
	p.CreatedAt = s.now().UTC()
	p.UpdatedAt = p.CreatedAt
	if err := s.setJSON(poolKey(p.ID), p); err != nil {
		return Pool{}, err
	}
	return p, nil
}

// PoolByID loads one pool.
func (s *Store) PoolByID(pid id.ID) (Pool, error) {
	var p Pool
	if err := s.getJSON(poolKey(pid), &p); err != nil {
		return Pool{}, err
	}
	return p, nil
}

// UpdatePool rewrites a pool row, keeping creator and creation time.
func (s *Store) UpdatePool(ctx context.Context, p Pool) (Pool, error) {
	prev, err := s.PoolByID(p.ID)
	if err != nil {
		return Pool{}, err
	}
	p.CreatorID = prev.CreatorID
	p.CreatedAt = prev.CreatedAt
	p.UpdatedAt = s.now().UTC()
	if err := s.setJSON(poolKey(p.ID), p); err != nil {
		return Pool{}, err
	}
	return p, nil
}

// ListPools returns every pool in creation order.
func (s *Store) ListPools() ([]Pool, error) {
	var out []Pool
	err := s.scan(poolPrefix(), func(_, val []byte) error {
		var p Pool
		if err := json.Unmarshal(val, &p); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

// AddPoolMap appends a map slot to a pool. The slot's condition must
// compile; the pool's updated_at is bumped in the same batch.
func (s *Store) AddPoolMap(ctx context.Context, pm PoolMap) (PoolMap, error) {
	pool, err := s.PoolByID(pm.PoolID)
	if err != nil {
		return PoolMap{}, err
	}
	if pm.MapMD5 == "" {
		return PoolMap{}, errors.New("tourney: pool map md5 required")
	}
	if err := rules.Validate(pm.ConditionAST); err != nil {
		return PoolMap{}, fmt.Errorf("%w: %v", ErrBadCondition, err)
	}

	pm.ID = s.ids.Next()
	raw, err := json.Marshal(pm)
	if err != nil {
		return PoolMap{}, err
	}
	pool.UpdatedAt = s.now().UTC()
	poolRaw, err := json.Marshal(pool)
	if err != nil {
		return PoolMap{}, err
	}

	b := s.db.NewBatch()
	if err := b.Set(poolMapKey(pm.PoolID, pm.ID), raw, nil); err != nil {
		return PoolMap{}, err
	}
	if err := b.Set(poolKey(pool.ID), poolRaw, nil); err != nil {
		return PoolMap{}, err
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return PoolMap{}, err
	}
	return pm, nil
}

// RemovePoolMap deletes one slot from a pool.
func (s *Store) RemovePoolMap(ctx context.Context, pid, mid id.ID) error {
	key := poolMapKey(pid, mid)
	if ok, err := s.db.Has(key); err != nil {
		return err
	} else if !ok {
		return ErrNotFound
	}
	return s.db.Delete(key)
}

// PoolMaps lists a pool's slots in the order they were added.
func (s *Store) PoolMaps(pid id.ID) ([]PoolMap, error) {
	var out []PoolMap
	err := s.scan(poolMapPrefix(pid), func(_, val []byte) error {
		var pm PoolMap
		if err := json.Unmarshal(val, &pm); err != nil {
			return err
		}
		out = append(out, pm)
		return nil
	})
	return out, err
}
