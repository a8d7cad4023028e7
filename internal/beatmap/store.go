package beatmap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pebblestore "github.com/DAYGoodTime/nogu/internal/storage/pebble"
)

// ErrNotFound reports that no stored beatmap matches the identifier.
var ErrNotFound = errors.New("beatmap not found")

// Store persists beatmaps in Pebble. Rows live under bm/md5/{md5}; a
// secondary index bm/id/{id} maps numeric beatmap ids to their md5.
type Store struct {
	db *pebblestore.DB
}

func NewStore(db *pebblestore.DB) *Store { return &Store{db: db} }

// Put upserts the given beatmaps and their id index entries in one batch.
func (s *Store) Put(ctx context.Context, maps ...Beatmap) error {
	if len(maps) == 0 {
		return nil
	}
	b := s.db.NewBatch()
	for _, m := range maps {
		if m.MD5 == "" {
			return errors.New("beatmap md5 is empty")
		}
		enc, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode beatmap %s: %w", m.MD5, err)
		}
		if err := b.Set(md5Key(m.MD5), enc, nil); err != nil {
			return err
		}
		if m.ID != 0 {
			if err := b.Set(idKey(m.ID), []byte(m.MD5), nil); err != nil {
				return err
			}
		}
	}
	return s.db.CommitBatch(ctx, b)
}

// ByMD5 loads a beatmap by its hash.
func (s *Store) ByMD5(md5 string) (Beatmap, error) {
	raw, err := s.db.Get(md5Key(md5))
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return Beatmap{}, ErrNotFound
		}
		return Beatmap{}, err
	}
	var m Beatmap
	if err := json.Unmarshal(raw, &m); err != nil {
		return Beatmap{}, fmt.Errorf("decode beatmap %s: %w", md5, err)
	}
	return m, nil
}

// ByID loads a beatmap by its numeric id via the secondary index.
func (s *Store) ByID(id int64) (Beatmap, error) {
	md5, err := s.db.Get(idKey(id))
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return Beatmap{}, ErrNotFound
		}
		return Beatmap{}, err
	}
	return s.ByMD5(string(md5))
}

// ByIdent resolves either kind of identifier. Invalid idents report ErrNotFound.
func (s *Store) ByIdent(ident Ident) (Beatmap, error) {
	switch {
	case ident.IsMD5():
		return s.ByMD5(string(ident))
	case ident.IsID():
		return s.ByID(ident.ID())
	default:
		return Beatmap{}, ErrNotFound
	}
}
