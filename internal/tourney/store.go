package tourney

import (
	"encoding/json"
	"errors"
	"time"

	pebblestore "github.com/DAYGoodTime/nogu/internal/storage/pebble"
	"github.com/DAYGoodTime/nogu/pkg/id"
)

// Store persists tournament entities in Pebble. Entity ids are sortable, so
// prefix scans return rows in creation order.
type Store struct {
	db  *pebblestore.DB
	ids *id.Generator
	now func() time.Time
}

func NewStore(db *pebblestore.DB, ids *id.Generator) *Store {
	return &Store{db: db, ids: ids, now: time.Now}
}

func (s *Store) getJSON(key []byte, out any) error {
	raw, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal(raw, out)
}

func (s *Store) setJSON(key []byte, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Set(key, raw)
}

// scan walks every key under prefix in order.
func (s *Store) scan(prefix []byte, fn func(key, val []byte) error) error {
	it, err := s.db.NewPrefixIter(prefix)
	if err != nil {
		return err
	}
	for ok := it.First(); ok; ok = it.Next() {
		if err := fn(it.Key(), it.Value()); err != nil {
			_ = it.Close()
			return err
		}
	}
	return it.Close()
}

// resolve follows an index row holding a 16-byte id to the primary row.
func (s *Store) resolve(val []byte, keyFn func(id.ID) []byte, out any) error {
	ref, err := id.FromBytes(val)
	if err != nil {
		return err
	}
	return s.getJSON(keyFn(ref), out)
}

func mapNotFound(err error) error {
	if errors.Is(err, pebblestore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
