package runtime

import (
	"context"
	"errors"

	"github.com/DAYGoodTime/nogu/internal/auth"
	"github.com/DAYGoodTime/nogu/internal/beatmap"
	cfgpkg "github.com/DAYGoodTime/nogu/internal/config"
	pebblestore "github.com/DAYGoodTime/nogu/internal/storage/pebble"
	"github.com/DAYGoodTime/nogu/internal/tourney"
	"github.com/DAYGoodTime/nogu/pkg/id"
	"github.com/DAYGoodTime/nogu/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	Logger log.Logger
}

// Runtime wires storage, config, logging and id generation for a
// single-node instance. Services receive a Runtime and build their stores
// from it.
type Runtime struct {
	db     *pebblestore.DB
	config cfgpkg.Config
	logger log.Logger
	ids    *id.Generator

	beatmaps *beatmap.Store
	tourney  *tourney.Store
	tokens   *auth.Store
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	fsync, err := pebblestore.ParseFsyncMode(opts.Config.Storage.Fsync)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.Config.Storage.DataDir,
		Fsync:         fsync,
		FsyncInterval: opts.Config.Storage.FsyncInterval(),
	})
	if err != nil {
		return nil, err
	}

	ids := id.NewGenerator()
	rt := &Runtime{
		db:       db,
		config:   opts.Config,
		logger:   logger,
		ids:      ids,
		beatmaps: beatmap.NewStore(db),
		tourney:  tourney.NewStore(db, ids),
		tokens:   auth.NewStore(db),
	}
	return rt, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple health check against storage.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	return it.Close()
}

// DB exposes the underlying DB for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// Logger returns the process logger.
func (r *Runtime) Logger() log.Logger { return r.logger }

// IDs returns the shared id generator.
func (r *Runtime) IDs() *id.Generator { return r.ids }

// Beatmaps returns the beatmap store.
func (r *Runtime) Beatmaps() *beatmap.Store { return r.beatmaps }

// Tourney returns the tournament store.
func (r *Runtime) Tourney() *tourney.Store { return r.tourney }

// Tokens returns the bearer token store.
func (r *Runtime) Tokens() *auth.Store { return r.tokens }
