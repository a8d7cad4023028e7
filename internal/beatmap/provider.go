package beatmap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DAYGoodTime/nogu/internal/broker"
	"github.com/DAYGoodTime/nogu/pkg/log"
)

// Provider answers beatmap lookups: local store first, then the upstream
// API, persisting whatever the upstream returns. Its Run method is the
// operation body handed to the broker.
type Provider struct {
	store  *Store
	client *Client
	logger log.Logger
	now    func() time.Time
}

func NewProvider(store *Store, client *Client, logger log.Logger) *Provider {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Provider{
		store:  store,
		client: client,
		logger: logger.WithComponent("beatmaps"),
		now:    time.Now,
	}
}

// Lookup resolves an identifier against the local store only.
func (p *Provider) Lookup(ctx context.Context, ident Ident) (Beatmap, error) {
	return p.store.ByIdent(ident)
}

// Run resolves one identifier for the broker. A missing map upstream is a
// failure result, not an error; errors are reserved for faults (bad store,
// unreachable upstream) and are normalized by the broker itself.
func (p *Provider) Run(ctx context.Context, session broker.Session, key broker.Key) (broker.Result, error) {
	ident := Ident(key)
	if !ident.Valid() {
		return broker.Failure(key, "invalid beatmap identifier"), nil
	}

	m, err := p.store.ByIdent(ident)
	if err == nil {
		return broker.Success(key, m), nil
	}
	if !errors.Is(err, ErrNotFound) {
		return broker.Result{}, fmt.Errorf("beatmap read: %w", err)
	}

	rows, err := p.client.GetBeatmaps(ctx, ident)
	if err != nil {
		return broker.Result{}, fmt.Errorf("beatmap fetch: %w", err)
	}
	if len(rows) == 0 {
		return broker.Failure(key, "beatmap not found"), nil
	}

	now := p.now().UTC()
	for i := range rows {
		rows[i].UpdatedAt = now
	}
	if err := p.store.Put(ctx, rows...); err != nil {
		return broker.Result{}, fmt.Errorf("beatmap save: %w", err)
	}
	p.logger.Info("fetched beatmaps",
		log.Str("ident", string(ident)), log.Int("count", len(rows)))

	m, err = p.store.ByIdent(ident)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// The upstream answered with rows that do not include the
			// requested ident.
			return broker.Failure(key, "beatmap not found"), nil
		}
		return broker.Result{}, fmt.Errorf("beatmap read: %w", err)
	}
	return broker.Success(key, m), nil
}
