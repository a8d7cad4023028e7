package beatmapsvc

import (
	"context"
	"sync"
	"time"

	"github.com/DAYGoodTime/nogu/internal/beatmap"
	"github.com/DAYGoodTime/nogu/internal/broker"
	"github.com/DAYGoodTime/nogu/internal/runtime"
	logpkg "github.com/DAYGoodTime/nogu/pkg/log"
)

// janitorInterval is how often idle broker state is swept.
const janitorInterval = time.Minute

// Service mediates beatmap lookups through the broker: concurrent requests
// for one ident coalesce onto a single upstream fetch, repeats inside the
// cooldown replay the cached result, and outcomes stream back to each
// session's subscriber.
type Service struct {
	rt       *runtime.Runtime
	logger   logpkg.Logger
	provider *beatmap.Provider
	op       *broker.Operator

	pruneAfter time.Duration
	stopCh     chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// New returns a Service using a default logger.
func New(rt *runtime.Runtime) *Service {
	return NewWithLogger(rt, rt.Logger())
}

// NewWithLogger constructs the service with an injected logger.
func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewNop()
	}
	cfg := rt.Config()

	client := beatmap.NewClient(beatmap.ClientOptions{
		Key:           cfg.OsuAPI.Key,
		BanchoURL:     cfg.OsuAPI.BanchoURL,
		MirrorURL:     cfg.OsuAPI.MirrorURL,
		RatePerSecond: cfg.OsuAPI.RatePerSecond,
		Burst:         cfg.OsuAPI.Burst,
		Timeout:       cfg.OsuAPI.Timeout(),
		Logger:        logger,
	})
	provider := beatmap.NewProvider(rt.Beatmaps(), client, logger)

	policy, err := broker.ParseSkipPolicy(cfg.Beatmap.SkipPolicy)
	if err != nil {
		policy = broker.SkipReplay
	}
	op := broker.New(provider.Run, broker.Options{
		Interval:   cfg.Beatmap.RequestInterval(),
		SkipPolicy: policy,
		MailboxCap: cfg.Beatmap.MailboxCap,
		Logger:     logger,
	})

	s := &Service{
		rt:         rt,
		logger:     logger.WithComponent("beatmapsvc"),
		provider:   provider,
		op:         op,
		pruneAfter: cfg.Beatmap.PruneAfter(),
		stopCh:     make(chan struct{}),
	}
	if s.pruneAfter > 0 {
		s.wg.Add(1)
		go s.janitor()
	}
	return s
}

// Lookup resolves an ident against the local store only.
func (s *Service) Lookup(ctx context.Context, ident string) (beatmap.Beatmap, error) {
	return s.provider.Lookup(ctx, beatmap.Ident(ident).Canonical())
}

// Request queues one ident for session. Results arrive on the session's
// subscriber, not here.
func (s *Service) Request(ctx context.Context, session, ident string) error {
	key := broker.Key(beatmap.Ident(ident).Canonical())
	return s.op.Submit(ctx, broker.Session(session), key)
}

// Subscribe attaches sink as the session's single consumer and blocks until
// the sink's context ends. A second concurrent subscriber for the same
// session is rejected with broker.ErrStreamActive.
func (s *Service) Subscribe(session string, sink broker.EventSink) error {
	return s.op.Subscribe(broker.Session(session), sink)
}

// Interval reports the configured per-key cooldown.
func (s *Service) Interval() time.Duration { return s.op.Interval() }

// Stats snapshots broker counters.
func (s *Service) Stats() broker.Stats { return s.op.Stats() }

func (s *Service) janitor() {
	defer s.wg.Done()
	tick := time.NewTicker(janitorInterval)
	defer tick.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-tick.C:
			entries, boxes := s.op.Prune(s.pruneAfter)
			if entries > 0 || boxes > 0 {
				s.logger.Debug("pruned idle broker state",
					logpkg.Int("ledger_entries", entries),
					logpkg.Int("mailboxes", boxes))
			}
		}
	}
}

// Close stops the janitor, waits for in-flight lookups, and shuts the
// broker down. Subscribers drain their queued results and return.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		s.op.Close()
	})
}
