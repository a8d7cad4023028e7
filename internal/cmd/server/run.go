package serverrun

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cfgpkg "github.com/DAYGoodTime/nogu/internal/config"
	"github.com/DAYGoodTime/nogu/internal/runtime"
	httpserver "github.com/DAYGoodTime/nogu/internal/server/http"
	beatmapsvc "github.com/DAYGoodTime/nogu/internal/services/beatmaps"
	tourneysvc "github.com/DAYGoodTime/nogu/internal/services/tourney"
	logpkg "github.com/DAYGoodTime/nogu/pkg/log"
)

// Options configures one server process.
type Options struct {
	Config cfgpkg.Config
}

// Run opens storage, wires the services, and serves HTTP until ctx is
// cancelled. Shutdown order matters: the listener drains first, then the
// beatmap operator, then the store.
func Run(ctx context.Context, opts Options) error {
	// Layer a local signal context over the provided one so Run behaves the
	// same whether or not the caller installed handlers.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := opts.Config
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = cfgpkg.DefaultDataDir()
	}

	lvl, err := logpkg.ParseLevel(cfg.Logging.Level)
	if err != nil {
		lvl = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormat(cfg.Logging.Format))

	rt, err := runtime.Open(runtime.Options{Config: cfg, Logger: logger})
	if err != nil {
		return err
	}
	defer rt.Close()

	logger.Info("starting nogu server",
		logpkg.Str("http", cfg.Server.HTTPAddr),
		logpkg.Str("data_dir", cfg.Storage.DataDir),
		logpkg.Str("fsync", cfg.Storage.Fsync),
		logpkg.Dur("request_interval", cfg.Beatmap.RequestInterval()),
	)

	bm := beatmapsvc.New(rt)
	defer bm.Close()
	tn := tourneysvc.New(rt)

	hsrv := httpserver.New(rt, bm, tn)
	defer hsrv.Close()

	return hsrv.ListenAndServe(sctx, cfg.Server.HTTPAddr)
}
