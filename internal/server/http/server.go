package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/DAYGoodTime/nogu/internal/runtime"
	"github.com/DAYGoodTime/nogu/internal/server/http/controllers"
	beatmapsvc "github.com/DAYGoodTime/nogu/internal/services/beatmaps"
	tourneysvc "github.com/DAYGoodTime/nogu/internal/services/tourney"
	"github.com/DAYGoodTime/nogu/pkg/log"
)

// shutdownGrace bounds how long in-flight requests may finish on shutdown.
const shutdownGrace = 5 * time.Second

// Server is the HTTP front of the service: REST routes for the tournament
// entities plus the SSE/WebSocket result streams.
type Server struct {
	rt     *runtime.Runtime
	logger log.Logger
	srv    *http.Server
	lis    net.Listener
}

// New assembles the router, middleware, and controllers.
func New(rt *runtime.Runtime, bm *beatmapsvc.Service, tn *tourneysvc.Service) *Server {
	logger := rt.Logger().WithComponent("http")

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)
	// Restricted to JSON so event streams are never buffered by compression.
	r.Use(chimw.Compress(5, "application/json"))
	r.Use(cors)
	if cfg := rt.Config().Server; cfg.RatePerSecond > 0 {
		r.Use(rateLimit(newClientLimiter(cfg.RatePerSecond, cfg.RateBurst)))
	}

	controllers.NewRegistry(rt, bm, tn, rt.Logger()).Routes(r)

	return &Server{
		rt:     rt,
		logger: logger,
		srv:    &http.Server{Handler: r},
	}
}

// ListenAndServe serves until ctx is canceled, then drains connections.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.logger.Info("http server listening", log.Str("addr", l.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Handler exposes the assembled router, used by tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Close stops the listener.
func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
