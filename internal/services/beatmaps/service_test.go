package beatmapsvc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DAYGoodTime/nogu/internal/broker"
	cfgpkg "github.com/DAYGoodTime/nogu/internal/config"
	"github.com/DAYGoodTime/nogu/internal/runtime"
)

const apiRow = `{
	"beatmap_id": "75",
	"beatmapset_id": "1",
	"approved": "1",
	"artist": "Kenji Ninuma",
	"title": "DISCO PRINCE",
	"version": "Normal",
	"creator": "peppy",
	"file_md5": "aaaabbbbccccddddeeeeffff00001111",
	"total_length": "142",
	"max_combo": "314",
	"mode": "0",
	"bpm": "120",
	"diff_size": "4",
	"diff_overall": "6",
	"diff_approach": "6",
	"diff_drain": "6",
	"difficultyrating": "2.4",
	"last_update": "2007-10-06 17:46:31"
}`

type captureSink struct {
	ctx     context.Context
	mu      sync.Mutex
	got     []broker.Result
	flushes int
}

func (c *captureSink) Send(r broker.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, r)
	return nil
}

func (c *captureSink) Context() context.Context { return c.ctx }

func (c *captureSink) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushes++
	return nil
}

func (c *captureSink) results() []broker.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]broker.Result, len(c.got))
	copy(out, c.got)
	return out
}

func newTestService(t *testing.T, upstream http.HandlerFunc) (*Service, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		upstream(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := cfgpkg.Default()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Storage.Fsync = "never"
	cfg.OsuAPI.MirrorURL = srv.URL
	cfg.OsuAPI.RatePerSecond = 100
	cfg.OsuAPI.Burst = 100
	cfg.Beatmap.RequestIntervalSec = 3600
	cfg.Beatmap.PruneAfterMin = 0

	rt, err := runtime.Open(runtime.Options{Config: cfg})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })

	s := New(rt)
	t.Cleanup(s.Close)
	return s, &calls
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRequestDeliversToSubscriber(t *testing.T) {
	s, calls := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[" + apiRow + "]"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	sink := &captureSink{ctx: ctx}
	done := make(chan error, 1)
	go func() { done <- s.Subscribe("sess-1", sink) }()

	if err := s.Request(context.Background(), "sess-1", "75"); err != nil {
		t.Fatalf("request: %v", err)
	}

	waitFor(t, "result delivery", func() bool { return len(sink.results()) == 1 })
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	res := sink.results()[0]
	if res.Key != "75" || res.Status != broker.StatusSuccess {
		t.Fatalf("result = %+v", res)
	}
	if calls.Load() != 1 {
		t.Fatalf("upstream calls = %d, want 1", calls.Load())
	}
}

func TestRepeatInsideCooldownReplaysCache(t *testing.T) {
	s, calls := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[" + apiRow + "]"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := &captureSink{ctx: ctx}
	done := make(chan error, 1)
	go func() { done <- s.Subscribe("sess-1", sink) }()

	if err := s.Request(context.Background(), "sess-1", "75"); err != nil {
		t.Fatalf("request: %v", err)
	}
	waitFor(t, "first delivery", func() bool { return len(sink.results()) == 1 })

	if err := s.Request(context.Background(), "sess-1", "75"); err != nil {
		t.Fatalf("repeat request: %v", err)
	}
	waitFor(t, "replayed delivery", func() bool { return len(sink.results()) == 2 })

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("upstream calls = %d, want 1 (second answered from cache)", calls.Load())
	}
	st := s.Stats()
	if st.Throttled != 1 {
		t.Fatalf("throttled = %d, want 1", st.Throttled)
	}
}

func TestLookupIsLocalOnly(t *testing.T) {
	s, calls := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[" + apiRow + "]"))
	})

	if _, err := s.Lookup(context.Background(), "75"); err == nil {
		t.Fatal("expected miss before any fetch")
	}
	if calls.Load() != 0 {
		t.Fatalf("lookup reached upstream: %d calls", calls.Load())
	}
}

func TestSecondSubscriberRejected(t *testing.T) {
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[" + apiRow + "]"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := &captureSink{ctx: ctx}
	done := make(chan error, 1)
	go func() { done <- s.Subscribe("sess-1", sink) }()

	// A delivered result proves the first subscriber owns the session slot.
	if err := s.Request(context.Background(), "sess-1", "75"); err != nil {
		t.Fatalf("request: %v", err)
	}
	waitFor(t, "slot ownership", func() bool { return len(sink.results()) == 1 })

	ctx2, cancel2 := context.WithCancel(context.Background())
	cancel2()
	if err := s.Subscribe("sess-1", &captureSink{ctx: ctx2}); err != broker.ErrStreamActive {
		t.Fatalf("second subscribe err = %v, want ErrStreamActive", err)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("subscribe: %v", err)
	}
}
