package beatmap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DAYGoodTime/nogu/internal/broker"
)

const siblingRow = `{
	"beatmap_id": "76",
	"beatmapset_id": "1",
	"approved": "1",
	"artist": "Kenji Ninuma",
	"title": "DISCO PRINCE",
	"version": "Hard",
	"creator": "peppy",
	"file_md5": "11112222333344445555666677778888",
	"total_length": "142",
	"max_combo": "420",
	"mode": "0",
	"bpm": "120",
	"diff_size": "4",
	"diff_overall": "7",
	"diff_approach": "7",
	"diff_drain": "6",
	"difficultyrating": "3.1",
	"last_update": "2007-10-06 17:46:31"
}`

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*Provider, *Store) {
	t.Helper()
	store := newTestStore(t)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(ClientOptions{
		MirrorURL:     srv.URL,
		RatePerSecond: 100,
		Burst:         100,
		Timeout:       5 * time.Second,
	})
	return NewProvider(store, client, nil), store
}

func TestProviderLocalHitSkipsUpstream(t *testing.T) {
	var calls atomic.Int64
	p, store := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("[]"))
	})

	m := sampleBeatmap("aaaabbbbccccddddeeeeffff00001111", 75)
	if err := store.Put(context.Background(), m); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := p.Run(context.Background(), "s1", broker.Key(m.MD5))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status != broker.StatusSuccess {
		t.Fatalf("status = %v, want success", res.Status)
	}
	if calls.Load() != 0 {
		t.Fatalf("upstream calls = %d, want 0", calls.Load())
	}
	got, ok := res.Payload.(Beatmap)
	if !ok {
		t.Fatalf("payload type %T", res.Payload)
	}
	if got.MD5 != m.MD5 {
		t.Fatalf("payload md5 = %q, want %q", got.MD5, m.MD5)
	}
}

func TestProviderFetchesAndPersistsWholeSet(t *testing.T) {
	var calls atomic.Int64
	p, store := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("[" + apiRow + "," + siblingRow + "]"))
	})

	res, err := p.Run(context.Background(), "s1", "75")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status != broker.StatusSuccess {
		t.Fatalf("status = %v, want success", res.Status)
	}
	got := res.Payload.(Beatmap)
	if got.ID != 75 || got.Version != "Normal" {
		t.Fatalf("payload = %+v, want difficulty 75", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("updated_at not stamped")
	}

	// The sibling difficulty was cached by the same fetch.
	res, err = p.Run(context.Background(), "s1", "76")
	if err != nil {
		t.Fatalf("sibling run: %v", err)
	}
	if res.Status != broker.StatusSuccess {
		t.Fatalf("sibling status = %v, want success", res.Status)
	}
	if calls.Load() != 1 {
		t.Fatalf("upstream calls = %d, want 1", calls.Load())
	}
	if _, err := store.ByMD5("11112222333344445555666677778888"); err != nil {
		t.Fatalf("sibling not persisted: %v", err)
	}
}

func TestProviderUnknownIdentFails(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	})

	res, err := p.Run(context.Background(), "s1", "424242")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status != broker.StatusFailure {
		t.Fatalf("status = %v, want failure", res.Status)
	}
	if res.Err != "beatmap not found" {
		t.Fatalf("err = %q", res.Err)
	}
}

func TestProviderInvalidIdentFails(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be called for invalid idents")
	})

	res, err := p.Run(context.Background(), "s1", "not-a-map")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status != broker.StatusFailure {
		t.Fatalf("status = %v, want failure", res.Status)
	}
}

func TestProviderUpstreamFaultIsError(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})

	if _, err := p.Run(context.Background(), "s1", "75"); err == nil {
		t.Fatal("expected error on upstream fault")
	}
}

func TestProviderLookupIsLocalOnly(t *testing.T) {
	p, store := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("lookup must not reach upstream")
	})

	if _, err := p.Lookup(context.Background(), "75"); err != ErrNotFound {
		t.Fatalf("lookup err = %v, want ErrNotFound", err)
	}
	m := sampleBeatmap("aaaabbbbccccddddeeeeffff00001111", 75)
	if err := store.Put(context.Background(), m); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := p.Lookup(context.Background(), "75"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
}
