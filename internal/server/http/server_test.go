package httpserver

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	cfgpkg "github.com/DAYGoodTime/nogu/internal/config"
	"github.com/DAYGoodTime/nogu/internal/runtime"
	beatmapsvc "github.com/DAYGoodTime/nogu/internal/services/beatmaps"
	tourneysvc "github.com/DAYGoodTime/nogu/internal/services/tourney"
)

const (
	testMapMD5 = "aaaabbbbccccddddeeeeffff00001111"

	apiRow = `{
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
)

type testEnv struct {
	rt  *runtime.Runtime
	srv *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, "[%s]", apiRow)
	}))
	t.Cleanup(upstream.Close)

	cfg := cfgpkg.Default()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Storage.Fsync = "never"
	cfg.Server.RatePerSecond = 0
	cfg.OsuAPI.MirrorURL = upstream.URL
	cfg.OsuAPI.RatePerSecond = 100
	cfg.OsuAPI.Burst = 100
	cfg.Beatmap.RequestIntervalSec = 3600
	cfg.Beatmap.PruneAfterMin = 0

	rt, err := runtime.Open(runtime.Options{Config: cfg})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	bm := beatmapsvc.New(rt)
	tn := tourneysvc.New(rt)
	srv := httptest.NewServer(New(rt, bm, tn).Handler())
	t.Cleanup(func() {
		srv.Close()
		bm.Close()
		rt.Close()
	})
	return &testEnv{rt: rt, srv: srv}
}

// do sends one JSON request and decodes the response body into out when it
// is non-nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body, out any) *http.Response {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return resp
}

// registerAndLogin creates a user through the API and returns a bearer token.
func (e *testEnv) registerAndLogin(t *testing.T, name string) string {
	t.Helper()
	reg := map[string]string{
		"username": name,
		"email":    name + "@osu.local",
		"password": "correct horse",
		"country":  "KR",
	}
	if resp := e.do(t, http.MethodPost, "/v1/auth/register", "", reg, nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	var lr struct {
		Token string `json:"token"`
	}
	resp := e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"login":    name,
		"password": "correct horse",
	}, &lr)
	if resp.StatusCode != http.StatusOK || lr.Token == "" {
		t.Fatalf("login status = %d, token %q", resp.StatusCode, lr.Token)
	}
	return lr.Token
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t)
	var body map[string]string
	resp := e.do(t, http.MethodGet, "/v1/healthz", "", nil, &body)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthz = %d %v", resp.StatusCode, body)
	}
}

func TestAuthFlow(t *testing.T) {
	e := newTestEnv(t)

	reg := map[string]string{
		"username": "rrtyui",
		"email":    "rrtyui@osu.local",
		"password": "secret words",
	}
	var created map[string]any
	resp := e.do(t, http.MethodPost, "/v1/auth/register", "", reg, &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register = %d", resp.StatusCode)
	}
	if _, leaked := created["hashed_password"]; leaked {
		t.Fatal("register response leaks the password hash")
	}

	if resp := e.do(t, http.MethodPost, "/v1/auth/register", "", reg, nil); resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register = %d, want 409", resp.StatusCode)
	}

	var lr struct {
		Token string `json:"token"`
	}
	if resp := e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"login": "rrtyui", "password": "secret words",
	}, &lr); resp.StatusCode != http.StatusOK {
		t.Fatalf("login = %d", resp.StatusCode)
	}

	var me map[string]any
	if resp := e.do(t, http.MethodGet, "/v1/users/me", lr.Token, nil, &me); resp.StatusCode != http.StatusOK {
		t.Fatalf("me = %d", resp.StatusCode)
	}
	if me["username"] != "rrtyui" {
		t.Fatalf("me username = %v", me["username"])
	}

	if resp := e.do(t, http.MethodGet, "/v1/users/me", "bogus-token", nil, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token me = %d, want 401", resp.StatusCode)
	}

	if resp := e.do(t, http.MethodPost, "/v1/auth/logout", lr.Token, nil, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout = %d", resp.StatusCode)
	}
	if resp := e.do(t, http.MethodGet, "/v1/users/me", lr.Token, nil, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("me after logout = %d, want 401", resp.StatusCode)
	}

	if resp := e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"login": "rrtyui", "password": "wrong",
	}, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password login = %d, want 401", resp.StatusCode)
	}
}

func TestBeatmapLookupIsLocalOnly(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodGet, "/v1/beatmaps/"+testMapMD5, "", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown map = %d, want 404", resp.StatusCode)
	}

	if resp := e.do(t, http.MethodGet, "/v1/beatmaps/zzz", "", nil, nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid ident = %d, want 400", resp.StatusCode)
	}
}

func TestTournamentFlow(t *testing.T) {
	e := newTestEnv(t)
	token := e.registerAndLogin(t, "whitecat")

	var team struct {
		ID string `json:"id"`
	}
	if resp := e.do(t, http.MethodPost, "/v1/teams", token, map[string]any{
		"name": "4 digit club",
	}, &team); resp.StatusCode != http.StatusCreated {
		t.Fatalf("create team = %d", resp.StatusCode)
	}

	var pool struct {
		ID string `json:"id"`
	}
	if resp := e.do(t, http.MethodPost, "/v1/pools", token, map[string]any{
		"name": "quals", "mode": 0,
	}, &pool); resp.StatusCode != http.StatusCreated {
		t.Fatalf("create pool = %d", resp.StatusCode)
	}

	if resp := e.do(t, http.MethodPost, "/v1/pools/"+pool.ID+"/maps", token, map[string]any{
		"map_md5":       testMapMD5,
		"condition_ast": "acc >=",
	}, nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad condition = %d, want 400", resp.StatusCode)
	}

	if resp := e.do(t, http.MethodPost, "/v1/pools/"+pool.ID+"/maps", token, map[string]any{
		"map_md5":        testMapMD5,
		"condition_ast":  "acc >= 96.0",
		"condition_name": "NM1",
	}, nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("add pool map = %d", resp.StatusCode)
	}

	var stage struct {
		ID string `json:"id"`
	}
	if resp := e.do(t, http.MethodPost, "/v1/stages", token, map[string]any{
		"name": "qualifiers", "team_id": team.ID, "pool_id": pool.ID,
	}, &stage); resp.StatusCode != http.StatusCreated {
		t.Fatalf("create stage = %d", resp.StatusCode)
	}

	var maps struct {
		Maps []struct {
			MapMD5 string `json:"map_md5"`
		} `json:"maps"`
	}
	if resp := e.do(t, http.MethodGet, "/v1/stages/"+stage.ID+"/maps", "", nil, &maps); resp.StatusCode != http.StatusOK {
		t.Fatalf("stage maps = %d", resp.StatusCode)
	}
	if len(maps.Maps) != 1 || maps.Maps[0].MapMD5 != testMapMD5 {
		t.Fatalf("stage maps = %+v", maps)
	}

	score := map[string]any{
		"beatmap_md5":   testMapMD5,
		"score":         727_000,
		"accuracy":      98.2,
		"highest_combo": 520,
		"full_combo":    true,
		"grade":         "S",
	}
	var accepted struct {
		ID                string  `json:"id"`
		PerformancePoints float64 `json:"performance_points"`
	}
	if resp := e.do(t, http.MethodPost, "/v1/stages/"+stage.ID+"/scores", token, score, &accepted); resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit score = %d", resp.StatusCode)
	}
	if accepted.PerformancePoints <= 0 {
		t.Fatalf("pp = %v, want > 0", accepted.PerformancePoints)
	}

	low := map[string]any{"beatmap_md5": testMapMD5, "score": 100_000, "accuracy": 80.0}
	if resp := e.do(t, http.MethodPost, "/v1/stages/"+stage.ID+"/scores", token, low, nil); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("condition reject = %d, want 422", resp.StatusCode)
	}

	var scores struct {
		Scores []struct {
			ID string `json:"id"`
		} `json:"scores"`
	}
	if resp := e.do(t, http.MethodGet, "/v1/stages/"+stage.ID+"/scores", "", nil, &scores); resp.StatusCode != http.StatusOK {
		t.Fatalf("list scores = %d", resp.StatusCode)
	}
	if len(scores.Scores) != 1 || scores.Scores[0].ID != accepted.ID {
		t.Fatalf("scores = %+v, want the accepted one", scores)
	}
}

// readSSEData collects n SSE data payloads from the stream body.
func readSSEData(t *testing.T, body *bufio.Scanner, n int) []string {
	t.Helper()
	var out []string
	for body.Scan() {
		line := body.Text()
		if strings.HasPrefix(line, "data: ") {
			out = append(out, strings.TrimPrefix(line, "data: "))
			if len(out) == n {
				return out
			}
		}
	}
	t.Fatalf("stream ended after %d of %d events: %v", len(out), n, body.Err())
	return nil
}

func TestBeatmapStreamSSE(t *testing.T) {
	e := newTestEnv(t)
	token := e.registerAndLogin(t, "streamer")

	if resp := e.do(t, http.MethodPost, "/v1/beatmaps/stream", "", map[string]any{
		"idents": []string{testMapMD5},
	}, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated stream = %d, want 401", resp.StatusCode)
	}

	if resp := e.do(t, http.MethodPost, "/v1/beatmaps/stream", token, map[string]any{
		"idents": []string{},
	}, nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty idents = %d, want 400", resp.StatusCode)
	}

	body, err := json.Marshal(map[string]any{"idents": []string{testMapMD5, "75"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/v1/beatmaps/stream", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stream status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	frames := readSSEData(t, bufio.NewScanner(resp.Body), 2)
	keys := map[string]string{}
	for _, f := range frames {
		var res struct {
			Key    string `json:"key"`
			Status string `json:"status"`
		}
		if err := json.Unmarshal([]byte(f), &res); err != nil {
			t.Fatalf("bad frame %q: %v", f, err)
		}
		keys[res.Key] = res.Status
	}
	// Both idents name the same upstream set, so both succeed.
	if keys[testMapMD5] != "success" || keys["75"] != "success" {
		t.Fatalf("frames = %v, want success for both idents", keys)
	}
}

func TestBeatmapStreamWS(t *testing.T) {
	e := newTestEnv(t)
	token := e.registerAndLogin(t, "wsplayer")

	wsURL := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/v1/beatmaps/stream/ws?access_token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v (resp %+v)", err, resp)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"idents": []string{testMapMD5}}); err != nil {
		t.Fatalf("write: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var res struct {
		Key    string `json:"key"`
		Status string `json:"status"`
	}
	if err := conn.ReadJSON(&res); err != nil {
		t.Fatalf("read: %v", err)
	}
	if res.Key != testMapMD5 || res.Status != "success" {
		t.Fatalf("result = %+v, want success for %s", res, testMapMD5)
	}
}

func TestRateLimit(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	}))
	t.Cleanup(upstream.Close)

	cfg := cfgpkg.Default()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Storage.Fsync = "never"
	cfg.Server.RatePerSecond = 0.01
	cfg.Server.RateBurst = 2
	cfg.OsuAPI.MirrorURL = upstream.URL

	rt, err := runtime.Open(runtime.Options{Config: cfg})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	bm := beatmapsvc.New(rt)
	tn := tourneysvc.New(rt)
	srv := httptest.NewServer(New(rt, bm, tn).Handler())
	t.Cleanup(func() {
		srv.Close()
		bm.Close()
		rt.Close()
	})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := http.Get(srv.URL + "/v1/healthz")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		resp.Body.Close()
		statuses = append(statuses, resp.StatusCode)
	}
	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Fatalf("first requests = %v, want 200s inside burst", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", statuses[2])
	}
}
