package beatmap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/DAYGoodTime/nogu/internal/osu"
	"github.com/DAYGoodTime/nogu/pkg/log"
)

// lastUpdateLayout is the timestamp format of the v1 get_beatmaps response.
const lastUpdateLayout = "2006-01-02 15:04:05"

// ClientOptions configures the upstream beatmap source.
type ClientOptions struct {
	// Key is the osu! API v1 key. When set, requests go to BanchoURL with
	// the key attached; when empty they go to MirrorURL instead.
	Key       string
	BanchoURL string
	MirrorURL string

	RatePerSecond float64
	Burst         int
	Timeout       time.Duration

	Logger log.Logger
}

// Client fetches beatmaps from the osu! v1 API or a public mirror, paced by
// a process-wide rate limiter.
type Client struct {
	httpc   *http.Client
	limiter *rate.Limiter
	key     string
	bancho  string
	mirror  string
	logger  log.Logger
}

func NewClient(opts ClientOptions) *Client {
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 1
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	return &Client{
		httpc:   &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		key:     opts.Key,
		bancho:  opts.BanchoURL,
		mirror:  opts.MirrorURL,
		logger:  logger.WithComponent("osuapi"),
	}
}

// apiBeatmap mirrors one row of the v1 get_beatmaps response. The API
// encodes every value as a string; nullable columns use pointers.
type apiBeatmap struct {
	BeatmapID        string  `json:"beatmap_id"`
	BeatmapsetID     string  `json:"beatmapset_id"`
	Approved         string  `json:"approved"`
	Artist           string  `json:"artist"`
	Title            string  `json:"title"`
	Version          string  `json:"version"`
	Creator          string  `json:"creator"`
	FileMD5          string  `json:"file_md5"`
	TotalLength      string  `json:"total_length"`
	MaxCombo         *string `json:"max_combo"`
	Mode             string  `json:"mode"`
	BPM              *string `json:"bpm"`
	DiffSize         string  `json:"diff_size"`
	DiffOverall      string  `json:"diff_overall"`
	DiffApproach     string  `json:"diff_approach"`
	DiffDrain        string  `json:"diff_drain"`
	DifficultyRating *string `json:"difficultyrating"`
	LastUpdate       string  `json:"last_update"`
}

// GetBeatmaps looks up an identifier upstream. The returned slice may hold
// several difficulties when the server resolves the ident to a whole set; an
// empty slice means the ident is unknown upstream.
func (c *Client) GetBeatmaps(ctx context.Context, ident Ident) ([]Beatmap, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	base := c.mirror
	q := url.Values{}
	if ident.IsMD5() {
		q.Set("md5", string(ident))
	} else {
		q.Set("id", string(ident))
	}
	if c.key != "" {
		base = c.bancho
		q.Set("k", c.key)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("get_beatmaps request", log.Str("ident", string(ident)))
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var rows []apiBeatmap
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	maps := make([]Beatmap, 0, len(rows))
	for _, row := range rows {
		m, err := row.toBeatmap()
		if err != nil {
			c.logger.Warn("skipping malformed beatmap row",
				log.Str("md5", row.FileMD5), log.Err(err))
			continue
		}
		maps = append(maps, m)
	}
	return maps, nil
}

func (r apiBeatmap) toBeatmap() (Beatmap, error) {
	id, err := strconv.ParseInt(r.BeatmapID, 10, 64)
	if err != nil {
		return Beatmap{}, fmt.Errorf("beatmap_id: %w", err)
	}
	setID, err := strconv.ParseInt(r.BeatmapsetID, 10, 64)
	if err != nil {
		return Beatmap{}, fmt.Errorf("beatmapset_id: %w", err)
	}
	status, err := strconv.Atoi(r.Approved)
	if err != nil {
		return Beatmap{}, fmt.Errorf("approved: %w", err)
	}
	length, err := strconv.Atoi(r.TotalLength)
	if err != nil {
		return Beatmap{}, fmt.Errorf("total_length: %w", err)
	}
	mode, err := strconv.Atoi(r.Mode)
	if err != nil {
		return Beatmap{}, fmt.Errorf("mode: %w", err)
	}
	updated, err := time.ParseInLocation(lastUpdateLayout, r.LastUpdate, time.UTC)
	if err != nil {
		return Beatmap{}, fmt.Errorf("last_update: %w", err)
	}

	cs, err := strconv.ParseFloat(r.DiffSize, 64)
	if err != nil {
		return Beatmap{}, fmt.Errorf("diff_size: %w", err)
	}
	od, err := strconv.ParseFloat(r.DiffOverall, 64)
	if err != nil {
		return Beatmap{}, fmt.Errorf("diff_overall: %w", err)
	}
	ar, err := strconv.ParseFloat(r.DiffApproach, 64)
	if err != nil {
		return Beatmap{}, fmt.Errorf("diff_approach: %w", err)
	}
	hp, err := strconv.ParseFloat(r.DiffDrain, 64)
	if err != nil {
		return Beatmap{}, fmt.Errorf("diff_drain: %w", err)
	}

	return Beatmap{
		MD5:             r.FileMD5,
		ID:              id,
		SetID:           setID,
		RankedStatus:    osu.RankedStatus(status),
		Artist:          r.Artist,
		Title:           r.Title,
		Version:         r.Version,
		Creator:         r.Creator,
		Filename:        Filename(r.Artist, r.Title, r.Creator, r.Version),
		TotalLength:     length,
		MaxCombo:        optInt(r.MaxCombo),
		Mode:            osu.Mode(mode),
		BPM:             optFloat(r.BPM),
		CS:              cs,
		OD:              od,
		AR:              ar,
		HP:              hp,
		StarRating:      optFloat(r.DifficultyRating),
		ServerUpdatedAt: updated,
		ServerID:        osu.ServerBancho,
	}, nil
}

func optInt(s *string) int {
	if s == nil {
		return 0
	}
	n, err := strconv.Atoi(*s)
	if err != nil {
		return 0
	}
	return n
}

func optFloat(s *string) float64 {
	if s == nil {
		return 0
	}
	f, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return 0
	}
	return f
}
