package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/DAYGoodTime/nogu/internal/broker"
	pebblestore "github.com/DAYGoodTime/nogu/internal/storage/pebble"
	"github.com/DAYGoodTime/nogu/pkg/log"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
	Beatmap BeatmapConfig `mapstructure:"beatmap"`
	OsuAPI  OsuAPIConfig  `mapstructure:"osu_api"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
	// RatePerSecond / RateBurst bound each client's request rate. Zero
	// disables the limiter.
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	RateBurst     int     `mapstructure:"rate_burst"`
}

// StorageConfig controls the embedded Pebble store.
type StorageConfig struct {
	DataDir         string `mapstructure:"data_dir"`
	Fsync           string `mapstructure:"fsync"` // always | interval | never
	FsyncIntervalMs int    `mapstructure:"fsync_interval_ms"`
}

// FsyncInterval returns the group-commit window.
func (c StorageConfig) FsyncInterval() time.Duration {
	return time.Duration(c.FsyncIntervalMs) * time.Millisecond
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | text
}

// BeatmapConfig controls the beatmap request operator.
type BeatmapConfig struct {
	// RequestIntervalSec spaces completed fetches of one ident.
	RequestIntervalSec int `mapstructure:"request_interval_sec"`
	// SkipPolicy selects what a throttled submitter receives: "replay" the
	// retained result, or "silent" nothing.
	SkipPolicy string `mapstructure:"skip_policy"`
	// MailboxCap bounds each session's undelivered results.
	MailboxCap int `mapstructure:"mailbox_cap"`
	// PruneAfterMin ages out throttle entries and idle mailboxes.
	PruneAfterMin int `mapstructure:"prune_after_min"`
}

// RequestInterval returns the operator cooldown.
func (c BeatmapConfig) RequestInterval() time.Duration {
	return time.Duration(c.RequestIntervalSec) * time.Second
}

// PruneAfter returns the janitor eviction age.
func (c BeatmapConfig) PruneAfter() time.Duration {
	return time.Duration(c.PruneAfterMin) * time.Minute
}

// OsuAPIConfig controls the upstream beatmap source. With a key set, lookups
// go to the official v1 API; otherwise the public mirror serves them.
type OsuAPIConfig struct {
	Key           string  `mapstructure:"key"`
	BanchoURL     string  `mapstructure:"bancho_url"`
	MirrorURL     string  `mapstructure:"mirror_url"`
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
	TimeoutSec    int     `mapstructure:"timeout_sec"`
}

// Timeout returns the per-request budget.
func (c OsuAPIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			HTTPAddr:      ":8080",
			RatePerSecond: 20,
			RateBurst:     40,
		},
		Storage: StorageConfig{
			DataDir:         DefaultDataDir(),
			Fsync:           "interval",
			FsyncIntervalMs: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Beatmap: BeatmapConfig{
			RequestIntervalSec: 30,
			SkipPolicy:         "replay",
			MailboxCap:         256,
			PruneAfterMin:      60,
		},
		OsuAPI: OsuAPIConfig{
			BanchoURL:     "https://old.ppy.sh/api/get_beatmaps",
			MirrorURL:     "https://osu.direct/api/get_beatmaps",
			RatePerSecond: 1,
			Burst:         2,
			TimeoutSec:    15,
		},
	}
}

// Load reads configuration from an optional file, overlays NOGU_* environment
// variables, and validates the result. An empty path consults ./nogu.yaml and
// defaults when absent.
func Load(path string) (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("server.http_addr", def.Server.HTTPAddr)
	v.SetDefault("server.rate_per_second", def.Server.RatePerSecond)
	v.SetDefault("server.rate_burst", def.Server.RateBurst)
	v.SetDefault("storage.data_dir", def.Storage.DataDir)
	v.SetDefault("storage.fsync", def.Storage.Fsync)
	v.SetDefault("storage.fsync_interval_ms", def.Storage.FsyncIntervalMs)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("beatmap.request_interval_sec", def.Beatmap.RequestIntervalSec)
	v.SetDefault("beatmap.skip_policy", def.Beatmap.SkipPolicy)
	v.SetDefault("beatmap.mailbox_cap", def.Beatmap.MailboxCap)
	v.SetDefault("beatmap.prune_after_min", def.Beatmap.PruneAfterMin)
	v.SetDefault("osu_api.key", def.OsuAPI.Key)
	v.SetDefault("osu_api.bancho_url", def.OsuAPI.BanchoURL)
	v.SetDefault("osu_api.mirror_url", def.OsuAPI.MirrorURL)
	v.SetDefault("osu_api.rate_per_second", def.OsuAPI.RatePerSecond)
	v.SetDefault("osu_api.burst", def.OsuAPI.Burst)
	v.SetDefault("osu_api.timeout_sec", def.OsuAPI.TimeoutSec)

	v.SetEnvPrefix("NOGU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("osu_api.key", "NOGU_OSU_API_KEY")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("nogu")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("config: server.http_addr is required")
	}
	if c.Storage.DataDir == "" {
		return fmt.Errorf("config: storage.data_dir is required")
	}
	if _, err := pebblestore.ParseFsyncMode(c.Storage.Fsync); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if f := c.Logging.Format; f != "json" && f != "text" {
		return fmt.Errorf("config: logging.format must be json or text, got %q", f)
	}
	if _, err := broker.ParseSkipPolicy(c.Beatmap.SkipPolicy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Beatmap.RequestIntervalSec <= 0 {
		return fmt.Errorf("config: beatmap.request_interval_sec must be positive")
	}
	if c.OsuAPI.RatePerSecond <= 0 {
		return fmt.Errorf("config: osu_api.rate_per_second must be positive")
	}
	return nil
}
