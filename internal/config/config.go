package config

import (
	"errors"
	"strings"
	"time"
)

// Config defines the sync engine configuration.
type Config struct {
	Remote struct {
		BaseURL     string `yaml:"baseUrl" env:"CHARGIST_REMOTE_BASE_URL"`
		RealtimeURL string `yaml:"realtimeUrl" env:"CHARGIST_REMOTE_REALTIME_URL"`
		APIToken    string `yaml:"apiToken" env:"CHARGIST_REMOTE_API_TOKEN"`
		TimeoutSecs int    `yaml:"timeoutSeconds" env:"CHARGIST_REMOTE_TIMEOUT"`
		MeteredConn bool   `yaml:"metered" env:"CHARGIST_REMOTE_METERED"`
	} `yaml:"remote"`
	Cache struct {
		Path string `yaml:"path" env:"CHARGIST_CACHE_PATH"`
	} `yaml:"cache"`
	Session struct {
		Path string `yaml:"path" env:"CHARGIST_SESSION_PATH"`
	} `yaml:"session"`
	Sync struct {
		PollMillis           int     `yaml:"pollMillis" env:"CHARGIST_SYNC_POLL_MILLIS"`
		StabilityThreshold   int     `yaml:"stabilityThreshold" env:"CHARGIST_SYNC_STABILITY_THRESHOLD"`
		StabilityRadius      float64 `yaml:"stabilityRadiusMeters" env:"CHARGIST_SYNC_STABILITY_RADIUS"`
		SearchRadius         float64 `yaml:"searchRadiusMeters" env:"CHARGIST_SYNC_SEARCH_RADIUS"`
		GPSDebounceMillis    int     `yaml:"gpsDebounceMillis" env:"CHARGIST_SYNC_GPS_DEBOUNCE_MILLIS"`
		SearchDebounceMillis int     `yaml:"searchDebounceMillis" env:"CHARGIST_SYNC_SEARCH_DEBOUNCE_MILLIS"`
		RetryDelayMillis     int     `yaml:"retryDelayMillis" env:"CHARGIST_SYNC_RETRY_DELAY_MILLIS"`
		ReviewPageSize       int     `yaml:"reviewPageSize" env:"CHARGIST_SYNC_REVIEW_PAGE_SIZE"`
		CommentThreshold     int     `yaml:"commentThreshold" env:"CHARGIST_SYNC_COMMENT_THRESHOLD"`
		PageDelayMillis      int     `yaml:"pageDelayMillis" env:"CHARGIST_SYNC_PAGE_DELAY_MILLIS"`
		FilterMaxDistanceKM  float64 `yaml:"filterMaxDistanceKm" env:"CHARGIST_SYNC_FILTER_MAX_DISTANCE_KM"`
	} `yaml:"sync"`
}

// Load reads configuration via the shared helper and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.Remote.TimeoutSecs = 15
	cfg.Cache.Path = "data/chargist.db"
	cfg.Session.Path = "data/session.json"
	cfg.Sync.PollMillis = 2000
	cfg.Sync.StabilityThreshold = 3
	cfg.Sync.StabilityRadius = 50
	cfg.Sync.SearchRadius = 30000
	cfg.Sync.GPSDebounceMillis = 5000
	cfg.Sync.SearchDebounceMillis = 1500
	cfg.Sync.RetryDelayMillis = 2000
	cfg.Sync.ReviewPageSize = 3
	cfg.Sync.CommentThreshold = 4
	cfg.Sync.PageDelayMillis = 5000
	cfg.Sync.FilterMaxDistanceKM = 100

	if err := loadInto(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Remote.BaseURL) == "" {
		return nil, errors.New("config: remote base url required")
	}
	if strings.TrimSpace(cfg.Remote.RealtimeURL) == "" {
		return nil, errors.New("config: remote realtime url required")
	}
	if strings.TrimSpace(cfg.Remote.APIToken) == "" {
		return nil, errors.New("config: remote api token required")
	}
	return cfg, nil
}

// RemoteTimeout returns the per-request HTTP timeout.
func (c *Config) RemoteTimeout() time.Duration {
	if c.Remote.TimeoutSecs <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Remote.TimeoutSecs) * time.Second
}

// PollInterval returns the viewport stability sampling interval.
func (c *Config) PollInterval() time.Duration {
	return millis(c.Sync.PollMillis, 2*time.Second)
}

// GPSDebounce returns the settle window applied to raw GPS fixes.
func (c *Config) GPSDebounce() time.Duration {
	return millis(c.Sync.GPSDebounceMillis, 5*time.Second)
}

// SearchDebounce returns the settle window applied to search keystrokes.
func (c *Config) SearchDebounce() time.Duration {
	return millis(c.Sync.SearchDebounceMillis, 1500*time.Millisecond)
}

// RetryDelay returns the fixed delay between live-sync retries.
func (c *Config) RetryDelay() time.Duration {
	return millis(c.Sync.RetryDelayMillis, 2*time.Second)
}

// PageDelay returns the pause between automatic review backfill pages.
func (c *Config) PageDelay() time.Duration {
	return millis(c.Sync.PageDelayMillis, 5*time.Second)
}

func millis(v int, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return time.Duration(v) * time.Millisecond
}
