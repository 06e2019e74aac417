package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("CHARGIST_REMOTE_BASE_URL", "https://api.example.com")
	t.Setenv("CHARGIST_REMOTE_REALTIME_URL", "wss://api.example.com/realtime")
	t.Setenv("CHARGIST_REMOTE_API_TOKEN", "token")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.PollInterval() != 2*time.Second {
		t.Fatalf("unexpected poll interval %s", cfg.PollInterval())
	}
	if cfg.Sync.StabilityThreshold != 3 || cfg.Sync.StabilityRadius != 50 {
		t.Fatalf("unexpected stability defaults: %+v", cfg.Sync)
	}
	if cfg.Sync.SearchRadius != 30000 {
		t.Fatalf("unexpected search radius %f", cfg.Sync.SearchRadius)
	}
	if cfg.SearchDebounce() != 1500*time.Millisecond {
		t.Fatalf("unexpected search debounce %s", cfg.SearchDebounce())
	}
	if cfg.Sync.ReviewPageSize != 3 || cfg.Sync.CommentThreshold != 4 {
		t.Fatalf("unexpected review defaults: %+v", cfg.Sync)
	}
	if cfg.PageDelay() != 5*time.Second {
		t.Fatalf("unexpected page delay %s", cfg.PageDelay())
	}
	if cfg.Remote.MeteredConn {
		t.Fatalf("metered must default to false")
	}
}

func TestLoadRejectsMissingRemote(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("CHARGIST_REMOTE_BASE_URL", "")
	t.Setenv("CHARGIST_REMOTE_REALTIME_URL", "wss://x")
	t.Setenv("CHARGIST_REMOTE_API_TOKEN", "t")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error without base url")
	}
}

func TestLoadRejectsBadNumericEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CHARGIST_SYNC_POLL_MILLIS", "soon")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unparseable numeric override")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CHARGIST_SYNC_POLL_MILLIS", "250")
	t.Setenv("CHARGIST_REMOTE_METERED", "true")
	t.Setenv("CHARGIST_SYNC_FILTER_MAX_DISTANCE_KM", "42.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PollInterval() != 250*time.Millisecond {
		t.Fatalf("env override ignored, got %s", cfg.PollInterval())
	}
	if !cfg.Remote.MeteredConn {
		t.Fatalf("metered override ignored")
	}
	if cfg.Sync.FilterMaxDistanceKM != 42.5 {
		t.Fatalf("float override ignored, got %f", cfg.Sync.FilterMaxDistanceKM)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "sync:\n  pollMillis: 100\n  reviewPageSize: 5\ncache:\n  path: /tmp/other.db\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PollInterval() != 100*time.Millisecond {
		t.Fatalf("yaml value ignored, got %s", cfg.PollInterval())
	}
	if cfg.Sync.ReviewPageSize != 5 {
		t.Fatalf("yaml page size ignored, got %d", cfg.Sync.ReviewPageSize)
	}
	if cfg.Cache.Path != "/tmp/other.db" {
		t.Fatalf("yaml cache path ignored, got %s", cfg.Cache.Path)
	}
}
