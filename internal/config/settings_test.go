package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCoreConfigDefaults(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	t.Setenv(DataDirEnv, "")
	t.Setenv(daemonAddressEnv, "")
	cfg, err := LoadCoreConfig()
	if err != nil {
		t.Fatalf("LoadCoreConfig: %v", err)
	}
	if cfg.DaemonAddress() != "127.0.0.1:7878" {
		t.Fatalf("unexpected daemon address: %q", cfg.DaemonAddress())
	}
	if cfg.DaemonBaseURL() != "http://127.0.0.1:7878" {
		t.Fatalf("unexpected daemon base url: %q", cfg.DaemonBaseURL())
	}
	if cfg.StorageBackend() != "bbolt" {
		t.Fatalf("unexpected storage backend: %q", cfg.StorageBackend())
	}
	if cfg.SessionTTL() != 30*24*time.Hour {
		t.Fatalf("unexpected session ttl: %v", cfg.SessionTTL())
	}
	if cfg.AuthRatePerMinute() != 10 {
		t.Fatalf("unexpected auth rate: %d", cfg.AuthRatePerMinute())
	}
}

func TestLoadCoreConfigFromTOML(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv(DataDirEnv, dataDir)
	t.Setenv(daemonAddressEnv, "")

	content := []byte("[daemon]\naddress = \"http://127.0.0.1:9999/\"\nstorage = \"SQLite\"\ncors_origins = [\"http://localhost:5173\", \" \", \"http://localhost:5173\"]\ntrusted_proxies = [\"10.0.0.1\", \"10.0.0.1\"]\n\n[auth]\nsession_ttl = \"1h\"\nrate_limit_per_minute = 3\n")
	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadCoreConfig()
	if err != nil {
		t.Fatalf("LoadCoreConfig: %v", err)
	}
	if cfg.DaemonAddress() != "127.0.0.1:9999" {
		t.Fatalf("unexpected daemon address: %q", cfg.DaemonAddress())
	}
	if cfg.StorageBackend() != "sqlite" {
		t.Fatalf("unexpected storage backend: %q", cfg.StorageBackend())
	}
	if got := cfg.CORSOrigins(); len(got) != 1 || got[0] != "http://localhost:5173" {
		t.Fatalf("unexpected cors origins: %#v", got)
	}
	if got := cfg.TrustedProxies(); len(got) != 1 || got[0] != "10.0.0.1" {
		t.Fatalf("unexpected trusted proxies: %#v", got)
	}
	if cfg.SessionTTL() != time.Hour {
		t.Fatalf("unexpected session ttl: %v", cfg.SessionTTL())
	}
	if cfg.AuthRatePerMinute() != 3 {
		t.Fatalf("unexpected auth rate: %d", cfg.AuthRatePerMinute())
	}
}

func TestDaemonAddressEnvOverride(t *testing.T) {
	t.Setenv(daemonAddressEnv, "http://127.0.0.1:4000")
	cfg := DefaultCoreConfig()
	if cfg.DaemonAddress() != "127.0.0.1:4000" {
		t.Fatalf("unexpected daemon address: %q", cfg.DaemonAddress())
	}
}

func TestStorageBackendFallsBack(t *testing.T) {
	cfg := DefaultCoreConfig()
	cfg.Daemon.Storage = "postgres"
	if cfg.StorageBackend() != "bbolt" {
		t.Fatalf("expected bbolt fallback, got %q", cfg.StorageBackend())
	}
}

func TestUIConfigDefaultsAndOverrides(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv(DataDirEnv, dataDir)

	cfg, err := LoadUIConfig()
	if err != nil {
		t.Fatalf("LoadUIConfig: %v", err)
	}
	if cfg.CellWidth() != 8 || !cfg.ShouldConfirmDelete() || cfg.SearchDebounceInterval() != 300*time.Millisecond {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
	if cfg.AutosaveQuietPeriod() != 2*time.Second {
		t.Fatalf("unexpected quiet period: %v", cfg.AutosaveQuietPeriod())
	}

	content := []byte("cell_width_px = 10\nconfirm_delete = false\nsearch_debounce = \"nope\"\n")
	if err := os.WriteFile(filepath.Join(dataDir, "ui.toml"), content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err = LoadUIConfig()
	if err != nil {
		t.Fatalf("LoadUIConfig: %v", err)
	}
	if cfg.CellWidth() != 10 || cfg.ShouldConfirmDelete() {
		t.Fatalf("unexpected overrides: %#v", cfg)
	}
	if cfg.SearchDebounceInterval() != 300*time.Millisecond {
		t.Fatalf("invalid debounce should fall back, got %v", cfg.SearchDebounceInterval())
	}
}

func TestWriteTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.toml")
	in := CoreConfig{Daemon: CoreDaemonConfig{Address: "127.0.0.1:1"}}
	if err := WriteTOML(path, in); err != nil {
		t.Fatalf("WriteTOML: %v", err)
	}
	var out CoreConfig
	if err := ReadTOML(path, &out); err != nil {
		t.Fatalf("ReadTOML: %v", err)
	}
	if out.Daemon.Address != "127.0.0.1:1" {
		t.Fatalf("unexpected address: %q", out.Daemon.Address)
	}
}

func TestReadTOMLRejectsEmptyPath(t *testing.T) {
	var out CoreConfig
	if err := ReadTOML(" ", &out); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
