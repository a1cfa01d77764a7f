package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultDaemonAddress   = "127.0.0.1:7878"
	defaultStorageBackend  = "bbolt"
	defaultSessionTTL      = 30 * 24 * time.Hour
	defaultAuthPerMinute   = 10
	defaultCellWidthPx     = 8
	defaultSearchDebounce  = 300 * time.Millisecond
	defaultAutosaveQuiet   = 2 * time.Second
	daemonAddressEnv       = "JOTTER_DAEMON_ADDR"
	supportedStorageFile   = "file"
	supportedStorageBbolt  = "bbolt"
	supportedStorageSQLite = "sqlite"
)

type CoreConfig struct {
	Daemon  CoreDaemonConfig  `toml:"daemon"`
	Auth    CoreAuthConfig    `toml:"auth"`
	Logging CoreLoggingConfig `toml:"logging"`
}

type CoreDaemonConfig struct {
	Address     string   `toml:"address"`
	Storage     string   `toml:"storage"`
	CORSOrigins []string `toml:"cors_origins"`
	// TrustedProxies lists the reverse proxies allowed to set forwarding
	// headers. Empty means the peer address is always the client.
	TrustedProxies []string `toml:"trusted_proxies"`
}

type CoreAuthConfig struct {
	SessionTTL         string `toml:"session_ttl"`
	RateLimitPerMinute int    `toml:"rate_limit_per_minute"`
}

type CoreLoggingConfig struct {
	Level string `toml:"level"`
}

type UIConfig struct {
	CellWidthPx    int    `toml:"cell_width_px"`
	ConfirmDelete  *bool  `toml:"confirm_delete"`
	SearchDebounce string `toml:"search_debounce"`
	// Keybindings maps command names such as "notes.new" to key strings.
	Keybindings map[string]string `toml:"keybindings"`
}

func DefaultCoreConfig() CoreConfig {
	return CoreConfig{
		Daemon: CoreDaemonConfig{
			Address: defaultDaemonAddress,
			Storage: defaultStorageBackend,
		},
		Auth: CoreAuthConfig{
			SessionTTL:         defaultSessionTTL.String(),
			RateLimitPerMinute: defaultAuthPerMinute,
		},
		Logging: CoreLoggingConfig{
			Level: "info",
		},
	}
}

func LoadCoreConfig() (CoreConfig, error) {
	path, err := CoreConfigPath()
	if err != nil {
		return CoreConfig{}, err
	}
	return loadCoreConfigFromPath(path)
}

func (c CoreConfig) DaemonAddress() string {
	addr := strings.TrimSpace(os.Getenv(daemonAddressEnv))
	if addr == "" {
		addr = strings.TrimSpace(c.Daemon.Address)
	}
	addr = strings.TrimPrefix(addr, "http://")
	addr = strings.TrimPrefix(addr, "https://")
	addr = strings.TrimRight(addr, "/")
	if addr == "" {
		return defaultDaemonAddress
	}
	return addr
}

func (c CoreConfig) DaemonBaseURL() string {
	return "http://" + c.DaemonAddress()
}

// StorageBackend returns the configured repository backend, falling back
// to bbolt for unknown values.
func (c CoreConfig) StorageBackend() string {
	switch backend := strings.ToLower(strings.TrimSpace(c.Daemon.Storage)); backend {
	case supportedStorageFile, supportedStorageBbolt, supportedStorageSQLite:
		return backend
	default:
		return defaultStorageBackend
	}
}

func (c CoreConfig) CORSOrigins() []string {
	return normalizedList(c.Daemon.CORSOrigins)
}

func (c CoreConfig) TrustedProxies() []string {
	return normalizedList(c.Daemon.TrustedProxies)
}

func (c CoreConfig) SessionTTL() time.Duration {
	return parseDurationOr(c.Auth.SessionTTL, defaultSessionTTL)
}

func (c CoreConfig) AuthRatePerMinute() int {
	if c.Auth.RateLimitPerMinute <= 0 {
		return defaultAuthPerMinute
	}
	return c.Auth.RateLimitPerMinute
}

func (c CoreConfig) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func DefaultUIConfig() UIConfig {
	confirm := true
	return UIConfig{
		CellWidthPx:    defaultCellWidthPx,
		ConfirmDelete:  &confirm,
		SearchDebounce: defaultSearchDebounce.String(),
	}
}

func LoadUIConfig() (UIConfig, error) {
	path, err := UIConfigPath()
	if err != nil {
		return UIConfig{}, err
	}
	return loadUIConfigFromPath(path)
}

// CellWidth is the number of logical pixels a terminal column stands for
// when comparing against the layout breakpoint.
func (c UIConfig) CellWidth() int {
	if c.CellWidthPx <= 0 {
		return defaultCellWidthPx
	}
	return c.CellWidthPx
}

func (c UIConfig) ShouldConfirmDelete() bool {
	if c.ConfirmDelete == nil {
		return true
	}
	return *c.ConfirmDelete
}

func (c UIConfig) SearchDebounceInterval() time.Duration {
	return parseDurationOr(c.SearchDebounce, defaultSearchDebounce)
}

// AutosaveQuietPeriod is fixed; edits restart it with no maximum wait.
func (c UIConfig) AutosaveQuietPeriod() time.Duration {
	return defaultAutosaveQuiet
}

func loadCoreConfigFromPath(path string) (CoreConfig, error) {
	cfg := DefaultCoreConfig()
	if err := readTOML(path, &cfg); err != nil {
		return CoreConfig{}, err
	}
	return cfg, nil
}

func loadUIConfigFromPath(path string) (UIConfig, error) {
	cfg := DefaultUIConfig()
	if err := readTOML(path, &cfg); err != nil {
		return UIConfig{}, err
	}
	return cfg, nil
}

// ReadTOML decodes path into out. A missing or blank file leaves out untouched.
func ReadTOML(path string, out any) error {
	return readTOML(path, out)
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}

// WriteTOML encodes value to path through a temp file and rename.
func WriteTOML(path string, value any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := toml.Marshal(value)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func normalizedList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, raw := range values {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
