package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"hnstories/internal/eventbus"
	"hnstories/internal/hn"
	"hnstories/internal/preferences"
)

const appName = "hnstories"

// Config represents the application configuration
type Config struct {
	Version     int                `toml:"version"`
	Endpoint    string             `toml:"endpoint"`
	Fetch       FetchSettings      `toml:"fetch"`
	Preferences PreferenceSettings `toml:"preferences"`
	UI          UISettings         `toml:"ui"`
	Log         LogSettings        `toml:"log"`
}

// FetchSettings controls remote searches
type FetchSettings struct {
	Timeout      Duration `toml:"timeout"`
	DiscardStale bool     `toml:"discard_stale"`
	UserAgent    string   `toml:"user_agent"`
}

// PreferenceSettings selects where the last search term is kept
type PreferenceSettings struct {
	Backend string `toml:"backend"` // file, sqlite or memory
	Path    string `toml:"path"`    // empty picks a file in the state directory
	Key     string `toml:"key"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	LocalFilter bool `toml:"local_filter"`
	AltScreen   bool `toml:"alt_screen"`
}

// LogSettings configures the log file
type LogSettings struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

// Duration is a time.Duration written as "15s" in TOML
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
	lookup   func(string) (string, bool)
}

// NewConfigService creates a config service for path. An empty path uses
// config.toml in the user config directory.
func NewConfigService(path string) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{
		filePath: path,
		lookup:   os.LookupEnv,
	}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(path string, bus eventbus.EventBus) ConfigService {
	cs := NewConfigService(path).(*configService)
	cs.bus = bus
	return cs
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file, falling back to defaults when the
// file does not exist. Environment overrides are applied on top.
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.LoadFromPath(cs.filePath)
	if errors.Is(err, os.ErrNotExist) {
		cfg = DefaultConfig()
	} else if err != nil {
		return nil, err
	}

	applyEnv(cfg, cs.lookup)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cs.filePath, err)
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{
			Path:     cs.filePath,
			Endpoint: cfg.Endpoint,
		})
	}

	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}

	return nil
}

// LoadFromPath loads configuration from a specific path. Keys missing from
// the file keep their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ResolvedPath is Path, or the backend's default file in the state directory
func (p PreferenceSettings) ResolvedPath() string {
	if p.Path != "" {
		return p.Path
	}
	name := "preferences.toml"
	if p.Backend == preferences.BackendSQLite {
		name = "preferences.db"
	}
	return filepath.Join(StateDir(), name)
}

// Validate reports the first setting that cannot be used
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("endpoint %q must be an absolute http(s) URL", c.Endpoint)
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("fetch.timeout must not be negative")
	}
	switch c.Preferences.Backend {
	case preferences.BackendFile, preferences.BackendSQLite, preferences.BackendMemory:
	default:
		return fmt.Errorf("unknown preferences backend %q", c.Preferences.Backend)
	}
	if strings.TrimSpace(c.Preferences.Key) == "" {
		return fmt.Errorf("preferences.key must not be empty")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	state := StateDir()
	return &Config{
		Version:  1,
		Endpoint: hn.DefaultEndpoint,
		Fetch: FetchSettings{
			Timeout:      Duration(15 * time.Second),
			DiscardStale: true,
			UserAgent:    appName,
		},
		Preferences: PreferenceSettings{
			Backend: preferences.BackendFile,
			Key:     preferences.DefaultKey,
		},
		UI: UISettings{
			LocalFilter: true,
			AltScreen:   true,
		},
		Log: LogSettings{
			Level: "info",
			Path:  filepath.Join(state, appName+".log"),
		},
	}
}

// DefaultPath is config.toml inside the user config directory
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, appName, "config.toml")
}

// StateDir is $XDG_STATE_HOME/hnstories, or ~/.local/state/hnstories
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".local", "state", appName)
}
