// Package config loads the netstats configuration from a TOML file with
// NETSTATS_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/go-homedir"

	"github.com/worldland/netstats/internal/logs"
)

// Names of the two switchable statistics API bases
const (
	OldMarketplace = "Old marketplace"
	NewMarketplace = "New marketplace"

	DefaultPath = "~/.netstats/config.toml"
)

type Config struct {
	Server   Server
	Networks []Network
	Auth     Auth
	Poll     Poll
	Store    Store
	Log      Log
}

type Server struct {
	Listen       string
	AllowOrigins []string
}

// Network is one selectable statistics API base
type Network struct {
	Name    string
	BaseURL string
}

type Auth struct {
	BaseURL string
	KeyFile string
}

type Poll struct {
	Interval        time.Duration
	HistoryInterval time.Duration
	Timeout         time.Duration
}

type Store struct {
	Path     string
	InMemory bool
}

type Log struct {
	Level      string
	JSON       bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Default returns the configuration used when no file is present
func Default() Config {
	return Config{
		Server: Server{
			Listen:       "127.0.0.1:8088",
			AllowOrigins: []string{"*"},
		},
		Networks: defaultNetworks(),
		Auth: Auth{
			BaseURL: "https://api.stats.golem.network/",
		},
		Poll: Poll{
			Interval:        10 * time.Second,
			HistoryInterval: 10 * time.Second,
			Timeout:         15 * time.Second,
		},
		Store: Store{
			Path: "~/.netstats/store",
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

func defaultNetworks() []Network {
	return []Network{
		{Name: OldMarketplace, BaseURL: "https://api.stats.golem.network/"},
		{Name: NewMarketplace, BaseURL: "https://api.stats.golem.network/market/"},
	}
}

// Load reads the file at path (or DefaultPath when empty and present),
// applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return Config{}, fmt.Errorf("expand config path %s: %w", path, err)
	}

	if _, statErr := os.Stat(expanded); statErr == nil {
		if err := decodeFile(expanded, &cfg); err != nil {
			return Config{}, err
		}
	} else if explicit {
		return Config{}, fmt.Errorf("config file %s: %w", expanded, statErr)
	}

	applyEnv(&cfg)
	if err := cfg.expandPaths(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	cfg.Networks = nil
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed load config file, path: %s, error: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config file %s: unknown key %q", path, undecoded[0].String())
	}
	if !meta.IsDefined("Networks") {
		cfg.Networks = defaultNetworks()
		return nil
	}
	for i, n := range cfg.Networks {
		if n.Name == "" || n.BaseURL == "" {
			return fmt.Errorf("config file %s: Networks[%d] requires Name and BaseURL", path, i)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Listen = env("NETSTATS_LISTEN", cfg.Server.Listen)
	if origins := env("NETSTATS_ALLOW_ORIGINS", ""); origins != "" {
		cfg.Server.AllowOrigins = strings.Split(origins, ",")
	}

	// the first two networks keep their historical env names
	if len(cfg.Networks) > 0 {
		cfg.Networks[0].BaseURL = env("NETSTATS_API_BASE_URL", cfg.Networks[0].BaseURL)
	}
	if len(cfg.Networks) > 1 {
		cfg.Networks[1].BaseURL = env("NETSTATS_NEW_API_BASE_URL", cfg.Networks[1].BaseURL)
	}

	cfg.Auth.BaseURL = env("NETSTATS_AUTH_URL", cfg.Auth.BaseURL)
	cfg.Auth.KeyFile = env("NETSTATS_KEY_FILE", cfg.Auth.KeyFile)

	cfg.Poll.Interval = envDuration("NETSTATS_POLL_INTERVAL", cfg.Poll.Interval)
	cfg.Poll.HistoryInterval = envDuration("NETSTATS_HISTORY_INTERVAL", cfg.Poll.HistoryInterval)
	cfg.Poll.Timeout = envDuration("NETSTATS_HTTP_TIMEOUT", cfg.Poll.Timeout)

	cfg.Store.Path = env("NETSTATS_STORE_PATH", cfg.Store.Path)
	cfg.Store.InMemory = envBool("NETSTATS_STORE_IN_MEMORY", cfg.Store.InMemory)

	cfg.Log.Level = strings.ToLower(env("NETSTATS_LOG_LEVEL", cfg.Log.Level))
	cfg.Log.JSON = envBool("NETSTATS_LOG_JSON", cfg.Log.JSON)
	cfg.Log.File = env("NETSTATS_LOG_FILE", cfg.Log.File)
	cfg.Log.MaxSizeMB = envInt("NETSTATS_LOG_MAX_SIZE_MB", cfg.Log.MaxSizeMB)
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Store.Path, &c.Log.File, &c.Auth.KeyFile} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expand path %s: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Listen) == "" {
		return errors.New("Server.Listen is required")
	}
	if len(c.Networks) == 0 {
		return errors.New("at least one network is required")
	}
	seen := make(map[string]bool, len(c.Networks))
	for _, n := range c.Networks {
		if seen[n.Name] {
			return fmt.Errorf("duplicate network %q", n.Name)
		}
		seen[n.Name] = true
		if err := checkURL(n.BaseURL); err != nil {
			return fmt.Errorf("network %q: %w", n.Name, err)
		}
	}
	if err := checkURL(c.Auth.BaseURL); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if c.Poll.Interval <= 0 || c.Poll.HistoryInterval <= 0 {
		return errors.New("poll intervals must be > 0")
	}
	if c.Poll.Timeout <= 0 {
		return errors.New("Poll.Timeout must be > 0")
	}
	if !c.Store.InMemory && c.Store.Path == "" {
		return errors.New("Store.Path is required unless Store.InMemory is set")
	}
	if _, err := logs.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// NetworkNames lists the configured networks in order
func (c Config) NetworkNames() []string {
	names := make([]string, len(c.Networks))
	for i, n := range c.Networks {
		names[i] = n.Name
	}
	return names
}

// LogOptions converts the [Log] section for logs.Setup
func (c Config) LogOptions() logs.Options {
	return logs.Options{
		Level:      c.Log.Level,
		JSON:       c.Log.JSON,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
	}
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL %q must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("base URL %q has no host", raw)
	}
	return nil
}

func env(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
