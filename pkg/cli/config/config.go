package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/lurk-dev/lurk/pkg/domain/types"
)

// AppConfig represents the optional lurk.toml configuration file
type AppConfig struct {
	Cache CacheDefaults `toml:"cache"`
	TTL   TTLConfig     `toml:"ttl"`
}

// CacheDefaults provides file-level defaults for the cache flags
type CacheDefaults struct {
	Dir      string `toml:"dir"`
	Backend  string `toml:"backend"`
	Messages bool   `toml:"messages"`
}

// TTLConfig overrides the per-kind freshness windows. Values are Go
// duration strings ("45m", "2h"); empty keeps the built-in default.
type TTLConfig struct {
	Users         string `toml:"users"`
	Conversations string `toml:"conversations"`
	Messages      string `toml:"messages"`
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	switch a.Cache.Backend {
	case "", "sqlite", "memory":
	default:
		return goerr.Wrap(ErrUnknownBackend, "cache backend must be sqlite or memory", goerr.V(BackendKey, a.Cache.Backend))
	}

	if _, err := a.TTLOverrides(); err != nil {
		return err
	}
	return nil
}

// TTLOverrides parses the TTL section into per-kind durations
func (a *AppConfig) TTLOverrides() (map[types.ObjectKind]time.Duration, error) {
	entries := []struct {
		kind  types.ObjectKind
		value string
	}{
		{types.KindUser, a.TTL.Users},
		{types.KindConversation, a.TTL.Conversations},
		{types.KindMessage, a.TTL.Messages},
	}

	overrides := make(map[types.ObjectKind]time.Duration)
	for _, e := range entries {
		if e.value == "" {
			continue
		}
		d, err := time.ParseDuration(e.value)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidTTL, "TTL must be a duration string", goerr.V(KindKey, e.kind), goerr.V("value", e.value))
		}
		if d <= 0 {
			return nil, goerr.Wrap(ErrInvalidTTL, "TTL must be positive", goerr.V(KindKey, e.kind), goerr.V("value", e.value))
		}
		overrides[e.kind] = d
	}
	return overrides, nil
}

// LoadAppConfiguration loads the configuration from a TOML file. An empty
// path returns an empty configuration.
func LoadAppConfiguration(path string) (*AppConfig, error) {
	var config AppConfig
	if path == "" {
		return &config, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}
