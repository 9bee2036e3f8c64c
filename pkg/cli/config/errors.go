package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidConfig  = goerr.New("invalid configuration")
	ErrUnknownBackend = goerr.New("unknown cache backend")
	ErrInvalidTTL     = goerr.New("invalid TTL value")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	BackendKey    = "backend"
	KindKey       = "kind"
)
