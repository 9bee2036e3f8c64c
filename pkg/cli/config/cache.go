package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	"github.com/lurk-dev/lurk/pkg/repository/memory"
	"github.com/lurk-dev/lurk/pkg/repository/sqlite"
	"github.com/lurk-dev/lurk/pkg/utils/logging"
)

const cacheFileName = "cache.db"

// Cache holds CLI flags for the local cache
type Cache struct {
	dir      string
	backend  string
	disabled bool
	refresh  bool
	messages bool
}

// Flags returns CLI flags for cache configuration
func (x *Cache) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "cache-dir",
			Usage:       "Directory for the cache database (default: user cache dir)",
			Category:    "Cache",
			Sources:     cli.EnvVars("LURK_CACHE_DIR"),
			Destination: &x.dir,
		},
		&cli.StringFlag{
			Name:        "cache-backend",
			Usage:       "Cache backend (sqlite or memory)",
			Category:    "Cache",
			Value:       "sqlite",
			Sources:     cli.EnvVars("LURK_CACHE_BACKEND"),
			Destination: &x.backend,
		},
		&cli.BoolFlag{
			Name:        "no-cache",
			Usage:       "Disable the cache entirely for this invocation",
			Category:    "Cache",
			Sources:     cli.EnvVars("LURK_NO_CACHE"),
			Destination: &x.disabled,
		},
		&cli.BoolFlag{
			Name:        "refresh",
			Usage:       "Skip cache reads and fetch from Slack (results are still cached)",
			Category:    "Cache",
			Destination: &x.refresh,
		},
		&cli.BoolFlag{
			Name:        "cache-messages",
			Usage:       "Also cache conversation messages (off by default)",
			Category:    "Cache",
			Sources:     cli.EnvVars("LURK_CACHE_MESSAGES"),
			Destination: &x.messages,
		},
	}
}

func (x Cache) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("dir", x.dir),
		slog.String("backend", x.backend),
		slog.Bool("disabled", x.disabled),
		slog.Bool("refresh", x.refresh),
		slog.Bool("messages", x.messages),
	)
}

// Refresh reports whether cache reads should be skipped
func (x *Cache) Refresh() bool {
	return x.refresh
}

// Messages reports whether message caching is enabled
func (x *Cache) Messages() bool {
	return x.messages
}

// ApplyDefaults fills unset flags from the optional configuration file
func (x *Cache) ApplyDefaults(app *AppConfig) {
	if x.dir == "" && app.Cache.Dir != "" {
		x.dir = app.Cache.Dir
	}
	if app.Cache.Backend != "" && x.backend == "sqlite" {
		x.backend = app.Cache.Backend
	}
	if app.Cache.Messages {
		x.messages = true
	}
}

// Path returns the cache database path, defaulting to the user cache dir
func (x *Cache) Path() (string, error) {
	dir := x.dir
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return "", goerr.Wrap(err, "failed to resolve user cache directory")
		}
		dir = filepath.Join(base, "lurk")
	}
	return filepath.Join(dir, cacheFileName), nil
}

// Configure initializes the cache repository. A broken persistent store is
// never fatal: the tool degrades to an in-process store and keeps working
// against the remote API.
func (x *Cache) Configure(ctx context.Context) (interfaces.Repository, error) {
	if x.disabled {
		logging.From(ctx).Debug("cache disabled, using in-process store")
		return memory.New(), nil
	}

	switch x.backend {
	case "sqlite":
		path, err := x.Path()
		if err != nil {
			logging.From(ctx).Debug("cache store unavailable, degrading to in-process store", "error", err)
			return memory.New(), nil
		}
		repo, err := sqlite.New(path)
		if err != nil {
			logging.From(ctx).Debug("cache store unavailable, degrading to in-process store",
				"path", path, "error", err)
			return memory.New(), nil
		}
		return repo, nil

	case "memory":
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrUnknownBackend, "cache backend must be sqlite or memory", goerr.V(BackendKey, x.backend))
	}
}
