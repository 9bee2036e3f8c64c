package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/lurk-dev/lurk/pkg/cli/config"
	"github.com/lurk-dev/lurk/pkg/domain/model"
)

func TestCacheConfigureMemoryBackend(t *testing.T) {
	cache := config.NewCacheForTest("", "memory", false, false, false)

	repo, err := cache.Configure(context.Background())
	gt.NoError(t, err).Required()
	defer repo.Close()

	gt.Value(t, repo).NotNil()
}

func TestCacheConfigureSQLiteBackend(t *testing.T) {
	cache := config.NewCacheForTest(t.TempDir(), "sqlite", false, false, false)

	repo, err := cache.Configure(context.Background())
	gt.NoError(t, err).Required()
	defer repo.Close()

	gt.Value(t, repo).NotNil()
}

func TestCacheConfigureUnknownBackend(t *testing.T) {
	cache := config.NewCacheForTest("", "redis", false, false, false)

	_, err := cache.Configure(context.Background())
	gt.Bool(t, errors.Is(err, config.ErrUnknownBackend)).True()
}

func TestCacheConfigureDisabled(t *testing.T) {
	// --no-cache never touches the filesystem even with a sqlite backend
	cache := config.NewCacheForTest("/nonexistent/readonly/path", "sqlite", true, false, false)

	repo, err := cache.Configure(context.Background())
	gt.NoError(t, err).Required()
	defer repo.Close()

	gt.Value(t, repo).NotNil()
}

func TestCacheApplyDefaults(t *testing.T) {
	app := &config.AppConfig{}
	app.Cache.Dir = "/tmp/lurk-cache"
	app.Cache.Backend = "memory"
	app.Cache.Messages = true

	cache := config.NewCacheForTest("", "sqlite", false, false, false)
	cache.ApplyDefaults(app)

	gt.Value(t, cache.Backend()).Equal("memory")
	gt.Bool(t, cache.Messages()).True()
}

func TestCacheApplyDefaultsKeepsExplicitFlags(t *testing.T) {
	app := &config.AppConfig{}
	app.Cache.Dir = "/tmp/lurk-cache"

	cache := config.NewCacheForTest("/explicit", "sqlite", false, false, false)
	cache.ApplyDefaults(app)

	path, err := cache.Path()
	gt.NoError(t, err).Required()
	gt.Value(t, path).Equal("/explicit/cache.db")
}

func TestCacheConfigureBrokenStoreDegrades(t *testing.T) {
	ctx := context.Background()

	// Using a regular file as the cache directory makes the database
	// open fail; the tool must keep working on an in-process store
	blocker := filepath.Join(t.TempDir(), "blocker")
	gt.NoError(t, os.WriteFile(blocker, []byte("x"), 0600)).Required()

	cache := config.NewCacheForTest(filepath.Join(blocker, "nested"), "sqlite", false, false, false)

	repo, err := cache.Configure(ctx)
	gt.NoError(t, err).Required()
	defer repo.Close()

	gt.NoError(t, repo.Users().Put(ctx, "T001", []*model.User{{ID: "U1", Name: "alice"}})).Required()
	got, err := repo.Users().Get(ctx, "T001", "U1")
	gt.NoError(t, err).Required()
	gt.Value(t, got.Name).Equal("alice")
}
