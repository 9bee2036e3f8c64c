package repository_test

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	"github.com/lurk-dev/lurk/pkg/repository/memory"
	"github.com/lurk-dev/lurk/pkg/repository/sqlite"
)

// testClock is an adjustable clock injected into both backends so the
// suites can simulate elapsed TTL without sleeping
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Now()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type repoFactory func(t *testing.T, clock *testClock) interfaces.Repository

func newMemoryRepo(t *testing.T, clock *testClock) interfaces.Repository {
	return memory.New(memory.WithNowFunc(clock.Now))
}

func newSQLiteRepo(t *testing.T, clock *testClock) interfaces.Repository {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "cache.db"), sqlite.WithNowFunc(clock.Now))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, store.Close())
	})
	return store
}
