package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	"github.com/lurk-dev/lurk/pkg/domain/model"
	"github.com/lurk-dev/lurk/pkg/domain/types"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
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

// brokenRepo reads fine but rejects every write, to exercise the rule that
// cache failures never fail an operation.
type brokenRepo struct {
	interfaces.Repository
}

func (r *brokenRepo) Users() interfaces.UserCache {
	return &brokenUserCache{UserCache: r.Repository.Users()}
}

type brokenUserCache struct {
	interfaces.UserCache
}

func (c *brokenUserCache) Put(ctx context.Context, ws types.WorkspaceID, users []*model.User) error {
	return goerr.New("disk full")
}
