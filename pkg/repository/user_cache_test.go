package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	"github.com/lurk-dev/lurk/pkg/domain/model"
	"github.com/lurk-dev/lurk/pkg/domain/types"
)

func testUser(id types.UserID, name string) *model.User {
	return &model.User{
		ID:       id,
		Name:     name,
		RealName: "Test " + name,
		Timezone: "America/New_York",
		Profile: model.UserProfile{
			Email:       name + "@example.com",
			DisplayName: name,
		},
	}
}

func runUserCacheTest(t *testing.T, newRepo repoFactory) {
	t.Helper()

	const wsID = types.WorkspaceID("T001")

	t.Run("Put then Get within TTL returns the same object", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		user := testUser("U100", "alice")
		user.IsAdmin = true

		gt.NoError(t, repo.Users().Put(ctx, wsID, []*model.User{user})).Required()

		got, err := repo.Users().Get(ctx, wsID, "U100")
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal(user)
	})

	t.Run("Get after TTL elapsed returns miss without deleting the row", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		gt.NoError(t, repo.Users().Put(ctx, wsID, []*model.User{testUser("U100", "alice")})).Required()

		clock.Advance(types.UserTTL + time.Minute)

		_, err := repo.Users().Get(ctx, wsID, "U100")
		gt.Bool(t, errors.Is(err, interfaces.ErrCacheMiss)).True()

		// The row survives: a resolve with the age gate disabled still sees it
		matches, err := repo.Users().ResolveName(ctx, wsID, "alice", interfaces.WithAnyAge())
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(1)
	})

	t.Run("Get of unknown user returns miss", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		_, err := repo.Users().Get(ctx, wsID, "U404")
		gt.Bool(t, errors.Is(err, interfaces.ErrCacheMiss)).True()
	})

	t.Run("List is a hit only when every row is fresh", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		gt.NoError(t, repo.Users().Put(ctx, wsID, []*model.User{
			testUser("U1", "alice"),
			testUser("U2", "bob"),
			testUser("U3", "carol"),
		})).Required()

		users, err := repo.Users().List(ctx, wsID)
		gt.NoError(t, err).Required()
		gt.Array(t, users).Length(3)

		// Age the existing rows past TTL, then refresh all but one: the
		// single stale row flips the whole list to a miss
		clock.Advance(types.UserTTL + time.Minute)
		gt.NoError(t, repo.Users().Put(ctx, wsID, []*model.User{
			testUser("U1", "alice"),
			testUser("U2", "bob"),
		})).Required()

		_, err = repo.Users().List(ctx, wsID)
		gt.Bool(t, errors.Is(err, interfaces.ErrCacheMiss)).True()
	})

	t.Run("List of empty workspace returns miss", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		_, err := repo.Users().List(ctx, wsID)
		gt.Bool(t, errors.Is(err, interfaces.ErrCacheMiss)).True()
	})

	t.Run("Put twice keeps one row with the second payload", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		first := testUser("U100", "alice")
		gt.NoError(t, repo.Users().Put(ctx, wsID, []*model.User{first})).Required()

		second := testUser("U100", "alice")
		second.RealName = "Alice Renamed"
		second.Profile.StatusText = "on vacation"
		gt.NoError(t, repo.Users().Put(ctx, wsID, []*model.User{second})).Required()

		users, err := repo.Users().List(ctx, wsID)
		gt.NoError(t, err).Required()
		gt.Array(t, users).Length(1)
		gt.Value(t, users[0]).Equal(second)
	})

	t.Run("MarkDeleted hides the row and Put resurrects it", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		user := testUser("U100", "alice")
		gt.NoError(t, repo.Users().Put(ctx, wsID, []*model.User{user})).Required()
		gt.NoError(t, repo.Users().MarkDeleted(ctx, wsID, []types.UserID{"U100"})).Required()

		_, err := repo.Users().Get(ctx, wsID, "U100")
		gt.Bool(t, errors.Is(err, interfaces.ErrCacheMiss)).True()

		// Reappearance is stronger evidence than the prior deletion mark
		gt.NoError(t, repo.Users().Put(ctx, wsID, []*model.User{user})).Required()

		got, err := repo.Users().Get(ctx, wsID, "U100")
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(user.ID)
	})

	t.Run("ResolveName matches case-insensitively", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		user := testUser("U1", "alice")
		user.Name = "Alice"
		gt.NoError(t, repo.Users().Put(ctx, wsID, []*model.User{user})).Required()

		matches, err := repo.Users().ResolveName(ctx, wsID, "ALICE")
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(1)
		gt.Value(t, matches[0].ID).Equal(types.UserID("U1"))
	})

	t.Run("ResolveName matches the profile display name", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		user := testUser("U9", "jdoe")
		user.Profile.DisplayName = "Johnny"
		gt.NoError(t, repo.Users().Put(ctx, wsID, []*model.User{user})).Required()

		matches, err := repo.Users().ResolveName(ctx, wsID, "johnny")
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(1)
		gt.Value(t, matches[0].ID).Equal(types.UserID("U9"))
	})

	t.Run("ResolveName returns every match, never an arbitrary pick", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		a := testUser("U1", "sam")
		b := testUser("U2", "samantha")
		b.Profile.DisplayName = "sam"
		gt.NoError(t, repo.Users().Put(ctx, wsID, []*model.User{a, b})).Required()

		matches, err := repo.Users().ResolveName(ctx, wsID, "sam")
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(2)
	})

	t.Run("ResolveName of unknown name returns empty", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		matches, err := repo.Users().ResolveName(ctx, wsID, "nobody")
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(0)
	})

	t.Run("Workspace isolation on reads and resolves", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		gt.NoError(t, repo.Users().Put(ctx, "T001", []*model.User{testUser("U1", "alice")})).Required()
		gt.NoError(t, repo.Users().Put(ctx, "T002", []*model.User{testUser("U1", "alice")})).Required()

		_, err := repo.Users().Get(ctx, "T003", "U1")
		gt.Bool(t, errors.Is(err, interfaces.ErrCacheMiss)).True()

		users, err := repo.Users().List(ctx, "T001")
		gt.NoError(t, err).Required()
		gt.Array(t, users).Length(1)
	})
}

func TestUserCache_Memory(t *testing.T) {
	runUserCacheTest(t, newMemoryRepo)
}

func TestUserCache_SQLite(t *testing.T) {
	runUserCacheTest(t, newSQLiteRepo)
}
