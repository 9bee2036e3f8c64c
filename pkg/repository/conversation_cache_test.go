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

func testConversation(id types.ConversationID, name string) *model.Conversation {
	return &model.Conversation{
		ID:         id,
		Name:       name,
		IsChannel:  true,
		Topic:      "topic of " + name,
		Purpose:    "purpose of " + name,
		NumMembers: 12,
	}
}

func runConversationCacheTest(t *testing.T, newRepo repoFactory) {
	t.Helper()

	const wsID = types.WorkspaceID("T001")

	t.Run("Put then Get within TTL returns the same object", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		conv := testConversation("C100", "general")
		gt.NoError(t, repo.Conversations().Put(ctx, wsID, []*model.Conversation{conv})).Required()

		got, err := repo.Conversations().Get(ctx, wsID, "C100")
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal(conv)
	})

	t.Run("Row aged past TTL misses Get but resolves with any-age override", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		conv := testConversation("C100", "general")
		gt.NoError(t, repo.Conversations().Put(ctx, wsID, []*model.Conversation{conv})).Required()

		// 31 minutes with a 30 minute TTL
		clock.Advance(types.ConversationTTL + time.Minute)

		_, err := repo.Conversations().Get(ctx, wsID, "C100")
		gt.Bool(t, errors.Is(err, interfaces.ErrCacheMiss)).True()

		matches, err := repo.Conversations().ResolveName(ctx, wsID, "general")
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(0)

		matches, err = repo.Conversations().ResolveName(ctx, wsID, "general", interfaces.WithAnyAge())
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(1)
		gt.Value(t, matches[0].ID).Equal(types.ConversationID("C100"))
	})

	t.Run("WithMaxAge widens the gate for a single read", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		conv := testConversation("C100", "general")
		gt.NoError(t, repo.Conversations().Put(ctx, wsID, []*model.Conversation{conv})).Required()

		clock.Advance(types.ConversationTTL + time.Minute)

		_, err := repo.Conversations().Get(ctx, wsID, "C100")
		gt.Bool(t, errors.Is(err, interfaces.ErrCacheMiss)).True()

		got, err := repo.Conversations().Get(ctx, wsID, "C100", interfaces.WithMaxAge(2*time.Hour))
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(types.ConversationID("C100"))
	})

	t.Run("One stale row flips a fresh List hit to a miss", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		gt.NoError(t, repo.Conversations().Put(ctx, wsID, []*model.Conversation{
			testConversation("C1", "general"),
			testConversation("C2", "random"),
		})).Required()

		convs, err := repo.Conversations().List(ctx, wsID)
		gt.NoError(t, err).Required()
		gt.Array(t, convs).Length(2)

		clock.Advance(types.ConversationTTL + time.Minute)
		gt.NoError(t, repo.Conversations().Put(ctx, wsID, []*model.Conversation{
			testConversation("C1", "general"),
		})).Required()

		_, err = repo.Conversations().List(ctx, wsID)
		gt.Bool(t, errors.Is(err, interfaces.ErrCacheMiss)).True()
	})

	t.Run("Ambiguous name returns both candidates", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		// Distinct conversations can share a display name, e.g. an archived
		// channel recreated under the same name
		a := testConversation("C1", "general")
		b := testConversation("C2", "general")
		b.IsArchived = true
		gt.NoError(t, repo.Conversations().Put(ctx, wsID, []*model.Conversation{a, b})).Required()

		matches, err := repo.Conversations().ResolveName(ctx, wsID, "general")
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(2)
	})

	t.Run("Same-named conversations in different workspaces never mix", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		gt.NoError(t, repo.Conversations().Put(ctx, "T001", []*model.Conversation{testConversation("C1", "general")})).Required()
		gt.NoError(t, repo.Conversations().Put(ctx, "T002", []*model.Conversation{testConversation("C9", "general")})).Required()

		matches, err := repo.Conversations().ResolveName(ctx, "T001", "general")
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(1)
		gt.Value(t, matches[0].ID).Equal(types.ConversationID("C1"))
	})

	t.Run("MarkDeleted then Put clears the deletion mark", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		conv := testConversation("C100", "general")
		gt.NoError(t, repo.Conversations().Put(ctx, wsID, []*model.Conversation{conv})).Required()
		gt.NoError(t, repo.Conversations().MarkDeleted(ctx, wsID, []types.ConversationID{"C100"})).Required()

		_, err := repo.Conversations().Get(ctx, wsID, "C100")
		gt.Bool(t, errors.Is(err, interfaces.ErrCacheMiss)).True()

		// Soft-deleted rows are invisible to name resolution too
		matches, err := repo.Conversations().ResolveName(ctx, wsID, "general", interfaces.WithAnyAge())
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(0)

		gt.NoError(t, repo.Conversations().Put(ctx, wsID, []*model.Conversation{conv})).Required()

		got, err := repo.Conversations().Get(ctx, wsID, "C100")
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(conv.ID)
	})

	t.Run("Upsert is last-writer-wins", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		first := testConversation("C100", "general")
		gt.NoError(t, repo.Conversations().Put(ctx, wsID, []*model.Conversation{first})).Required()

		second := testConversation("C100", "general-renamed")
		second.NumMembers = 99
		gt.NoError(t, repo.Conversations().Put(ctx, wsID, []*model.Conversation{second})).Required()

		convs, err := repo.Conversations().List(ctx, wsID)
		gt.NoError(t, err).Required()
		gt.Array(t, convs).Length(1)
		gt.Value(t, convs[0]).Equal(second)
	})
}

func TestConversationCache_Memory(t *testing.T) {
	runConversationCacheTest(t, newMemoryRepo)
}

func TestConversationCache_SQLite(t *testing.T) {
	runConversationCacheTest(t, newSQLiteRepo)
}
