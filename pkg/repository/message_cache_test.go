package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	"github.com/lurk-dev/lurk/pkg/domain/model"
	"github.com/lurk-dev/lurk/pkg/domain/types"
)

func testMessage(conv types.ConversationID, ts types.MessageTS, text string) *model.Message {
	return &model.Message{
		ConversationID: conv,
		TS:             ts,
		UserID:         "U1",
		Text:           text,
	}
}

func runMessageCacheTest(t *testing.T, newRepo repoFactory) {
	t.Helper()

	const wsID = types.WorkspaceID("T001")
	const convID = types.ConversationID("C001")

	t.Run("Put then List returns messages newest first", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		var msgs []*model.Message
		for i := 1; i <= 3; i++ {
			msgs = append(msgs, testMessage(convID, types.MessageTS(fmt.Sprintf("1700000000.%06d", i)), fmt.Sprintf("message %d", i)))
		}
		gt.NoError(t, repo.Messages().Put(ctx, wsID, msgs)).Required()

		got, err := repo.Messages().List(ctx, wsID, convID)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(3)
		gt.Value(t, got[0].TS).Equal(types.MessageTS("1700000000.000003"))
		gt.Value(t, got[2].TS).Equal(types.MessageTS("1700000000.000001"))
	})

	t.Run("Get round-trips a single message", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		msg := testMessage(convID, "1700000000.000100", "hello")
		msg.ThreadTS = "1700000000.000001"
		msg.Permalink = "https://example.slack.com/archives/C001/p1700000000000100"
		gt.NoError(t, repo.Messages().Put(ctx, wsID, []*model.Message{msg})).Required()

		got, err := repo.Messages().Get(ctx, wsID, convID, "1700000000.000100")
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal(msg)
	})

	t.Run("Messages stale after the short TTL", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		gt.NoError(t, repo.Messages().Put(ctx, wsID, []*model.Message{
			testMessage(convID, "1700000000.000001", "hi"),
		})).Required()

		clock.Advance(types.MessageTTL + time.Second)

		_, err := repo.Messages().List(ctx, wsID, convID)
		gt.Bool(t, errors.Is(err, interfaces.ErrCacheMiss)).True()

		_, err = repo.Messages().Get(ctx, wsID, convID, "1700000000.000001")
		gt.Bool(t, errors.Is(err, interfaces.ErrCacheMiss)).True()
	})

	t.Run("Same timestamp in different conversations stays distinct", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		// Slack timestamps are unique only within a conversation
		gt.NoError(t, repo.Messages().Put(ctx, wsID, []*model.Message{
			testMessage("C001", "1700000000.000001", "in c1"),
			testMessage("C002", "1700000000.000001", "in c2"),
		})).Required()

		got, err := repo.Messages().Get(ctx, wsID, "C001", "1700000000.000001")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Text).Equal("in c1")

		got, err = repo.Messages().Get(ctx, wsID, "C002", "1700000000.000001")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Text).Equal("in c2")
	})

	t.Run("Upsert of an edited message is last-writer-wins", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		gt.NoError(t, repo.Messages().Put(ctx, wsID, []*model.Message{
			testMessage(convID, "1700000000.000001", "original"),
		})).Required()
		gt.NoError(t, repo.Messages().Put(ctx, wsID, []*model.Message{
			testMessage(convID, "1700000000.000001", "edited"),
		})).Required()

		got, err := repo.Messages().List(ctx, wsID, convID)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(1)
		gt.Value(t, got[0].Text).Equal("edited")
	})

	t.Run("MarkDeleted hides a message until it reappears", func(t *testing.T) {
		clock := newTestClock()
		repo := newRepo(t, clock)
		ctx := context.Background()

		msg := testMessage(convID, "1700000000.000001", "hello")
		gt.NoError(t, repo.Messages().Put(ctx, wsID, []*model.Message{msg})).Required()
		gt.NoError(t, repo.Messages().MarkDeleted(ctx, wsID, convID, []types.MessageTS{"1700000000.000001"})).Required()

		_, err := repo.Messages().Get(ctx, wsID, convID, "1700000000.000001")
		gt.Bool(t, errors.Is(err, interfaces.ErrCacheMiss)).True()

		gt.NoError(t, repo.Messages().Put(ctx, wsID, []*model.Message{msg})).Required()

		got, err := repo.Messages().Get(ctx, wsID, convID, "1700000000.000001")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Text).Equal("hello")
	})
}

func TestMessageCache_Memory(t *testing.T) {
	runMessageCacheTest(t, newMemoryRepo)
}

func TestMessageCache_SQLite(t *testing.T) {
	runMessageCacheTest(t, newSQLiteRepo)
}
