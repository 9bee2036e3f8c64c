package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	"github.com/lurk-dev/lurk/pkg/domain/model"
	"github.com/lurk-dev/lurk/pkg/domain/types"
	"github.com/lurk-dev/lurk/pkg/utils/logging"
)

type messageCache struct {
	store *Store
}

var _ interfaces.MessageCache = &messageCache{}

func (c *messageCache) Get(ctx context.Context, ws types.WorkspaceID, conv types.ConversationID, ts types.MessageTS, opts ...interfaces.ReadOption) (*model.Message, error) {
	cfg := interfaces.NewReadConfig(opts...)

	row := c.store.db.QueryRowContext(ctx,
		`SELECT snapshot, cached_at FROM messages
		 WHERE conversation_id = ? AND workspace_id = ? AND ts = ? AND deleted_at IS NULL`,
		string(conv), string(ws), string(ts))

	var snapshot string
	var cachedAt int64
	if err := row.Scan(&snapshot, &cachedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(interfaces.ErrCacheMiss, "message not cached",
				goerr.V("conversation_id", conv), goerr.V("ts", ts))
		}
		return nil, goerr.Wrap(err, "failed to query cached message",
			goerr.V("conversation_id", conv), goerr.V("ts", ts))
	}

	if !c.store.fresh(cachedAt, types.MessageTTL, cfg) {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "cached message is stale",
			goerr.V("conversation_id", conv), goerr.V("ts", ts))
	}

	msg, ok := decodeSnapshot[model.Message](snapshot)
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "cached message snapshot is corrupt",
			goerr.V("conversation_id", conv), goerr.V("ts", ts))
	}
	return msg, nil
}

// List returns the cached messages of the conversation, newest first. Any
// stale row invalidates the whole read, same as the other collection
// lookups: a partial-freshness set would silently under-report.
func (c *messageCache) List(ctx context.Context, ws types.WorkspaceID, conv types.ConversationID, opts ...interfaces.ReadOption) ([]*model.Message, error) {
	cfg := interfaces.NewReadConfig(opts...)

	rows, err := c.store.db.QueryContext(ctx,
		`SELECT snapshot, cached_at FROM messages
		 WHERE conversation_id = ? AND workspace_id = ? AND deleted_at IS NULL
		 ORDER BY ts DESC`,
		string(conv), string(ws))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query cached messages", goerr.V("conversation_id", conv))
	}
	defer func() {
		_ = rows.Close()
	}()

	var msgs []*model.Message
	for rows.Next() {
		var snapshot string
		var cachedAt int64
		if err := rows.Scan(&snapshot, &cachedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan cached message")
		}
		if !c.store.fresh(cachedAt, types.MessageTTL, cfg) {
			return nil, goerr.Wrap(interfaces.ErrCacheMiss, "cached message set contains stale rows",
				goerr.V("conversation_id", conv))
		}
		msg, ok := decodeSnapshot[model.Message](snapshot)
		if !ok {
			return nil, goerr.Wrap(interfaces.ErrCacheMiss, "cached message snapshot is corrupt",
				goerr.V("conversation_id", conv))
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate cached messages")
	}

	if len(msgs) == 0 {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "no cached messages", goerr.V("conversation_id", conv))
	}
	return msgs, nil
}

func (c *messageCache) Put(ctx context.Context, ws types.WorkspaceID, msgs []*model.Message) error {
	if err := ws.Validate(); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin message upsert")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := c.store.now().UnixNano()
	for _, msg := range msgs {
		snapshot, ok := encodeSnapshot(msg)
		if !ok {
			logging.From(ctx).Debug("skipping unencodable message",
				"conversation_id", msg.ConversationID, "ts", msg.TS)
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (
				conversation_id, workspace_id, ts, user_id, text, thread_ts, permalink,
				snapshot, cached_at, deleted_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
			ON CONFLICT (conversation_id, workspace_id, ts) DO UPDATE SET
				user_id = excluded.user_id,
				text = excluded.text,
				thread_ts = excluded.thread_ts,
				permalink = excluded.permalink,
				snapshot = excluded.snapshot,
				cached_at = excluded.cached_at,
				deleted_at = NULL`,
			string(msg.ConversationID), string(ws), string(msg.TS),
			string(msg.UserID), msg.Text, string(msg.ThreadTS), msg.Permalink,
			snapshot, now,
		); err != nil {
			return goerr.Wrap(err, "failed to upsert message",
				goerr.V("conversation_id", msg.ConversationID), goerr.V("ts", msg.TS))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit message upsert")
	}
	return nil
}

func (c *messageCache) MarkDeleted(ctx context.Context, ws types.WorkspaceID, conv types.ConversationID, tss []types.MessageTS) error {
	now := c.store.now().UnixNano()
	for _, ts := range tss {
		if _, err := c.store.db.ExecContext(ctx,
			"UPDATE messages SET deleted_at = ? WHERE conversation_id = ? AND workspace_id = ? AND ts = ?",
			now, string(conv), string(ws), string(ts),
		); err != nil {
			return goerr.Wrap(err, "failed to mark message deleted",
				goerr.V("conversation_id", conv), goerr.V("ts", ts))
		}
	}
	return nil
}
