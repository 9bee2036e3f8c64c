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

type conversationCache struct {
	store *Store
}

var _ interfaces.ConversationCache = &conversationCache{}

func (c *conversationCache) Get(ctx context.Context, ws types.WorkspaceID, id types.ConversationID, opts ...interfaces.ReadOption) (*model.Conversation, error) {
	cfg := interfaces.NewReadConfig(opts...)

	row := c.store.db.QueryRowContext(ctx,
		`SELECT snapshot, cached_at FROM conversations
		 WHERE id = ? AND workspace_id = ? AND deleted_at IS NULL`,
		string(id), string(ws))

	var snapshot string
	var cachedAt int64
	if err := row.Scan(&snapshot, &cachedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(interfaces.ErrCacheMiss, "conversation not cached",
				goerr.V("conversation_id", id), goerr.V("workspace_id", ws))
		}
		return nil, goerr.Wrap(err, "failed to query cached conversation", goerr.V("conversation_id", id))
	}

	if !c.store.fresh(cachedAt, types.ConversationTTL, cfg) {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "cached conversation is stale",
			goerr.V("conversation_id", id), goerr.V("workspace_id", ws))
	}

	conv, ok := decodeSnapshot[model.Conversation](snapshot)
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "cached conversation snapshot is corrupt",
			goerr.V("conversation_id", id), goerr.V("workspace_id", ws))
	}
	return conv, nil
}

func (c *conversationCache) List(ctx context.Context, ws types.WorkspaceID, opts ...interfaces.ReadOption) ([]*model.Conversation, error) {
	cfg := interfaces.NewReadConfig(opts...)

	rows, err := c.store.db.QueryContext(ctx,
		`SELECT snapshot, cached_at FROM conversations
		 WHERE workspace_id = ? AND deleted_at IS NULL ORDER BY name`,
		string(ws))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query cached conversations", goerr.V("workspace_id", ws))
	}
	defer func() {
		_ = rows.Close()
	}()

	var convs []*model.Conversation
	for rows.Next() {
		var snapshot string
		var cachedAt int64
		if err := rows.Scan(&snapshot, &cachedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan cached conversation")
		}
		if !c.store.fresh(cachedAt, types.ConversationTTL, cfg) {
			return nil, goerr.Wrap(interfaces.ErrCacheMiss, "cached conversation set contains stale rows",
				goerr.V("workspace_id", ws))
		}
		conv, ok := decodeSnapshot[model.Conversation](snapshot)
		if !ok {
			return nil, goerr.Wrap(interfaces.ErrCacheMiss, "cached conversation snapshot is corrupt",
				goerr.V("workspace_id", ws))
		}
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate cached conversations")
	}

	if len(convs) == 0 {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "no cached conversations", goerr.V("workspace_id", ws))
	}
	return convs, nil
}

func (c *conversationCache) Put(ctx context.Context, ws types.WorkspaceID, convs []*model.Conversation) error {
	if err := ws.Validate(); err != nil {
		return err
	}
	if len(convs) == 0 {
		return nil
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin conversation upsert")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := c.store.now().UnixNano()
	for _, conv := range convs {
		snapshot, ok := encodeSnapshot(conv)
		if !ok {
			logging.From(ctx).Debug("skipping unencodable conversation", "conversation_id", conv.ID)
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO conversations (
				id, workspace_id, name, is_channel, is_group, is_im, is_mpim, is_private,
				is_archived, topic, purpose, num_members,
				snapshot, cached_at, deleted_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
			ON CONFLICT (id, workspace_id) DO UPDATE SET
				name = excluded.name,
				is_channel = excluded.is_channel,
				is_group = excluded.is_group,
				is_im = excluded.is_im,
				is_mpim = excluded.is_mpim,
				is_private = excluded.is_private,
				is_archived = excluded.is_archived,
				topic = excluded.topic,
				purpose = excluded.purpose,
				num_members = excluded.num_members,
				snapshot = excluded.snapshot,
				cached_at = excluded.cached_at,
				deleted_at = NULL`,
			string(conv.ID), string(ws), conv.Name,
			conv.IsChannel, conv.IsGroup, conv.IsIM, conv.IsMpIM, conv.IsPrivate,
			conv.IsArchived, conv.Topic, conv.Purpose, conv.NumMembers,
			snapshot, now,
		); err != nil {
			return goerr.Wrap(err, "failed to upsert conversation", goerr.V("conversation_id", conv.ID))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit conversation upsert")
	}
	return nil
}

func (c *conversationCache) MarkDeleted(ctx context.Context, ws types.WorkspaceID, ids []types.ConversationID) error {
	now := c.store.now().UnixNano()
	for _, id := range ids {
		if _, err := c.store.db.ExecContext(ctx,
			"UPDATE conversations SET deleted_at = ? WHERE id = ? AND workspace_id = ?",
			now, string(id), string(ws),
		); err != nil {
			return goerr.Wrap(err, "failed to mark conversation deleted", goerr.V("conversation_id", id))
		}
	}
	return nil
}

func (c *conversationCache) ResolveName(ctx context.Context, ws types.WorkspaceID, name string, opts ...interfaces.ReadOption) ([]*model.Conversation, error) {
	cfg := interfaces.NewReadConfig(opts...)

	rows, err := c.store.db.QueryContext(ctx,
		`SELECT snapshot, cached_at FROM conversations
		 WHERE workspace_id = ? AND deleted_at IS NULL AND LOWER(name) = LOWER(?)
		 ORDER BY id`,
		string(ws), name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve conversation name",
			goerr.V("name", name), goerr.V("workspace_id", ws))
	}
	defer func() {
		_ = rows.Close()
	}()

	var convs []*model.Conversation
	for rows.Next() {
		var snapshot string
		var cachedAt int64
		if err := rows.Scan(&snapshot, &cachedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan cached conversation")
		}
		if !c.store.fresh(cachedAt, types.ConversationTTL, cfg) {
			continue
		}
		if conv, ok := decodeSnapshot[model.Conversation](snapshot); ok {
			convs = append(convs, conv)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate cached conversations")
	}

	return convs, nil
}
