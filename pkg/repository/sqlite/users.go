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

type userCache struct {
	store *Store
}

var _ interfaces.UserCache = &userCache{}

const userColumns = "snapshot, cached_at"

// Get returns the cached user, or ErrCacheMiss when the row is absent,
// stale, soft-deleted, or undecodable.
func (c *userCache) Get(ctx context.Context, ws types.WorkspaceID, id types.UserID, opts ...interfaces.ReadOption) (*model.User, error) {
	cfg := interfaces.NewReadConfig(opts...)

	row := c.store.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE id = ? AND workspace_id = ? AND deleted_at IS NULL`,
		string(id), string(ws))

	var snapshot string
	var cachedAt int64
	if err := row.Scan(&snapshot, &cachedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(interfaces.ErrCacheMiss, "user not cached",
				goerr.V("user_id", id), goerr.V("workspace_id", ws))
		}
		return nil, goerr.Wrap(err, "failed to query cached user", goerr.V("user_id", id))
	}

	if !c.store.fresh(cachedAt, types.UserTTL, cfg) {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "cached user is stale",
			goerr.V("user_id", id), goerr.V("workspace_id", ws))
	}

	user, ok := decodeSnapshot[model.User](snapshot)
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "cached user snapshot is corrupt",
			goerr.V("user_id", id), goerr.V("workspace_id", ws))
	}
	return user, nil
}

// List returns every cached user of the workspace. The set is a hit only
// when it is non-empty and every row is fresh; one stale row invalidates
// the whole read so the result is always presentable as the current full
// set.
func (c *userCache) List(ctx context.Context, ws types.WorkspaceID, opts ...interfaces.ReadOption) ([]*model.User, error) {
	cfg := interfaces.NewReadConfig(opts...)

	rows, err := c.store.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE workspace_id = ? AND deleted_at IS NULL ORDER BY name`,
		string(ws))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query cached users", goerr.V("workspace_id", ws))
	}
	defer func() {
		_ = rows.Close()
	}()

	var users []*model.User
	for rows.Next() {
		var snapshot string
		var cachedAt int64
		if err := rows.Scan(&snapshot, &cachedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan cached user")
		}
		if !c.store.fresh(cachedAt, types.UserTTL, cfg) {
			return nil, goerr.Wrap(interfaces.ErrCacheMiss, "cached user set contains stale rows",
				goerr.V("workspace_id", ws))
		}
		user, ok := decodeSnapshot[model.User](snapshot)
		if !ok {
			return nil, goerr.Wrap(interfaces.ErrCacheMiss, "cached user snapshot is corrupt",
				goerr.V("workspace_id", ws))
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate cached users")
	}

	if len(users) == 0 {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "no cached users", goerr.V("workspace_id", ws))
	}
	return users, nil
}

// Put upserts the users with last-writer-wins semantics: the fresh remote
// response replaces the row wholesale, stamps cached_at, and clears any
// prior deletion mark. Users that fail to encode are skipped; the rest of
// the batch persists.
func (c *userCache) Put(ctx context.Context, ws types.WorkspaceID, users []*model.User) error {
	if err := ws.Validate(); err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin user upsert")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := c.store.now().UnixNano()
	for _, user := range users {
		snapshot, ok := encodeSnapshot(user)
		if !ok {
			logging.From(ctx).Debug("skipping unencodable user", "user_id", user.ID)
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (
				id, workspace_id, name, real_name, deleted, is_bot, is_admin, is_owner, tz,
				profile_email, profile_display_name, profile_status_text,
				snapshot, cached_at, deleted_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
			ON CONFLICT (id, workspace_id) DO UPDATE SET
				name = excluded.name,
				real_name = excluded.real_name,
				deleted = excluded.deleted,
				is_bot = excluded.is_bot,
				is_admin = excluded.is_admin,
				is_owner = excluded.is_owner,
				tz = excluded.tz,
				profile_email = excluded.profile_email,
				profile_display_name = excluded.profile_display_name,
				profile_status_text = excluded.profile_status_text,
				snapshot = excluded.snapshot,
				cached_at = excluded.cached_at,
				deleted_at = NULL`,
			string(user.ID), string(ws), user.Name, user.RealName,
			user.Deleted, user.IsBot, user.IsAdmin, user.IsOwner, user.Timezone,
			user.Profile.Email, user.Profile.DisplayName, user.Profile.StatusText,
			snapshot, now,
		); err != nil {
			return goerr.Wrap(err, "failed to upsert user", goerr.V("user_id", user.ID))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit user upsert")
	}
	return nil
}

// MarkDeleted soft-deletes the rows. The rows stay in the store and a
// later Put of the same key clears the mark again.
func (c *userCache) MarkDeleted(ctx context.Context, ws types.WorkspaceID, ids []types.UserID) error {
	now := c.store.now().UnixNano()
	for _, id := range ids {
		if _, err := c.store.db.ExecContext(ctx,
			"UPDATE users SET deleted_at = ? WHERE id = ? AND workspace_id = ?",
			now, string(id), string(ws),
		); err != nil {
			return goerr.Wrap(err, "failed to mark user deleted", goerr.V("user_id", id))
		}
	}
	return nil
}

// ResolveName returns all non-deleted users whose account name or profile
// display name equals name case-insensitively. Corrupt rows are skipped;
// stale rows are filtered by the caller-controlled freshness gate.
func (c *userCache) ResolveName(ctx context.Context, ws types.WorkspaceID, name string, opts ...interfaces.ReadOption) ([]*model.User, error) {
	cfg := interfaces.NewReadConfig(opts...)

	rows, err := c.store.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE workspace_id = ? AND deleted_at IS NULL
		   AND (LOWER(name) = LOWER(?) OR LOWER(profile_display_name) = LOWER(?))
		 ORDER BY id`,
		string(ws), name, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve user name",
			goerr.V("name", name), goerr.V("workspace_id", ws))
	}
	defer func() {
		_ = rows.Close()
	}()

	var users []*model.User
	for rows.Next() {
		var snapshot string
		var cachedAt int64
		if err := rows.Scan(&snapshot, &cachedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan cached user")
		}
		if !c.store.fresh(cachedAt, types.UserTTL, cfg) {
			continue
		}
		if user, ok := decodeSnapshot[model.User](snapshot); ok {
			users = append(users, user)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate cached users")
	}

	return users, nil
}
