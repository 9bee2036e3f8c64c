package memory

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	"github.com/lurk-dev/lurk/pkg/domain/model"
	"github.com/lurk-dev/lurk/pkg/domain/types"
)

type userCache struct {
	mem  *Memory
	rows *table[objectKey[types.UserID], model.User]
}

var _ interfaces.UserCache = &userCache{}

func newUserCache(mem *Memory) *userCache {
	return &userCache{
		mem:  mem,
		rows: newTable[objectKey[types.UserID], model.User](),
	}
}

func (c *userCache) Get(ctx context.Context, ws types.WorkspaceID, id types.UserID, opts ...interfaces.ReadOption) (*model.User, error) {
	cfg := interfaces.NewReadConfig(opts...)

	e, ok := c.rows.get(objectKey[types.UserID]{ws: ws, id: id})
	if !ok || e.deletedAt != nil {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "user not cached",
			goerr.V("user_id", id), goerr.V("workspace_id", ws))
	}
	if !c.mem.fresh(e.cachedAt, types.UserTTL, cfg) {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "cached user is stale",
			goerr.V("user_id", id), goerr.V("workspace_id", ws))
	}

	user := e.value
	return &user, nil
}

func (c *userCache) List(ctx context.Context, ws types.WorkspaceID, opts ...interfaces.ReadOption) ([]*model.User, error) {
	cfg := interfaces.NewReadConfig(opts...)

	var users []*model.User
	stale := false
	c.rows.scan(func(key objectKey[types.UserID], e *entry[model.User]) {
		if key.ws != ws {
			return
		}
		if !c.mem.fresh(e.cachedAt, types.UserTTL, cfg) {
			stale = true
			return
		}
		user := e.value
		users = append(users, &user)
	})

	if stale {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "cached user set contains stale rows",
			goerr.V("workspace_id", ws))
	}
	if len(users) == 0 {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "no cached users", goerr.V("workspace_id", ws))
	}
	return users, nil
}

func (c *userCache) Put(ctx context.Context, ws types.WorkspaceID, users []*model.User) error {
	if err := ws.Validate(); err != nil {
		return err
	}
	now := c.mem.now()
	for _, user := range users {
		c.rows.put(objectKey[types.UserID]{ws: ws, id: user.ID}, *user, now)
	}
	return nil
}

func (c *userCache) MarkDeleted(ctx context.Context, ws types.WorkspaceID, ids []types.UserID) error {
	now := c.mem.now()
	for _, id := range ids {
		c.rows.markDeleted(objectKey[types.UserID]{ws: ws, id: id}, now)
	}
	return nil
}

func (c *userCache) ResolveName(ctx context.Context, ws types.WorkspaceID, name string, opts ...interfaces.ReadOption) ([]*model.User, error) {
	cfg := interfaces.NewReadConfig(opts...)

	var users []*model.User
	c.rows.scan(func(key objectKey[types.UserID], e *entry[model.User]) {
		if key.ws != ws {
			return
		}
		if !strings.EqualFold(e.value.Name, name) && !strings.EqualFold(e.value.Profile.DisplayName, name) {
			return
		}
		if !c.mem.fresh(e.cachedAt, types.UserTTL, cfg) {
			return
		}
		user := e.value
		users = append(users, &user)
	})

	return users, nil
}
