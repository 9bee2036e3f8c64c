package memory

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	"github.com/lurk-dev/lurk/pkg/domain/model"
	"github.com/lurk-dev/lurk/pkg/domain/types"
)

type conversationCache struct {
	mem  *Memory
	rows *table[objectKey[types.ConversationID], model.Conversation]
}

var _ interfaces.ConversationCache = &conversationCache{}

func newConversationCache(mem *Memory) *conversationCache {
	return &conversationCache{
		mem:  mem,
		rows: newTable[objectKey[types.ConversationID], model.Conversation](),
	}
}

func (c *conversationCache) Get(ctx context.Context, ws types.WorkspaceID, id types.ConversationID, opts ...interfaces.ReadOption) (*model.Conversation, error) {
	cfg := interfaces.NewReadConfig(opts...)

	e, ok := c.rows.get(objectKey[types.ConversationID]{ws: ws, id: id})
	if !ok || e.deletedAt != nil {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "conversation not cached",
			goerr.V("conversation_id", id), goerr.V("workspace_id", ws))
	}
	if !c.mem.fresh(e.cachedAt, types.ConversationTTL, cfg) {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "cached conversation is stale",
			goerr.V("conversation_id", id), goerr.V("workspace_id", ws))
	}

	conv := e.value
	return &conv, nil
}

func (c *conversationCache) List(ctx context.Context, ws types.WorkspaceID, opts ...interfaces.ReadOption) ([]*model.Conversation, error) {
	cfg := interfaces.NewReadConfig(opts...)

	var convs []*model.Conversation
	stale := false
	c.rows.scan(func(key objectKey[types.ConversationID], e *entry[model.Conversation]) {
		if key.ws != ws {
			return
		}
		if !c.mem.fresh(e.cachedAt, types.ConversationTTL, cfg) {
			stale = true
			return
		}
		conv := e.value
		convs = append(convs, &conv)
	})

	if stale {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "cached conversation set contains stale rows",
			goerr.V("workspace_id", ws))
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
	now := c.mem.now()
	for _, conv := range convs {
		c.rows.put(objectKey[types.ConversationID]{ws: ws, id: conv.ID}, *conv, now)
	}
	return nil
}

func (c *conversationCache) MarkDeleted(ctx context.Context, ws types.WorkspaceID, ids []types.ConversationID) error {
	now := c.mem.now()
	for _, id := range ids {
		c.rows.markDeleted(objectKey[types.ConversationID]{ws: ws, id: id}, now)
	}
	return nil
}

func (c *conversationCache) ResolveName(ctx context.Context, ws types.WorkspaceID, name string, opts ...interfaces.ReadOption) ([]*model.Conversation, error) {
	cfg := interfaces.NewReadConfig(opts...)

	var convs []*model.Conversation
	c.rows.scan(func(key objectKey[types.ConversationID], e *entry[model.Conversation]) {
		if key.ws != ws {
			return
		}
		if !strings.EqualFold(e.value.Name, name) {
			return
		}
		if !c.mem.fresh(e.cachedAt, types.ConversationTTL, cfg) {
			return
		}
		conv := e.value
		convs = append(convs, &conv)
	})

	return convs, nil
}
