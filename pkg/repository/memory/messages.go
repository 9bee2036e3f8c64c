package memory

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	"github.com/lurk-dev/lurk/pkg/domain/model"
	"github.com/lurk-dev/lurk/pkg/domain/types"
)

type messageCache struct {
	mem  *Memory
	rows *table[messageKey, model.Message]
}

var _ interfaces.MessageCache = &messageCache{}

func newMessageCache(mem *Memory) *messageCache {
	return &messageCache{
		mem:  mem,
		rows: newTable[messageKey, model.Message](),
	}
}

func (c *messageCache) Get(ctx context.Context, ws types.WorkspaceID, conv types.ConversationID, ts types.MessageTS, opts ...interfaces.ReadOption) (*model.Message, error) {
	cfg := interfaces.NewReadConfig(opts...)

	e, ok := c.rows.get(messageKey{ws: ws, conv: conv, ts: ts})
	if !ok || e.deletedAt != nil {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "message not cached",
			goerr.V("conversation_id", conv), goerr.V("ts", ts))
	}
	if !c.mem.fresh(e.cachedAt, types.MessageTTL, cfg) {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "cached message is stale",
			goerr.V("conversation_id", conv), goerr.V("ts", ts))
	}

	msg := e.value
	return &msg, nil
}

func (c *messageCache) List(ctx context.Context, ws types.WorkspaceID, conv types.ConversationID, opts ...interfaces.ReadOption) ([]*model.Message, error) {
	cfg := interfaces.NewReadConfig(opts...)

	var msgs []*model.Message
	stale := false
	c.rows.scan(func(key messageKey, e *entry[model.Message]) {
		if key.ws != ws || key.conv != conv {
			return
		}
		if !c.mem.fresh(e.cachedAt, types.MessageTTL, cfg) {
			stale = true
			return
		}
		msg := e.value
		msgs = append(msgs, &msg)
	})

	if stale {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "cached message set contains stale rows",
			goerr.V("conversation_id", conv))
	}
	if len(msgs) == 0 {
		return nil, goerr.Wrap(interfaces.ErrCacheMiss, "no cached messages", goerr.V("conversation_id", conv))
	}

	// Newest first, matching the SQLite backend
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].TS > msgs[j].TS
	})
	return msgs, nil
}

func (c *messageCache) Put(ctx context.Context, ws types.WorkspaceID, msgs []*model.Message) error {
	if err := ws.Validate(); err != nil {
		return err
	}
	now := c.mem.now()
	for _, msg := range msgs {
		c.rows.put(messageKey{ws: ws, conv: msg.ConversationID, ts: msg.TS}, *msg, now)
	}
	return nil
}

func (c *messageCache) MarkDeleted(ctx context.Context, ws types.WorkspaceID, conv types.ConversationID, tss []types.MessageTS) error {
	now := c.mem.now()
	for _, ts := range tss {
		c.rows.markDeleted(messageKey{ws: ws, conv: conv, ts: ts}, now)
	}
	return nil
}
