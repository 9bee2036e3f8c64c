package memory

import (
	"context"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	"github.com/lurk-dev/lurk/pkg/domain/types"
)

// Clear hard-deletes every row of the workspace, including soft-deleted
// ones
func (m *Memory) Clear(ctx context.Context, ws types.WorkspaceID) error {
	if err := ws.Validate(); err != nil {
		return err
	}
	m.users.rows.purge(func(k objectKey[types.UserID]) bool { return k.ws == ws })
	m.convs.rows.purge(func(k objectKey[types.ConversationID]) bool { return k.ws == ws })
	m.msgs.rows.purge(func(k messageKey) bool { return k.ws == ws })
	return nil
}

// ClearAll hard-deletes every row of every workspace
func (m *Memory) ClearAll(ctx context.Context) error {
	m.users.rows.purge(func(objectKey[types.UserID]) bool { return true })
	m.convs.rows.purge(func(objectKey[types.ConversationID]) bool { return true })
	m.msgs.rows.purge(func(messageKey) bool { return true })
	return nil
}

// Stats reports per-kind row counts for the workspace
func (m *Memory) Stats(ctx context.Context, ws types.WorkspaceID) ([]interfaces.KindCount, error) {
	var counts []interfaces.KindCount

	total, deleted, oldest, newest := m.users.rows.count(func(k objectKey[types.UserID]) bool { return k.ws == ws })
	counts = append(counts, interfaces.KindCount{
		Kind: types.KindUser, Rows: total, Deleted: deleted, Oldest: oldest, Newest: newest,
	})

	total, deleted, oldest, newest = m.convs.rows.count(func(k objectKey[types.ConversationID]) bool { return k.ws == ws })
	counts = append(counts, interfaces.KindCount{
		Kind: types.KindConversation, Rows: total, Deleted: deleted, Oldest: oldest, Newest: newest,
	})

	total, deleted, oldest, newest = m.msgs.rows.count(func(k messageKey) bool { return k.ws == ws })
	counts = append(counts, interfaces.KindCount{
		Kind: types.KindMessage, Rows: total, Deleted: deleted, Oldest: oldest, Newest: newest,
	})

	return counts, nil
}
