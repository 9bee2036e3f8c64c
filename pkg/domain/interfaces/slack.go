package interfaces

import (
	"context"

	"github.com/lurk-dev/lurk/pkg/domain/model"
	"github.com/lurk-dev/lurk/pkg/domain/types"
)

// SlackService is the remote producer: it returns fully-deserialized
// objects on success and an error otherwise. The cache never interprets
// remote error payloads; only NotFound is distinguished so callers can
// propagate explicit deletions.
type SlackService interface {
	// Workspace returns the authenticated workspace identity (auth.test)
	Workspace(ctx context.Context) (*model.Workspace, error)

	// ListUsers retrieves every member of the workspace, following
	// pagination cursors to the end
	ListUsers(ctx context.Context) ([]*model.User, error)

	// GetUser retrieves a single user. A remote "user_not_found" is
	// reported as ErrRemoteNotFound.
	GetUser(ctx context.Context, id types.UserID) (*model.User, error)

	// ListConversations retrieves the public and private channels of the
	// workspace, following pagination cursors to the end
	ListConversations(ctx context.Context, includeArchived bool) ([]*model.Conversation, error)

	// GetConversation retrieves a single conversation. A remote
	// "channel_not_found" is reported as ErrRemoteNotFound.
	GetConversation(ctx context.Context, id types.ConversationID) (*model.Conversation, error)

	// ListMessages retrieves up to limit recent messages of the
	// conversation, newest first
	ListMessages(ctx context.Context, conv types.ConversationID, limit int) ([]*model.Message, error)
}
