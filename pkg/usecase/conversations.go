package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	"github.com/lurk-dev/lurk/pkg/domain/model"
	"github.com/lurk-dev/lurk/pkg/domain/types"
)

// GetConversation returns the conversation, cache first. A remote
// channel_not_found for a cached ID soft-deletes the row.
func (uc *UseCases) GetConversation(ctx context.Context, ws types.WorkspaceID, id types.ConversationID) (*model.Conversation, error) {
	if conv, ok := cacheRead(ctx, uc, "conversations.get", func() (*model.Conversation, error) {
		return uc.repo.Conversations().Get(ctx, ws, id, uc.readOpts(types.KindConversation)...)
	}); ok {
		return conv, nil
	}

	conv, err := uc.slack.GetConversation(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrRemoteNotFound) {
			uc.cacheWrite(ctx, "conversations.markDeleted", func() error {
				return uc.repo.Conversations().MarkDeleted(ctx, ws, []types.ConversationID{id})
			})
		}
		return nil, goerr.Wrap(err, "failed to fetch conversation", goerr.V("conversation_id", id))
	}

	uc.cacheWrite(ctx, "conversations.put", func() error {
		return uc.repo.Conversations().Put(ctx, ws, []*model.Conversation{conv})
	})
	return conv, nil
}

// ListConversations returns the channels of the workspace. The cache
// stores archived and live channels alike; the archived filter applies
// after the cache-or-fetch decision so both paths agree.
func (uc *UseCases) ListConversations(ctx context.Context, ws types.WorkspaceID, includeArchived bool) ([]*model.Conversation, error) {
	if convs, ok := cacheRead(ctx, uc, "conversations.list", func() ([]*model.Conversation, error) {
		return uc.repo.Conversations().List(ctx, ws, uc.readOpts(types.KindConversation)...)
	}); ok {
		return filterArchived(convs, includeArchived), nil
	}

	convs, err := uc.slack.ListConversations(ctx, true)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch conversations", goerr.V("workspace_id", ws))
	}

	uc.cacheWrite(ctx, "conversations.put", func() error {
		return uc.repo.Conversations().Put(ctx, ws, convs)
	})
	return filterArchived(convs, includeArchived), nil
}

func filterArchived(convs []*model.Conversation, includeArchived bool) []*model.Conversation {
	if includeArchived {
		return convs
	}
	live := make([]*model.Conversation, 0, len(convs))
	for _, conv := range convs {
		if !conv.IsArchived {
			live = append(live, conv)
		}
	}
	return live
}
