package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lurk-dev/lurk/pkg/domain/model"
	"github.com/lurk-dev/lurk/pkg/domain/types"
)

// ListMessages returns recent history of the conversation, newest first.
// Message caching is opt-in: without it both the read and the
// write-through are skipped and every call goes to the API.
func (uc *UseCases) ListMessages(ctx context.Context, ws types.WorkspaceID, conv types.ConversationID, limit int) ([]*model.Message, error) {
	if uc.cacheMessages {
		if msgs, ok := cacheRead(ctx, uc, "messages.list", func() ([]*model.Message, error) {
			return uc.repo.Messages().List(ctx, ws, conv, uc.readOpts(types.KindMessage)...)
		}); ok {
			if limit > 0 && len(msgs) > limit {
				msgs = msgs[:limit]
			}
			return msgs, nil
		}
	}

	msgs, err := uc.slack.ListMessages(ctx, conv, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch messages", goerr.V("conversation_id", conv))
	}

	if uc.cacheMessages {
		uc.cacheWrite(ctx, "messages.put", func() error {
			return uc.repo.Messages().Put(ctx, ws, msgs)
		})
	}
	return msgs, nil
}
