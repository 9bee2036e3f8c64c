package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	"github.com/lurk-dev/lurk/pkg/domain/model"
	"github.com/lurk-dev/lurk/pkg/domain/types"
)

// GetUser returns the user, from the cache when fresh, otherwise from the
// remote API with a best-effort write-through. A remote "gone" report
// soft-deletes the cached row.
func (uc *UseCases) GetUser(ctx context.Context, ws types.WorkspaceID, id types.UserID) (*model.User, error) {
	if user, ok := cacheRead(ctx, uc, "users.get", func() (*model.User, error) {
		return uc.repo.Users().Get(ctx, ws, id, uc.readOpts(types.KindUser)...)
	}); ok {
		return user, nil
	}

	user, err := uc.slack.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrRemoteNotFound) {
			uc.cacheWrite(ctx, "users.markDeleted", func() error {
				return uc.repo.Users().MarkDeleted(ctx, ws, []types.UserID{id})
			})
		}
		return nil, goerr.Wrap(err, "failed to fetch user", goerr.V("user_id", id))
	}

	uc.cacheWrite(ctx, "users.put", func() error {
		return uc.repo.Users().Put(ctx, ws, []*model.User{user})
	})
	return user, nil
}

// ListUsers returns every member of the workspace. The cached set is used
// only when it is complete and entirely fresh; otherwise the full listing
// is re-fetched and replaces every row.
func (uc *UseCases) ListUsers(ctx context.Context, ws types.WorkspaceID) ([]*model.User, error) {
	if users, ok := cacheRead(ctx, uc, "users.list", func() ([]*model.User, error) {
		return uc.repo.Users().List(ctx, ws, uc.readOpts(types.KindUser)...)
	}); ok {
		return users, nil
	}

	users, err := uc.slack.ListUsers(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch users", goerr.V("workspace_id", ws))
	}

	uc.cacheWrite(ctx, "users.put", func() error {
		return uc.repo.Users().Put(ctx, ws, users)
	})
	return users, nil
}
