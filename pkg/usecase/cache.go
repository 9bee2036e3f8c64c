package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	"github.com/lurk-dev/lurk/pkg/domain/model"
	"github.com/lurk-dev/lurk/pkg/domain/types"
)

// ClearCache hard-deletes every cached row of the workspace. Unlike the
// read and write-through paths this is a user-triggered operation, so its
// failures do surface.
func (uc *UseCases) ClearCache(ctx context.Context, ws types.WorkspaceID) error {
	if err := uc.repo.Clear(ctx, ws); err != nil {
		return goerr.Wrap(err, "failed to clear workspace cache", goerr.V("workspace_id", ws))
	}
	return nil
}

// ClearAllCaches hard-deletes every cached row of every workspace
func (uc *UseCases) ClearAllCaches(ctx context.Context) error {
	if err := uc.repo.ClearAll(ctx); err != nil {
		return goerr.Wrap(err, "failed to clear cache")
	}
	return nil
}

// CacheStats reports per-kind row counts for the workspace
func (uc *UseCases) CacheStats(ctx context.Context, ws types.WorkspaceID) ([]interfaces.KindCount, error) {
	stats, err := uc.repo.Stats(ctx, ws)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to collect cache stats", goerr.V("workspace_id", ws))
	}
	return stats, nil
}

// Workspace returns the authenticated workspace identity
func (uc *UseCases) Workspace(ctx context.Context) (*model.Workspace, error) {
	ws, err := uc.slack.Workspace(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to identify workspace")
	}
	return ws, nil
}
