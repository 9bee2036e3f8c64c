package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lurk-dev/lurk/pkg/cli/config"
	"github.com/lurk-dev/lurk/pkg/domain/types"
	"github.com/lurk-dev/lurk/pkg/usecase"
	"github.com/lurk-dev/lurk/pkg/utils/logging"
	"github.com/lurk-dev/lurk/pkg/utils/safe"
)

// runtime holds the global flag groups shared by every command
type runtime struct {
	slackCfg   config.Slack
	cacheCfg   config.Cache
	configPath string
}

// session is the per-invocation wiring: usecases bound to the
// authenticated workspace. Close releases the cache store.
type session struct {
	uc *usecase.UseCases
	ws types.WorkspaceID
}

// setup assembles the session from the flags and the optional lurk.toml.
// The returned closer must be called when the command is done.
func (rt *runtime) setup(ctx context.Context) (*session, func(), error) {
	appCfg, err := config.LoadAppConfiguration(rt.configPath)
	if err != nil {
		return nil, nil, err
	}
	rt.cacheCfg.ApplyDefaults(appCfg)

	overrides, err := appCfg.TTLOverrides()
	if err != nil {
		return nil, nil, err
	}

	svc, err := rt.slackCfg.Configure()
	if err != nil {
		return nil, nil, err
	}

	repo, err := rt.cacheCfg.Configure(ctx)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		safe.Close(ctx, repo)
	}

	uc := usecase.New(repo, svc,
		usecase.WithRefresh(rt.cacheCfg.Refresh()),
		usecase.WithMessageCaching(rt.cacheCfg.Messages()),
		usecase.WithTTLOverrides(overrides),
	)

	ws, err := uc.Workspace(ctx)
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to identify workspace")
	}
	logging.From(ctx).Debug("authenticated",
		"workspace_id", ws.ID, "workspace", ws.Name, "user", ws.UserName)

	return &session{uc: uc, ws: ws.ID}, closer, nil
}
