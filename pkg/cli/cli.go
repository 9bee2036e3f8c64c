package cli

import (
	"context"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/lurk-dev/lurk/pkg/cli/config"
	"github.com/lurk-dev/lurk/pkg/utils/logging"
)

func Run(ctx context.Context, args []string, version string) error {
	var rt runtime
	var loggerCfg config.Logger
	var closer func()

	flags := loggerCfg.Flags()
	flags = append(flags, rt.slackCfg.Flags()...)
	flags = append(flags, rt.cacheCfg.Flags()...)
	flags = append(flags, &cli.StringFlag{
		Name:        "config",
		Usage:       "Path to lurk.toml configuration file",
		Sources:     cli.EnvVars("LURK_CONFIG"),
		Destination: &rt.configPath,
	})

	app := &cli.Command{
		Name:    "lurk",
		Usage:   "Slack workspace explorer with a local cache",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			logger := logging.Default().With("invocation_id", uuid.NewString())
			logging.SetDefault(logger)
			ctx = logging.With(ctx, logger)

			logger.Debug("starting lurk",
				"logger", loggerCfg,
				"cache", rt.cacheCfg,
				"slack", rt.slackCfg,
			)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdChannels(&rt),
			cmdUsers(&rt),
			cmdHistory(&rt),
			cmdCache(&rt),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("command failed", "error", err)
		return err
	}

	return nil
}
