package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	slacksvc "github.com/lurk-dev/lurk/pkg/service/slack"
)

// Slack holds CLI flags for Slack API access
type Slack struct {
	botToken string
}

// Flags returns CLI flags for Slack configuration
func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (xoxb-...)",
			Category:    "Slack",
			Sources:     cli.EnvVars("LURK_SLACK_BOT_TOKEN", "SLACK_TOKEN"),
			Destination: &x.botToken,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
	)
}

// Configure creates the Slack service from the flags
func (x *Slack) Configure() (interfaces.SlackService, error) {
	svc, err := slacksvc.New(x.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure Slack client")
	}
	return svc, nil
}
