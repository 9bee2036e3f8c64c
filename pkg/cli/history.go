package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/lurk-dev/lurk/pkg/domain/model"
	"github.com/lurk-dev/lurk/pkg/domain/types"
	"github.com/lurk-dev/lurk/pkg/usecase"
	"github.com/lurk-dev/lurk/pkg/utils/logging"
)

func cmdHistory(rt *runtime) *cli.Command {
	var limit int64

	return &cli.Command{
		Name:      "history",
		Aliases:   []string{"h"},
		Usage:     "Show recent messages of a channel",
		ArgsUsage: "<channel>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "Number of messages to show",
				Value:       20,
				Destination: &limit,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one channel argument is required")
			}

			sess, closer, err := rt.setup(ctx)
			if err != nil {
				return err
			}
			defer closer()

			convID, err := sess.uc.ResolveConversation(ctx, sess.ws, c.Args().First())
			if err != nil {
				var ambErr *usecase.AmbiguousNameError
				if errors.As(err, &ambErr) {
					printCandidates(ambErr)
				}
				return err
			}

			msgs, err := sess.uc.ListMessages(ctx, sess.ws, convID, int(limit))
			if err != nil {
				return err
			}

			labels := userLabels(ctx, sess, msgs)
			for i := len(msgs) - 1; i >= 0; i-- {
				printMessage(msgs[i], labels)
			}
			return nil
		},
	}
}

// printCandidates lists every match of an ambiguous name so the user can
// retry with an exact ID
func printCandidates(err *usecase.AmbiguousNameError) {
	fmt.Fprintf(os.Stderr, "%q matches multiple objects:\n", err.Name)
	for _, cand := range err.Candidates {
		fmt.Fprintf(os.Stderr, "  %s\t%s\n", cand.ID, cand.Label)
	}
}

// userLabels maps the message authors to display labels, best-effort: a
// failed lookup leaves the raw user ID in place
func userLabels(ctx context.Context, sess *session, msgs []*model.Message) map[types.UserID]string {
	labels := make(map[types.UserID]string)
	for _, msg := range msgs {
		if msg.UserID == "" {
			continue
		}
		if _, ok := labels[msg.UserID]; ok {
			continue
		}
		user, err := sess.uc.GetUser(ctx, sess.ws, msg.UserID)
		if err != nil {
			logging.From(ctx).Debug("failed to resolve message author", "user_id", msg.UserID, "error", err)
			labels[msg.UserID] = string(msg.UserID)
			continue
		}
		labels[msg.UserID] = "@" + user.DisplayLabel()
	}
	return labels
}

func printMessage(msg *model.Message, labels map[types.UserID]string) {
	author := labels[msg.UserID]
	if author == "" {
		author = string(msg.UserID)
	}

	prefix := ""
	if msg.IsThreadReply() {
		prefix = "  ↳ "
	}

	fmt.Printf("%s%s %s %s\n",
		prefix,
		color.HiBlackString(formatTS(msg.TS)),
		color.CyanString(author),
		msg.Text,
	)
}

// formatTS renders a Slack message timestamp ("1700000000.000100") as a
// local wall-clock time
func formatTS(ts types.MessageTS) string {
	sec, err := strconv.ParseFloat(string(ts), 64)
	if err != nil {
		return string(ts)
	}
	return time.Unix(int64(sec), 0).Format("2006-01-02 15:04")
}
