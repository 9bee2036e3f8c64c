package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

func cmdUsers(rt *runtime) *cli.Command {
	var includeBots bool

	return &cli.Command{
		Name:  "users",
		Usage: "List members of the workspace",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "bots",
				Usage:       "Include bot users",
				Destination: &includeBots,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			sess, closer, err := rt.setup(ctx)
			if err != nil {
				return err
			}
			defer closer()

			users, err := sess.uc.ListUsers(ctx, sess.ws)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDISPLAY\tEMAIL")
			for _, user := range users {
				if user.Deleted {
					continue
				}
				if user.IsBot && !includeBots {
					continue
				}
				name := color.CyanString("@" + user.Name)
				if user.IsBot {
					name += color.HiBlackString(" (bot)")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					user.ID, name, user.Profile.DisplayName, user.Profile.Email)
			}
			return w.Flush()
		},
	}
}
