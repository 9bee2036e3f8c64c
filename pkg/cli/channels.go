package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

func cmdChannels(rt *runtime) *cli.Command {
	var includeArchived bool

	return &cli.Command{
		Name:    "channels",
		Aliases: []string{"ch"},
		Usage:   "List channels of the workspace",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "archived",
				Usage:       "Include archived channels",
				Destination: &includeArchived,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			sess, closer, err := rt.setup(ctx)
			if err != nil {
				return err
			}
			defer closer()

			convs, err := sess.uc.ListConversations(ctx, sess.ws, includeArchived)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tMEMBERS\tTOPIC")
			for _, conv := range convs {
				name := "#" + conv.Name
				if conv.IsArchived {
					name = color.HiBlackString("%s (archived)", name)
				} else {
					name = color.CyanString(name)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					conv.ID, name, conv.TypeLabel(),
					strconv.Itoa(conv.NumMembers), conv.Topic)
			}
			return w.Flush()
		},
	}
}
