package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/lurk-dev/lurk/pkg/utils/logging"
)

func cmdCache(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and reset the local cache",
		Commands: []*cli.Command{
			cmdCacheStatus(rt),
			cmdCacheClear(rt),
		},
	}
}

func cmdCacheStatus(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show cached row counts per kind",
		Action: func(ctx context.Context, c *cli.Command) error {
			sess, closer, err := rt.setup(ctx)
			if err != nil {
				return err
			}
			defer closer()

			stats, err := sess.uc.CacheStats(ctx, sess.ws)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tROWS\tDELETED\tOLDEST\tNEWEST")
			for _, kc := range stats {
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n",
					kc.Kind, kc.Rows, kc.Deleted, formatAge(kc.Oldest), formatAge(kc.Newest))
			}
			return w.Flush()
		},
	}
}

func cmdCacheClear(rt *runtime) *cli.Command {
	var all bool

	return &cli.Command{
		Name:  "clear",
		Usage: "Delete cached rows (current workspace by default)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "Clear every workspace, not just the current one",
				Destination: &all,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			sess, closer, err := rt.setup(ctx)
			if err != nil {
				return err
			}
			defer closer()

			if all {
				if err := sess.uc.ClearAllCaches(ctx); err != nil {
					return err
				}
				logging.From(ctx).Info("cleared cache for all workspaces")
				return nil
			}

			if err := sess.uc.ClearCache(ctx, sess.ws); err != nil {
				return err
			}
			logging.From(ctx).Info("cleared cache", "workspace_id", sess.ws)
			return nil
		},
	}
}

func formatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
