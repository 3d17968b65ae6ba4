package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/statmix/samplegen/internal/report"
	"github.com/statmix/samplegen/internal/runlog"
)

func genHistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List runs recorded in the SQLite run log",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "maximum number of runs to list",
				Value:   20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the runs as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			path := c.String("db")
			if path == "" {
				return errors.New("no run log configured, set --db or SAMPLEGEN_DB")
			}
			store, err := runlog.Open(path)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					logger.Warn("closing run log", zap.Error(err))
				}
			}()

			entries, err := store.List(c.Context, c.Int("limit"))
			if err != nil {
				return err
			}

			if c.Bool("json") {
				sums := make([]report.Summary, len(entries))
				for i, e := range entries {
					sums[i] = e.Summary
				}
				return report.WriteJSON(c.App.Writer, sums...)
			}

			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CREATED\tSAMPLER\tLABEL\tENTRIES\tWORKERS\tMEAN\tSTDDEV\tZ\tELAPSED")
			for _, e := range entries {
				s := e.Summary
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.3f\t%.3f\t%.2f\t%s\n",
					e.CreatedAt.Format(time.RFC3339), s.Sampler, s.Label,
					s.Entries, s.Workers, s.Mean, s.StdDev, s.ZScore, s.Elapsed)
			}
			return tw.Flush()
		},
	}
}
