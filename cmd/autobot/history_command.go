package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"autobot/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history <group> [semester]",
		Short: "Show recent upkeep runs",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			g, err := ctx.resolveGroup(args)
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if runID != "" {
				outcomes, err := store.Outcomes(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if len(outcomes) == 0 {
					fmt.Fprintf(out, "No outcomes recorded for run %s\n", runID)
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Date", "Meeting", "Step", "Outcome", "Detail"},
					outcomeRows(outcomes),
					nil,
				))
				return nil
			}

			runs, err := store.RecentRuns(cmd.Context(), g.Name(), g.Semester().String(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintf(out, "No runs recorded for %s\n", g.SitePath())
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Run", "Selector", "Status", "Created", "Updated", "Skipped", "Failed", "Duration"},
				runRows(runs),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show the step outcomes of one run")
	return cmd
}

func runRows(runs []ledger.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		duration := "-"
		if r.FinishedAt != nil {
			duration = r.Duration().Round(time.Second).String()
		}
		rows = append(rows, []string{
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			id,
			r.Selector,
			string(r.Status),
			strconv.Itoa(r.Created),
			strconv.Itoa(r.Updated),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Failed),
			duration,
		})
	}
	return rows
}

func outcomeRows(outcomes []ledger.StepRecord) [][]string {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		detail := o.Detail
		if o.Error != "" {
			detail = o.Error
		}
		rows = append(rows, []string{o.MeetingDate, o.MeetingName, o.Step, o.Outcome, detail})
	}
	return rows
}
