package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"autobot/internal/reconcile"
	"autobot/internal/resolver"
	"autobot/internal/syllabus"
	"autobot/internal/upkeep"
)

func newUpkeepCommand(ctx *commandContext) *cobra.Command {
	var (
		all       bool
		date      string
		name      string
		overwrite bool
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "semester-upkeep <group> [semester]",
		Short: "Create or update resources for syllabus meetings",
		Long: "Reconciles each selected meeting's workspace, notebook, papers, kernel\n" +
			"and post. Existing artifacts are left alone unless --overwrite is given,\n" +
			"which regenerates notebooks only.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			g, err := ctx.resolveGroup(args)
			if err != nil {
				return err
			}

			if workers < 0 {
				return fmt.Errorf("--workers must be positive, got %d", workers)
			}

			selector := resolver.All()
			switch {
			case cmd.Flags().Changed("date"):
				selector = resolver.ByDate(date)
			case cmd.Flags().Changed("name"):
				selector = resolver.ByName(name)
			}

			out := cmd.OutOrStdout()
			res, err := upkeep.Run(cmd.Context(), upkeep.Request{
				Config:    cfg,
				Group:     g,
				Selector:  selector,
				Overwrite: overwrite,
				Workers:   workers,
				Observers: []reconcile.Observer{newProgressPrinter(out)},
				Logger:    logger,
			})
			if res.Initialized {
				fmt.Fprintf(out, "No syllabus found; wrote a skeleton to %s. Fill it in and rerun.\n",
					filepath.Join(g.SemesterRoot(cfg.Paths.GroupsRoot), syllabus.FileName))
				return nil
			}
			if len(res.Report.Results) > 0 || err == nil {
				fmt.Fprintln(out, strings.Join(reportLines(res.Report, shouldColorize(out)), "\n"))
			}
			if err != nil {
				return err
			}
			if failed := res.Report.Summary()[reconcile.OutcomeFailed]; failed > 0 {
				return fmt.Errorf("%d step(s) failed; rerun to retry them", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Reconcile every meeting in the syllabus")
	cmd.Flags().StringVar(&date, "date", "", "Reconcile the meeting whose date (MM/DD/YYYY) contains this text")
	cmd.Flags().StringVar(&name, "name", "", "Reconcile the meeting whose name contains this text")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Regenerate existing notebooks")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Meetings reconciled at once (default reconcile.workers)")
	cmd.MarkFlagsMutuallyExclusive("all", "date", "name")
	cmd.MarkFlagsOneRequired("all", "date", "name")
	return cmd
}
