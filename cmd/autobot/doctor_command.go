package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"autobot/internal/preflight"
	"autobot/internal/syllabus"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor <group> [semester]",
		Short: "Check directories, credentials and semester sources",
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
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cmd.Context(), cfg, nil)
			results = append(results, semesterChecks(cmd, g.SitePath(), syllabus.NewStore(g, cfg.Paths.GroupsRoot, nil))...)

			lines := renderSectionHeader("autobot doctor: "+g.SitePath(), colorize)
			failed := 0
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
					failed++
				}
				lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			if failed > 0 {
				return fmt.Errorf("doctor found %d problem(s)", failed)
			}
			return nil
		},
	}
}

func semesterChecks(cmd *cobra.Command, label string, store *syllabus.Store) []preflight.Result {
	syl, err := store.Load(cmd.Context())
	var results []preflight.Result
	switch {
	case syllabus.IsMissing(err):
		results = append(results, preflight.Result{Name: "Syllabus", Detail: "missing; run semester-upkeep to create a skeleton"})
	case err != nil:
		results = append(results, preflight.Result{Name: "Syllabus", Detail: err.Error()})
	default:
		results = append(results, preflight.Result{Name: "Syllabus", Passed: true, Detail: fmt.Sprintf("%d meetings in %s", syl.Len(), label)})
	}
	if overhead, err := syllabus.LoadOverhead(store.Root()); err != nil {
		results = append(results, preflight.Result{Name: "Overhead", Detail: err.Error()})
	} else {
		results = append(results, preflight.Result{Name: "Overhead", Passed: true, Detail: fmt.Sprintf("%d coordinators", len(overhead.Coordinators))})
	}
	return results
}
