package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"autobot/internal/group"
)

func newGroupsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List registered groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			semester := group.CurrentSemester(ctx.now())
			rows := make([][]string, 0)
			for _, name := range ctx.registry.Names() {
				g, err := ctx.registry.New(name, semester)
				if err != nil {
					return err
				}
				rows = append(rows, []string{g.Name(), g.Label(), g.SemesterRoot(cfg.Paths.GroupsRoot)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Group", "Label", "Current semester root"}, rows, nil))
			return nil
		},
	}
}
