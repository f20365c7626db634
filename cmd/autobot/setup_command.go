package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"autobot/internal/bootstrap"
	"autobot/internal/site"
)

func newSetupCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "semester-setup <group> [semester]",
		Short: "Create the skeleton of a new semester",
		Long: "Writes env.yml, overhead.yml and an empty syllabus into the semester root\n" +
			"and registers the semester on the site. An existing root is only\n" +
			"overwritten after confirmation.",
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

			var confirmer bootstrap.Confirmer = &bootstrap.TerminalConfirmer{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}
			if assumeYes {
				confirmer = bootstrap.ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
			}
			var registrar bootstrap.SiteRegistrar
			if cfg.Site.Enabled {
				var committer *site.Committer
				if cfg.Site.Commit {
					committer = site.NewCommitter(cfg.Paths.SiteDir, cfg.Site.AuthorName, cfg.Site.AuthorEmail)
				}
				registrar = site.NewRegistrar(cfg.Paths.SiteDir, cfg.Site.GroupsDir, committer)
			}

			b := bootstrap.New(cfg.Paths.GroupsRoot, cfg.Org.Name, confirmer, registrar, logger)
			if err := b.Run(cmd.Context(), g); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Semester %s ready at %s\n", g.SitePath(), g.SemesterRoot(cfg.Paths.GroupsRoot))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Overwrite an existing semester without asking")
	return cmd
}
