package cli

import (
	"github.com/spf13/cobra"

	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
	"github.com/DeBrosOfficial/sitelogs/pkg/store"
)

func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <site>.<env>",
		Short: "List downloaded log files of an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := logs.ParseSiteEnv(args[0])
			if err != nil {
				return err
			}
			hostDirs, err := app.store().RequireEnv(ref)
			if err != nil {
				return err
			}

			p := app.presenter()
			for _, dir := range hostDirs {
				files, err := store.ListFiles(dir)
				if err != nil {
					return err
				}
				p.HostFiles(dir, files)
			}
			return nil
		},
	}
}

func newListSitesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list-sites",
		Short: "List configured sites and captured environments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			captured, err := app.store().Environments()
			if err != nil {
				return err
			}

			sites, err := app.directory().ListSites(cmd.Context())
			if err != nil {
				return err
			}
			p := app.presenter()
			if len(sites) == 0 {
				p.Environments(captured)
				return nil
			}
			p.Sites(sites, captured)
			return nil
		},
	}
}
