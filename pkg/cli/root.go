package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DeBrosOfficial/sitelogs/pkg/errors"
)

// NewRootCommand builds the sitelogs command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "sitelogs",
		Short:         "Fetch and analyze logs from a hosted site's fleet",
		Long:          `Sitelogs pulls nginx, PHP and MySQL logs from every appserver and dbserver of a site environment and analyzes them locally.`,
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
	}

	root.SetOut(app.Out)
	root.SetErr(app.Err)

	root.PersistentFlags().StringVar(&app.configPath, "config", "", "Config file (default ~/.sitelogs/config.yaml)")
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&app.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newGetCommand(app),
		newListCommand(app),
		newListSitesCommand(app),
		newParseCommand(app),
		newConfigCommand(app),
		newHistoryCommand(app),
	)
	return root
}

// FailureLine formats a command error for stderr, tagged with its error code.
func FailureLine(err error) string {
	return fmt.Sprintf("❌ [%s] %v", errors.GetErrorCode(err), err)
}
