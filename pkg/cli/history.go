package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/sitelogs/pkg/errors"
	"github.com/DeBrosOfficial/sitelogs/pkg/fleetsync"
	"github.com/DeBrosOfficial/sitelogs/pkg/history"
	"github.com/DeBrosOfficial/sitelogs/pkg/logging"
)

func (a *App) openHistory() (*history.Store, error) {
	if !a.cfg.History.Enabled {
		return nil, errors.NewValidationError("history.enabled", "sync history is disabled in the config", false)
	}
	return history.Open(a.cfg.History.Path, a.log.For(logging.ComponentStore))
}

// recordRun stores rep in the ledger. Failures only warn: the logs are
// already on disk.
func (a *App) recordRun(ctx context.Context, rep *fleetsync.Report) {
	if !a.cfg.History.Enabled {
		return
	}
	h, err := a.openHistory()
	if err == nil {
		err = h.Record(ctx, rep)
		h.Close()
	}
	if err != nil {
		a.log.ComponentWarn(logging.ComponentStore, "Failed to record sync run", zap.Error(err))
	}
}

func newHistoryCommand(app *App) *cobra.Command {
	var (
		site  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded sync runs, or the hosts of one run",
		Example: `  sitelogs history
  sitelogs history --site acme --limit 5
  sitelogs history 4b0f0c52-7a4e-4c1d-9b8e-2f4d1f3f9a10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := app.openHistory()
			if err != nil {
				return err
			}
			defer h.Close()

			p := app.presenter()
			if len(args) == 1 {
				hosts, err := h.Hosts(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				p.RunHosts(hosts)
				return nil
			}

			runs, err := h.Recent(cmd.Context(), site, limit)
			if err != nil {
				return err
			}
			p.History(runs)
			return nil
		},
	}

	cmd.Flags().StringVar(&site, "site", "", "Only runs of this site")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs")
	return cmd
}
