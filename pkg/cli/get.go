package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/sitelogs/pkg/fleetsync"
	"github.com/DeBrosOfficial/sitelogs/pkg/logging"
	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
)

func newGetCommand(app *App) *cobra.Command {
	var (
		all      bool
		progress bool
		exclude  bool
		toggles  = make(map[logs.Category]*bool)
	)

	cmd := &cobra.Command{
		Use:   "get <site>.<env> [destination]",
		Short: "Download logs from every host of an environment",
		Long: `Download logs from every appserver and dbserver of an environment.

Category flags name what to leave out. With --exclude=false they name the
only categories to download instead.`,
		Example: `  sitelogs get mysite.live
  sitelogs get mysite.live --php-slow
  sitelogs get mysite.live --exclude=false --nginx-access --nginx-error
  sitelogs get mysite.dev /tmp/logs --all`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := logs.ParseSiteEnv(args[0])
			if err != nil {
				return err
			}
			dest := ""
			if len(args) == 2 {
				dest = args[1]
			}

			sel := logs.FilterSelection{Polarity: logs.Include}
			if exclude {
				sel.Polarity = logs.Exclude
			}
			for _, c := range logs.AllCategories() {
				sel.Toggles = append(sel.Toggles, logs.Toggle{Category: c, Enabled: *toggles[c]})
			}

			if err := os.MkdirAll(app.cfg.LogRoot, 0755); err != nil {
				return err
			}

			app.log.ComponentInfo(logging.ComponentCLI, "Fetching logs",
				zap.String("env", ref.String()),
				zap.String("polarity", sel.Polarity.String()),
				zap.Bool("archived", all))

			req := fleetsync.Request{
				Env:             ref,
				Destination:     dest,
				Filter:          sel,
				IncludeArchived: all,
				Progress:        progress,
			}
			orch := app.orchestrator()
			p := app.presenter()

			var rep *fleetsync.Report
			run := func(notify func(logs.Host, error)) error {
				req.OnHostDone = notify
				var err error
				rep, err = orch.Sync(cmd.Context(), req)
				return err
			}
			// rsync writes its own progress to the terminal.
			if !progress && app.colorFor(app.Out) {
				err = p.Live(cmd.Context(), ref.String(), run)
			} else {
				err = run(nil)
			}
			if rep == nil {
				return err
			}

			// A cancelled run still reports which hosts finished.
			app.recordRun(context.WithoutCancel(cmd.Context()), rep)
			p.SyncReport(rep)
			if err != nil {
				app.log.ComponentError(logging.ComponentSync, "Sync interrupted",
					zap.String("run_id", rep.RunID.String()),
					zap.Int("skipped", len(rep.Skipped)),
					zap.Error(err))
				return err
			}
			return rep.Err()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Download the whole logs directory, archived files included")
	cmd.Flags().BoolVar(&progress, "progress", false, "Show transfer progress")
	cmd.Flags().BoolVar(&exclude, "exclude", true, "Category flags exclude instead of include")
	for _, c := range logs.AllCategories() {
		toggles[c] = cmd.Flags().Bool(string(c), c == logs.NewRelic, "Toggle "+c.FileName())
	}
	return cmd
}
