package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/sitelogs/pkg/analyze"
	"github.com/DeBrosOfficial/sitelogs/pkg/errors"
	"github.com/DeBrosOfficial/sitelogs/pkg/logging"
	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
)

type parseFlags struct {
	logType   string
	filter    string
	since     string
	until     string
	groupedBy string
	uri       string
	method    string
	code      string
	limit     int
	php       bool
	shell     bool
}

func newParseCommand(app *App) *cobra.Command {
	var f parseFlags

	cmd := &cobra.Command{
		Use:   "parse <site>.<env>",
		Short: "Search or analyze downloaded logs",
		Long: `Search downloaded logs for a keyword, or analyze one log type with
--grouped-by. --php forces the keyword search even when --grouped-by is set.`,
		Example: `  sitelogs parse mysite.live --type=all --filter=timeout
  sitelogs parse mysite.live --type=nginx-error --filter=upstream --since=2024/05/01
  sitelogs parse mysite.live --type=nginx-access --grouped-by=ip
  sitelogs parse mysite.live --type=nginx-access --grouped-by=ip-accessing-502 --uri=/wp-admin
  sitelogs parse mysite.live --type=mysqld-slow-query --grouped-by=digest`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := logs.ParseSiteEnv(args[0])
			if err != nil {
				return err
			}
			hostDirs, err := app.store().RequireEnv(ref)
			if err != nil {
				return err
			}

			if f.groupedBy == "" || f.php || !f.shell {
				return runScan(cmd, app, hostDirs, f)
			}
			return runAnalysis(cmd, app, hostDirs, f)
		},
	}

	cmd.Flags().StringVar(&f.logType, "type", logs.AllCategoriesName, "Log type to read, or all")
	cmd.Flags().StringVar(&f.filter, "filter", "", "Keyword to search for (* matches every line)")
	cmd.Flags().StringVar(&f.since, "since", "", "Only lines also containing this text")
	cmd.Flags().StringVar(&f.until, "until", "", "Stop reading a file after the first line containing this text")
	cmd.Flags().StringVar(&f.groupedBy, "grouped-by", "", "Analysis mode, e.g. ip, response-code, digest")
	cmd.Flags().StringVar(&f.uri, "uri", "", "Path fragment for ip-accessing-502")
	cmd.Flags().StringVar(&f.method, "method", "", "HTTP method kept by request-method")
	cmd.Flags().StringVar(&f.code, "code", "", "Status code for request-method")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Number of rows to show (0 uses the mode default)")
	cmd.Flags().BoolVar(&f.php, "php", false, "Use the built-in keyword search")
	cmd.Flags().BoolVar(&f.shell, "shell", true, "Use the analysis recipes for --grouped-by")
	return cmd
}

func scanCategory(name string) error {
	if name == logs.AllCategoriesName || name == string(logs.MysqlSlowQuery) {
		return nil
	}
	_, err := logs.ParseCategory(name)
	return err
}

func runScan(cmd *cobra.Command, app *App, hostDirs []string, f parseFlags) error {
	if err := scanCategory(f.logType); err != nil {
		return err
	}

	app.log.ComponentDebug(logging.ComponentCLI, "Scanning logs",
		zap.String("type", f.logType),
		zap.String("filter", f.filter),
		zap.Int("hosts", len(hostDirs)))

	res, err := app.scanner().Scan(cmd.Context(), hostDirs, logs.ScanQuery{
		Category: f.logType,
		Keyword:  f.filter,
		Since:    f.since,
		Until:    f.until,
	})
	if err != nil {
		return err
	}
	app.presenter().Scan(res)
	return nil
}

func runAnalysis(cmd *cobra.Command, app *App, hostDirs []string, f parseFlags) error {
	if f.logType == logs.AllCategoriesName {
		return errors.NewValidationError("type", "--grouped-by needs a single log type", f.logType)
	}

	app.log.ComponentDebug(logging.ComponentCLI, "Analyzing logs",
		zap.String("type", f.logType),
		zap.String("mode", f.groupedBy),
		zap.Int("hosts", len(hostDirs)))

	outs, err := analyze.RunAll(cmd.Context(), app.registry(), hostDirs, f.logType, f.groupedBy, analyze.Options{
		URI:    f.uri,
		Code:   f.code,
		Method: f.method,
		Filter: f.filter,
		Limit:  f.limit,
	})
	if err != nil {
		return err
	}
	app.presenter().Analysis(outs)
	return nil
}
