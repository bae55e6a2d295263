package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/DeBrosOfficial/sitelogs/pkg/analyze"
	"github.com/DeBrosOfficial/sitelogs/pkg/config"
	"github.com/DeBrosOfficial/sitelogs/pkg/errors"
	"github.com/DeBrosOfficial/sitelogs/pkg/fleetsync"
	"github.com/DeBrosOfficial/sitelogs/pkg/logging"
	"github.com/DeBrosOfficial/sitelogs/pkg/platform"
	"github.com/DeBrosOfficial/sitelogs/pkg/report"
	"github.com/DeBrosOfficial/sitelogs/pkg/resolver"
	"github.com/DeBrosOfficial/sitelogs/pkg/scan"
	"github.com/DeBrosOfficial/sitelogs/pkg/store"
	"github.com/DeBrosOfficial/sitelogs/pkg/transfer"
)

// App carries what every command needs: configuration, logger, output
// streams and the external collaborators.
type App struct {
	Version string
	Out     io.Writer
	Err     io.Writer

	// Collaborators left nil are built from the configuration.
	Lookuper resolver.Lookuper
	Runner   transfer.Runner
	Tools    analyze.ToolRunner

	configPath string
	verbose    bool
	noColor    bool

	cfg *config.Config
	log *logging.ColoredLogger
}

// NewApp creates an app writing to stdout and stderr.
func NewApp(version string) *App {
	return &App{Version: version, Out: os.Stdout, Err: os.Stderr}
}

// setup loads and validates the configuration and builds the logger.
func (a *App) setup() error {
	path := a.configPath
	if path == "" {
		p, err := config.DefaultPath("")
		if err != nil {
			return err
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return errors.NewValidationError("config", err.Error(), path)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return errors.NewValidationError("config", strings.Join(msgs, "\n  "), path)
	}
	a.cfg = cfg

	level := zapcore.InfoLevel
	if lvl, err := zapcore.ParseLevel(cfg.Logging.Level); err == nil {
		level = lvl
	}
	if a.verbose {
		level = zapcore.DebugLevel
	}

	if cfg.Logging.OutputFile != "" {
		l, err := logging.NewFileLogger(cfg.Logging.OutputFile, level)
		if err != nil {
			return err
		}
		a.log = l
		return nil
	}
	a.log = logging.NewColoredLogger(a.Err, level, a.colorFor(a.Err))
	return nil
}

func (a *App) colorFor(w io.Writer) bool {
	if a.noColor {
		return false
	}
	f, ok := w.(*os.File)
	return ok && logging.IsTerminal(f)
}

func (a *App) presenter() *report.Presenter {
	return report.NewPresenter(a.Out, a.colorFor(a.Out))
}

func (a *App) store() *store.Store {
	return store.NewStore(a.cfg.LogRoot)
}

func (a *App) directory() platform.Directory {
	return platform.NewStaticDirectory(a.cfg.Sites, true)
}

func (a *App) orchestrator() *fleetsync.Orchestrator {
	lookuper := a.Lookuper
	if lookuper == nil {
		lookuper = resolver.NewDNSLookuper(a.cfg.Resolver.Nameserver, a.cfg.Resolver.Timeout, a.log.For(logging.ComponentResolver))
	}
	runner := a.Runner
	if runner == nil {
		runner = transfer.NewRsyncRunner(transfer.Options{
			RsyncPath: a.cfg.Sync.RsyncPath,
			SSHPort:   a.cfg.Sync.SSHPort,
			Timeout:   a.cfg.Sync.Timeout,
		}, a.Out, a.log.For(logging.ComponentTransfer))
	}

	dir := a.directory()
	res := resolver.NewResolver(lookuper, dir, a.cfg.Resolver.DomainSuffix, a.log.For(logging.ComponentResolver))
	return fleetsync.NewOrchestrator(res, dir, runner, a.store(), fleetsync.Options{
		Workers: a.cfg.Sync.Workers,
		Retries: a.cfg.Sync.Retries,
		Backoff: a.cfg.Sync.Backoff,
	}, a.log.For(logging.ComponentSync))
}

func (a *App) scanner() *scan.Scanner {
	return scan.NewScanner(a.cfg.Sync.Workers, a.log.For(logging.ComponentScan))
}

func (a *App) registry() *analyze.Registry {
	tools := a.Tools
	if tools == nil {
		tools = analyze.NewExecTools(map[string]string{
			analyze.ToolPtQueryDigest: a.cfg.Analyze.PtQueryDigest,
			analyze.ToolMysqlDumpSlow: a.cfg.Analyze.MysqlDumpSlow,
		}, 0, a.log.For(logging.ComponentAnalyze))
	}
	return analyze.Default(tools)
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.Out, format, args...)
}
