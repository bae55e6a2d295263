// Package fleetsync copies the logs of every host of an environment into
// the local store.
package fleetsync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DeBrosOfficial/sitelogs/pkg/errors"
	"github.com/DeBrosOfficial/sitelogs/pkg/filter"
	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
	"github.com/DeBrosOfficial/sitelogs/pkg/platform"
	"github.com/DeBrosOfficial/sitelogs/pkg/store"
	"github.com/DeBrosOfficial/sitelogs/pkg/transfer"
)

// Remote paths, relative to the environment user's home.
const (
	appNginxLogs = "logs/nginx/*.log"
	appPhpLogs   = "logs/php/*.log"
	appAllLogs   = "logs/"
	dbLogs       = "logs/*.log"
)

// HostResolver lists the hosts of an environment whose site ID is already
// known.
type HostResolver interface {
	ResolveSite(ctx context.Context, ref logs.EnvironmentRef, siteID string) (app, db []logs.Host, err error)
}

// Request is one sync invocation.
type Request struct {
	Env             logs.EnvironmentRef
	Destination     string // Empty uses the store's environment directory
	Filter          logs.FilterSelection
	IncludeArchived bool // Copy the whole logs/ tree of app hosts
	Progress        bool

	// OnHostDone, when set, is called from worker goroutines as each host
	// finishes. err is nil on success.
	OnHostDone func(h logs.Host, err error)
}

// Options tune the worker pool and retry policy.
type Options struct {
	Workers int
	Retries int
	Backoff time.Duration
}

// Orchestrator runs syncs.
type Orchestrator struct {
	resolver  HostResolver
	directory platform.Directory
	runner    transfer.Runner
	store     *store.Store
	opts      Options
	logger    *zap.Logger
}

// NewOrchestrator wires an orchestrator.
func NewOrchestrator(resolver HostResolver, directory platform.Directory, runner transfer.Runner, st *store.Store, opts Options, logger *zap.Logger) *Orchestrator {
	if opts.Workers < 1 {
		opts.Workers = 4
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		resolver:  resolver,
		directory: directory,
		runner:    runner,
		store:     st,
		opts:      opts,
		logger:    logger,
	}
}

// Sync resolves the environment's hosts and copies their logs. A resolution
// failure aborts the run; a failing host is recorded in the report and the
// remaining hosts still run. Once ctx is cancelled no further host starts:
// hosts still queued are reported as skipped and ctx.Err() is returned with
// the report.
func (o *Orchestrator) Sync(ctx context.Context, req Request) (*Report, error) {
	if err := req.Env.Validate(); err != nil {
		return nil, err
	}

	siteID, err := o.directory.SiteID(ctx, req.Env.Site)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve site %q", req.Env.Site)
	}
	app, db, err := o.resolver.ResolveSite(ctx, req.Env, siteID)
	if err != nil {
		return nil, err
	}

	dest := req.Destination
	if dest == "" {
		dest = o.store.EnvDir(req.Env)
	}
	report := newReport(req.Env, dest)

	hosts := append(append([]logs.Host{}, app...), db...)
	excludes := filter.ExcludedFilenames(req.Filter)
	user := fmt.Sprintf("%s.%s", req.Env.Env, siteID)

	o.logger.Info("Starting sync",
		zap.String("run_id", report.RunID.String()),
		zap.String("environment", req.Env.String()),
		zap.Int("hosts", len(hosts)),
		zap.Int("workers", o.opts.Workers),
		zap.Strings("excludes", excludes))

	dirs := HostDirs(hosts)
	results := make([]error, len(hosts))
	started := make([]bool, len(hosts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)
	for i, h := range hosts {
		if gctx.Err() != nil {
			break
		}
		i, h := i, h
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			started[i] = true
			// Per-host errors are collected, not propagated, so one bad
			// host does not cancel the others.
			results[i] = o.syncHost(gctx, h, dirs[i], user, dest, excludes, req)
			if req.OnHostDone != nil {
				req.OnHostDone(h, results[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, h := range hosts {
		if !started[i] {
			report.Skipped = append(report.Skipped, h)
			continue
		}
		if results[i] != nil {
			report.Failed = append(report.Failed, HostFailure{Host: h, Err: results[i]})
			o.logger.Warn("Host sync failed", zap.String("host", h.String()), zap.Error(results[i]))
			continue
		}
		report.Succeeded = append(report.Succeeded, h)
	}
	report.Finished = time.Now()

	o.logger.Info("Sync finished",
		zap.String("run_id", report.RunID.String()),
		zap.Int("succeeded", len(report.Succeeded)),
		zap.Int("failed", len(report.Failed)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Duration("took", report.Duration()))

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// Jobs returns the transfers needed for one host.
func Jobs(h logs.Host, user, localDir string, excludes []string, includeArchived, progress bool) []transfer.Job {
	base := transfer.Job{
		Host:      h.Address,
		User:      user,
		LocalPath: localDir,
		Excludes:  excludes,
		Progress:  progress,
	}

	var remotes []string
	switch {
	case h.Role == logs.RoleDB:
		remotes = []string{dbLogs}
	case includeArchived:
		remotes = []string{appAllLogs}
	default:
		remotes = []string{appNginxLogs, appPhpLogs}
	}

	jobs := make([]transfer.Job, len(remotes))
	for i, r := range remotes {
		jobs[i] = base
		jobs[i].RemotePath = r
	}
	return jobs
}

// HostDirs names the local directory of each host. A host reuses its
// address unless an earlier host already claimed it, in which case the role
// is appended ("10.0.0.1-dbserver").
func HostDirs(hosts []logs.Host) []string {
	dirs := make([]string, len(hosts))
	seen := make(map[string]bool, len(hosts))
	for i, h := range hosts {
		name := h.Address
		if seen[name] {
			name = fmt.Sprintf("%s-%s", h.Address, h.Role)
		}
		seen[name] = true
		dirs[i] = name
	}
	return dirs
}

func (o *Orchestrator) syncHost(ctx context.Context, h logs.Host, dir, user, dest string, excludes []string, req Request) error {
	localDir, err := o.store.EnsureHostDir(dest, dir)
	if err != nil {
		return err
	}

	for _, job := range Jobs(h, user, localDir, excludes, req.IncludeArchived, req.Progress) {
		if err := o.runWithRetry(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) runWithRetry(ctx context.Context, job transfer.Job) error {
	delay := o.opts.Backoff
	var err error
	for attempt := 0; ; attempt++ {
		err = o.runner.Run(ctx, job)
		if err == nil || attempt >= o.opts.Retries || !errors.ShouldRetry(err) {
			return err
		}
		o.logger.Info("Retrying transfer",
			zap.String("host", job.Host),
			zap.String("remote", job.RemotePath),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err))
		if serr := sleepWithCtx(ctx, delay); serr != nil {
			return err
		}
		delay *= 2
	}
}

func sleepWithCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
