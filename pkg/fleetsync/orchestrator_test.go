package fleetsync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeBrosOfficial/sitelogs/pkg/errors"
	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
	"github.com/DeBrosOfficial/sitelogs/pkg/platform"
	"github.com/DeBrosOfficial/sitelogs/pkg/store"
	"github.com/DeBrosOfficial/sitelogs/pkg/transfer"
)

type fakeResolver struct {
	app, db []logs.Host
	err     error
	siteIDs []string
}

func (f *fakeResolver) ResolveSite(_ context.Context, _ logs.EnvironmentRef, siteID string) ([]logs.Host, []logs.Host, error) {
	f.siteIDs = append(f.siteIDs, siteID)
	return f.app, f.db, f.err
}

// countingDirectory counts site lookups.
type countingDirectory struct {
	platform.Directory
	lookups int
}

func (d *countingDirectory) SiteID(ctx context.Context, site string) (string, error) {
	d.lookups++
	return d.Directory.SiteID(ctx, site)
}

// cancellingRunner cancels the run on its first call and fails that transfer.
type cancellingRunner struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	calls  int
}

func (c *cancellingRunner) Run(ctx context.Context, _ transfer.Job) error {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	c.cancel()
	return ctx.Err()
}

// fakeRunner writes one file per job and fails the hosts listed in fail.
type fakeRunner struct {
	mu       sync.Mutex
	fail     map[string]error
	failOnce map[string]error
	jobs     []transfer.Job
}

func (f *fakeRunner) Run(_ context.Context, job transfer.Job) error {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	if err, ok := f.failOnce[job.Host]; ok {
		delete(f.failOnce, job.Host)
		f.mu.Unlock()
		return err
	}
	f.mu.Unlock()

	if err := f.fail[job.Host]; err != nil {
		return err
	}
	name := filepath.Base(filepath.Dir(job.RemotePath)) + ".log"
	return os.WriteFile(filepath.Join(job.LocalPath, name), []byte("line\n"), 0644)
}

func (f *fakeRunner) jobsFor(host string) []transfer.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []transfer.Job
	for _, j := range f.jobs {
		if j.Host == host {
			out = append(out, j)
		}
	}
	return out
}

var acmeLive = logs.EnvironmentRef{Site: "acme", Env: "live"}

func newTestOrchestrator(t *testing.T, res HostResolver, runner transfer.Runner, opts Options) (*Orchestrator, *store.Store) {
	t.Helper()
	st := store.NewStore(t.TempDir())
	dir := platform.NewStaticDirectory(map[string]string{"acme": "site-1"}, false)
	return NewOrchestrator(res, dir, runner, st, opts, nil), st
}

func TestSyncPartialFailure(t *testing.T) {
	res := &fakeResolver{app: []logs.Host{
		{Role: logs.RoleApp, Address: "10.0.0.1"},
		{Role: logs.RoleApp, Address: "10.0.0.2"},
	}}
	runner := &fakeRunner{fail: map[string]error{
		"10.0.0.2": errors.NewTransferError("10.0.0.2", "rsync ...", 23, nil),
	}}
	o, st := newTestOrchestrator(t, res, runner, Options{Workers: 2})

	report, err := o.Sync(context.Background(), Request{Env: acmeLive})
	require.NoError(t, err)

	assert.Equal(t, []logs.Host{{Role: logs.RoleApp, Address: "10.0.0.1"}}, report.Succeeded)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "10.0.0.2", report.Failed[0].Host.Address)
	assert.True(t, errors.IsTransfer(report.Err()))
	assert.False(t, report.OK())
	assert.Equal(t, 2, report.Total())

	good := st.HostDir(acmeLive, "10.0.0.1")
	assert.FileExists(t, filepath.Join(good, "nginx.log"))
	assert.FileExists(t, filepath.Join(good, "php.log"))

	// Running again over the same destination is harmless.
	report, err = o.Sync(context.Background(), Request{Env: acmeLive})
	require.NoError(t, err)
	assert.Len(t, report.Succeeded, 1)
	assert.FileExists(t, filepath.Join(good, "nginx.log"))
}

func TestSyncEmptyDatabaseTier(t *testing.T) {
	res := &fakeResolver{app: []logs.Host{{Role: logs.RoleApp, Address: "10.0.0.1"}}}
	runner := &fakeRunner{}
	o, _ := newTestOrchestrator(t, res, runner, Options{})

	report, err := o.Sync(context.Background(), Request{Env: acmeLive})
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Len(t, report.Succeeded, 1)
	assert.NoError(t, report.Err())
}

func TestSyncResolutionFailureAborts(t *testing.T) {
	res := &fakeResolver{err: errors.NewResolutionError("appserver.live.site-1.drush.in", fmt.Errorf("timeout"))}
	runner := &fakeRunner{}
	o, _ := newTestOrchestrator(t, res, runner, Options{})

	report, err := o.Sync(context.Background(), Request{Env: acmeLive})
	assert.Nil(t, report)
	assert.True(t, errors.IsResolution(err))
	assert.Empty(t, runner.jobs)
}

func TestSyncOrdersAppBeforeDB(t *testing.T) {
	res := &fakeResolver{
		app: []logs.Host{{Role: logs.RoleApp, Address: "10.0.0.9"}},
		db:  []logs.Host{{Role: logs.RoleDB, Address: "10.0.0.1"}},
	}
	o, _ := newTestOrchestrator(t, res, &fakeRunner{}, Options{Workers: 4})

	report, err := o.Sync(context.Background(), Request{Env: acmeLive})
	require.NoError(t, err)
	require.Len(t, report.Succeeded, 2)
	assert.Equal(t, logs.RoleApp, report.Succeeded[0].Role)
	assert.Equal(t, logs.RoleDB, report.Succeeded[1].Role)
}

func TestSyncJobsCarryUserAndExcludes(t *testing.T) {
	res := &fakeResolver{
		app: []logs.Host{{Role: logs.RoleApp, Address: "10.0.0.1"}},
		db:  []logs.Host{{Role: logs.RoleDB, Address: "10.0.1.1"}},
	}
	runner := &fakeRunner{}
	o, _ := newTestOrchestrator(t, res, runner, Options{})

	_, err := o.Sync(context.Background(), Request{
		Env: acmeLive,
		Filter: logs.FilterSelection{
			Polarity: logs.Exclude,
			Toggles:  []logs.Toggle{{Category: logs.NewRelic, Enabled: true}},
		},
	})
	require.NoError(t, err)

	app := runner.jobsFor("10.0.0.1")
	require.Len(t, app, 2)
	assert.Equal(t, "logs/nginx/*.log", app[0].RemotePath)
	assert.Equal(t, "logs/php/*.log", app[1].RemotePath)
	assert.Equal(t, "live.site-1", app[0].User)
	assert.Equal(t, []string{"newrelic.log"}, app[0].Excludes)

	db := runner.jobsFor("10.0.1.1")
	require.Len(t, db, 1)
	assert.Equal(t, "logs/*.log", db[0].RemotePath)
}

func TestJobsIncludeArchived(t *testing.T) {
	jobs := Jobs(logs.Host{Role: logs.RoleApp, Address: "h"}, "u", "/d", nil, true, false)
	require.Len(t, jobs, 1)
	assert.Equal(t, "logs/", jobs[0].RemotePath)
}

func TestSyncRetriesTransientFailure(t *testing.T) {
	res := &fakeResolver{app: []logs.Host{{Role: logs.RoleApp, Address: "10.0.0.1"}}}
	runner := &fakeRunner{failOnce: map[string]error{
		"10.0.0.1": errors.NewTransferError("10.0.0.1", "rsync", 255, nil),
	}}
	o, _ := newTestOrchestrator(t, res, runner, Options{Retries: 1, Backoff: time.Millisecond})

	report, err := o.Sync(context.Background(), Request{Env: acmeLive})
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Len(t, runner.jobsFor("10.0.0.1"), 3, "failed attempt, retry, then the php transfer")
}

func TestSyncDoesNotRetryPermanentFailure(t *testing.T) {
	res := &fakeResolver{app: []logs.Host{{Role: logs.RoleApp, Address: "10.0.0.1"}}}
	runner := &fakeRunner{fail: map[string]error{
		"10.0.0.1": errors.NewTransferError("10.0.0.1", "rsync", 23, nil),
	}}
	o, _ := newTestOrchestrator(t, res, runner, Options{Retries: 3, Backoff: time.Millisecond})

	report, err := o.Sync(context.Background(), Request{Env: acmeLive})
	require.NoError(t, err)
	assert.Len(t, report.Failed, 1)
	assert.Len(t, runner.jobsFor("10.0.0.1"), 1)
}

func TestSyncCustomDestination(t *testing.T) {
	res := &fakeResolver{app: []logs.Host{{Role: logs.RoleApp, Address: "10.0.0.1"}}}
	o, _ := newTestOrchestrator(t, res, &fakeRunner{}, Options{})
	dest := filepath.Join(t.TempDir(), "out")

	report, err := o.Sync(context.Background(), Request{Env: acmeLive, Destination: dest})
	require.NoError(t, err)
	assert.Equal(t, dest, report.Destination)
	assert.DirExists(t, filepath.Join(dest, "10.0.0.1"))
}

func TestSyncNotifiesEveryHost(t *testing.T) {
	res := &fakeResolver{
		app: []logs.Host{{Role: logs.RoleApp, Address: "10.0.0.1"}, {Role: logs.RoleApp, Address: "10.0.0.2"}},
		db:  []logs.Host{{Role: logs.RoleDB, Address: "10.0.0.3"}},
	}
	runner := &fakeRunner{fail: map[string]error{"10.0.0.2": fmt.Errorf("boom")}}
	o, _ := newTestOrchestrator(t, res, runner, Options{})

	var mu sync.Mutex
	seen := make(map[string]error)
	_, err := o.Sync(context.Background(), Request{
		Env: acmeLive,
		OnHostDone: func(h logs.Host, err error) {
			mu.Lock()
			defer mu.Unlock()
			seen[h.Address] = err
		},
	})
	require.NoError(t, err)

	require.Len(t, seen, 3)
	assert.NoError(t, seen["10.0.0.1"])
	assert.Error(t, seen["10.0.0.2"])
	assert.NoError(t, seen["10.0.0.3"])
}

func TestSyncLooksUpSiteOnce(t *testing.T) {
	res := &fakeResolver{app: []logs.Host{{Role: logs.RoleApp, Address: "10.0.0.1"}}}
	dir := &countingDirectory{Directory: platform.NewStaticDirectory(map[string]string{"acme": "site-1"}, false)}
	o := NewOrchestrator(res, dir, &fakeRunner{}, store.NewStore(t.TempDir()), Options{}, nil)

	_, err := o.Sync(context.Background(), Request{Env: acmeLive})
	require.NoError(t, err)
	assert.Equal(t, 1, dir.lookups)
	assert.Equal(t, []string{"site-1"}, res.siteIDs)
}

func TestSyncStopsStartingHostsAfterCancel(t *testing.T) {
	var app []logs.Host
	for i := 1; i <= 4; i++ {
		app = append(app, logs.Host{Role: logs.RoleApp, Address: fmt.Sprintf("10.0.0.%d", i)})
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner := &cancellingRunner{cancel: cancel}
	o, st := newTestOrchestrator(t, &fakeResolver{app: app}, runner, Options{Workers: 1})

	var done []logs.Host
	report, err := o.Sync(ctx, Request{Env: acmeLive, OnHostDone: func(h logs.Host, _ error) {
		done = append(done, h)
	}})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)

	assert.Equal(t, 1, runner.calls)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, app[0], report.Failed[0].Host)
	assert.Equal(t, app[1:], report.Skipped)
	assert.Empty(t, report.Succeeded)
	assert.Equal(t, 4, report.Total())
	assert.False(t, report.OK())
	assert.Equal(t, app[:1], done)

	entries, err := os.ReadDir(st.EnvDir(acmeLive))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "10.0.0.1", entries[0].Name())
}

func TestSyncSharedAddressAcrossRoles(t *testing.T) {
	res := &fakeResolver{
		app: []logs.Host{{Role: logs.RoleApp, Address: "10.0.0.1"}},
		db:  []logs.Host{{Role: logs.RoleDB, Address: "10.0.0.1"}},
	}
	runner := &fakeRunner{}
	o, st := newTestOrchestrator(t, res, runner, Options{Workers: 2})

	report, err := o.Sync(context.Background(), Request{Env: acmeLive})
	require.NoError(t, err)
	assert.Len(t, report.Succeeded, 2)

	assert.FileExists(t, filepath.Join(st.HostDir(acmeLive, "10.0.0.1"), "nginx.log"))
	assert.FileExists(t, filepath.Join(st.HostDir(acmeLive, "10.0.0.1-dbserver"), "logs.log"))
	assert.NoFileExists(t, filepath.Join(st.HostDir(acmeLive, "10.0.0.1"), "logs.log"))
}

func TestHostDirs(t *testing.T) {
	hosts := []logs.Host{
		{Role: logs.RoleApp, Address: "10.0.0.1"},
		{Role: logs.RoleApp, Address: "10.0.0.2"},
		{Role: logs.RoleDB, Address: "10.0.0.2"},
		{Role: logs.RoleDB, Address: "10.0.0.3"},
	}
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2", "10.0.0.2-dbserver", "10.0.0.3"}, HostDirs(hosts))
}
