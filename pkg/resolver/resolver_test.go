package resolver

import (
	"context"
	"fmt"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeBrosOfficial/sitelogs/pkg/errors"
	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
	"github.com/DeBrosOfficial/sitelogs/pkg/platform"
)

type fakeLookuper struct {
	records map[string][]string
	fail    map[string]error
	queried []string
}

func (f *fakeLookuper) LookupA(_ context.Context, name string) ([]string, error) {
	f.queried = append(f.queried, name)
	if err := f.fail[name]; err != nil {
		return nil, err
	}
	return f.records[name], nil
}

func newTestResolver(f *fakeLookuper) *Resolver {
	dir := platform.NewStaticDirectory(map[string]string{"acme": "site-1"}, false)
	return NewResolver(f, dir, "drush.in", nil)
}

func TestHostname(t *testing.T) {
	assert.Equal(t, "appserver.live.site-1.drush.in", Hostname(logs.RoleApp, "live", "site-1", "drush.in"))
	assert.Equal(t, "dbserver.dev.site-1.drush.in", Hostname(logs.RoleDB, "dev", "site-1", "drush.in"))
}

func TestResolveSortsAndDedupes(t *testing.T) {
	f := &fakeLookuper{records: map[string][]string{
		"appserver.live.site-1.drush.in": {"10.0.0.2", "10.0.0.1", "10.0.0.2"},
		"dbserver.live.site-1.drush.in":  {"10.0.1.1"},
	}}

	app, db, err := newTestResolver(f).Resolve(context.Background(), logs.EnvironmentRef{Site: "acme", Env: "live"})
	require.NoError(t, err)
	assert.Equal(t, []logs.Host{
		{Role: logs.RoleApp, Address: "10.0.0.1"},
		{Role: logs.RoleApp, Address: "10.0.0.2"},
	}, app)
	assert.Equal(t, []logs.Host{{Role: logs.RoleDB, Address: "10.0.1.1"}}, db)
}

func TestResolveEmptyDatabaseTier(t *testing.T) {
	f := &fakeLookuper{records: map[string][]string{
		"appserver.live.site-1.drush.in": {"10.0.0.1"},
	}}

	app, db, err := newTestResolver(f).Resolve(context.Background(), logs.EnvironmentRef{Site: "acme", Env: "live"})
	require.NoError(t, err)
	assert.Len(t, app, 1)
	assert.Empty(t, db)
}

func TestResolveLookupFailureIsFatal(t *testing.T) {
	f := &fakeLookuper{fail: map[string]error{
		"appserver.live.site-1.drush.in": errors.NewResolutionError("appserver.live.site-1.drush.in", fmt.Errorf("i/o timeout")),
	}}

	_, _, err := newTestResolver(f).Resolve(context.Background(), logs.EnvironmentRef{Site: "acme", Env: "live"})
	require.Error(t, err)
	assert.True(t, errors.IsResolution(err))
}

func TestResolveUnknownSite(t *testing.T) {
	f := &fakeLookuper{}
	_, _, err := newTestResolver(f).Resolve(context.Background(), logs.EnvironmentRef{Site: "nobody", Env: "live"})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, errors.CodeNotFound, errors.GetErrorCode(err))
	assert.Contains(t, err.Error(), `failed to resolve site "nobody": `)
	assert.Empty(t, f.queried)
}

func TestResolveSiteSkipsDirectory(t *testing.T) {
	f := &fakeLookuper{records: map[string][]string{
		"appserver.live.site-9.drush.in": {"10.0.0.5"},
	}}
	// "site-9" is not in the directory, so only a direct lookup can find it.
	app, db, err := newTestResolver(f).ResolveSite(context.Background(), logs.EnvironmentRef{Site: "other", Env: "live"}, "site-9")
	require.NoError(t, err)
	assert.Equal(t, []logs.Host{{Role: logs.RoleApp, Address: "10.0.0.5"}}, app)
	assert.Empty(t, db)
	assert.Equal(t, []string{"appserver.live.site-9.drush.in", "dbserver.live.site-9.drush.in"}, f.queried)
}

func TestAddressesFromIgnoresNonA(t *testing.T) {
	a, err := dns.NewRR("appserver.live.site-1.drush.in. 60 IN A 10.0.0.9")
	require.NoError(t, err)
	cname, err := dns.NewRR("appserver.live.site-1.drush.in. 60 IN CNAME other.drush.in.")
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.9"}, addressesFrom([]dns.RR{cname, a}))
}
