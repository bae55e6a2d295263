// Package resolver discovers the application and database hosts backing an
// environment.
package resolver

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/sitelogs/pkg/errors"
	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
	"github.com/DeBrosOfficial/sitelogs/pkg/platform"
)

// Resolver derives role hostnames from an environment and looks them up.
type Resolver struct {
	lookuper  Lookuper
	directory platform.Directory
	suffix    string
	logger    *zap.Logger
}

// NewResolver creates a resolver. suffix is the platform DNS zone, e.g. "drush.in".
func NewResolver(lookuper Lookuper, directory platform.Directory, suffix string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		lookuper:  lookuper,
		directory: directory,
		suffix:    suffix,
		logger:    logger,
	}
}

// Hostname returns <role>.<env>.<siteID>.<suffix>.
func Hostname(role logs.HostRole, env, siteID, suffix string) string {
	return fmt.Sprintf("%s.%s.%s.%s", role, env, siteID, suffix)
}

// Resolve returns the app and db hosts of ref. Either list may be empty.
// Any lookup failure aborts resolution.
func (r *Resolver) Resolve(ctx context.Context, ref logs.EnvironmentRef) (app, db []logs.Host, err error) {
	if err := ref.Validate(); err != nil {
		return nil, nil, err
	}

	siteID, err := r.directory.SiteID(ctx, ref.Site)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to resolve site %q", ref.Site)
	}
	return r.ResolveSite(ctx, ref, siteID)
}

// ResolveSite is Resolve for callers that already looked up the site ID.
func (r *Resolver) ResolveSite(ctx context.Context, ref logs.EnvironmentRef, siteID string) (app, db []logs.Host, err error) {
	if err := ref.Validate(); err != nil {
		return nil, nil, err
	}

	app, err = r.lookupRole(ctx, logs.RoleApp, ref.Env, siteID)
	if err != nil {
		return nil, nil, err
	}
	db, err = r.lookupRole(ctx, logs.RoleDB, ref.Env, siteID)
	if err != nil {
		return nil, nil, err
	}

	r.logger.Info("Resolved hosts",
		zap.String("environment", ref.String()),
		zap.Int("appservers", len(app)),
		zap.Int("dbservers", len(db)))
	return app, db, nil
}

func (r *Resolver) lookupRole(ctx context.Context, role logs.HostRole, env, siteID string) ([]logs.Host, error) {
	name := Hostname(role, env, siteID, r.suffix)
	addrs, err := r.lookuper.LookupA(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		r.logger.Debug("No records", zap.String("hostname", name))
		return nil, nil
	}

	seen := make(map[string]bool, len(addrs))
	var hosts []logs.Host
	for _, a := range addrs {
		if seen[a] {
			continue
		}
		seen[a] = true
		hosts = append(hosts, logs.Host{Role: role, Address: a})
	}
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].Address < hosts[j].Address })
	return hosts, nil
}
