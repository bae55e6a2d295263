// Package platform is the boundary to the hosting platform's site directory.
package platform

import (
	"context"
	"sort"

	"github.com/DeBrosOfficial/sitelogs/pkg/errors"
	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
)

// Site is a hosted site known to the directory.
type Site struct {
	Name string `json:"name" yaml:"name"`
	ID   string `json:"id" yaml:"id"`
}

// Directory maps site names to platform site IDs.
type Directory interface {
	SiteID(ctx context.Context, site string) (string, error)
	ListSites(ctx context.Context) ([]Site, error)
}

// StaticDirectory serves lookups from a fixed name -> ID table, usually the
// `sites` section of the config file.
type StaticDirectory struct {
	sites       map[string]string
	passthrough bool
}

// NewStaticDirectory returns a directory backed by sites. With passthrough
// set, unknown names are returned unchanged as their own ID.
func NewStaticDirectory(sites map[string]string, passthrough bool) *StaticDirectory {
	m := make(map[string]string, len(sites))
	for k, v := range sites {
		m[k] = v
	}
	return &StaticDirectory{sites: m, passthrough: passthrough}
}

// SiteID resolves a site name.
func (d *StaticDirectory) SiteID(ctx context.Context, site string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if id, ok := d.sites[site]; ok && id != "" {
		return id, nil
	}
	if d.passthrough && logs.ValidIdentifier(site) {
		return site, nil
	}
	return "", errors.NewNotFoundError("site", site)
}

// ListSites returns every configured site sorted by name.
func (d *StaticDirectory) ListSites(ctx context.Context) ([]Site, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Site, 0, len(d.sites))
	for name, id := range d.sites {
		out = append(out, Site{Name: name, ID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
