// Package logs holds the shared vocabulary of the log sync and analysis
// engine: categories, hosts, environment references and query shapes.
package logs

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/DeBrosOfficial/sitelogs/pkg/errors"
)

// Category is one of the fixed, known log kinds shipped by an appserver.
type Category string

const (
	NginxAccess Category = "nginx-access"
	NginxError  Category = "nginx-error"
	PhpError    Category = "php-error"
	PhpFpmError Category = "php-fpm-error"
	PhpSlow     Category = "php-slow"
	Pyinotify   Category = "pyinotify"
	Watcher     Category = "watcher"
	NewRelic    Category = "newrelic"
)

// MysqlSlowQuery is the slow-query log captured from database hosts. It is
// analyzable but not a transfer toggle.
const MysqlSlowQuery Category = "mysqld-slow-query"

// AllCategoriesName selects every file in a host directory when scanning.
const AllCategoriesName = "all"

// LogSuffix is appended to a category to form its file name.
const LogSuffix = ".log"

var categories = []Category{
	NginxAccess,
	NginxError,
	PhpError,
	PhpFpmError,
	PhpSlow,
	Pyinotify,
	Watcher,
	NewRelic,
}

// AllCategories returns the closed category set in its canonical order.
func AllCategories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory validates a category name.
func ParseCategory(name string) (Category, error) {
	for _, c := range categories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", errors.NewValidationError("category", fmt.Sprintf("unknown log category %q", name), name)
}

// FileName returns the on-disk name of the category's log.
func (c Category) FileName() string {
	return string(c) + LogSuffix
}

// HostRole tags a remote host with the tier it belongs to.
type HostRole string

const (
	RoleApp HostRole = "appserver"
	RoleDB  HostRole = "dbserver"
)

// Host is one remote node backing an environment.
type Host struct {
	Role    HostRole `json:"role" yaml:"role"`
	Address string   `json:"address" yaml:"address"`
}

func (h Host) String() string {
	return fmt.Sprintf("%s/%s", h.Role, h.Address)
}

// EnvironmentRef names one deployed environment of a site.
type EnvironmentRef struct {
	Site string `json:"site" yaml:"site"`
	Env  string `json:"env" yaml:"env"`
}

func (r EnvironmentRef) String() string {
	return r.Site + "." + r.Env
}

// identifierPattern restricts values that end up in remote user names,
// hostnames and local paths.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9._-]*$`)

// ValidIdentifier reports whether s is safe to place in a path segment or
// an rsync remote spec.
func ValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s) && s != "." && s != ".." && !strings.Contains(s, "..")
}

// ParseSiteEnv splits "<site>.<env>" on the last dot.
func ParseSiteEnv(s string) (EnvironmentRef, error) {
	idx := strings.LastIndex(s, ".")
	if idx <= 0 || idx == len(s)-1 {
		return EnvironmentRef{}, errors.NewValidationError("site_env", "expected <site>.<env>", s)
	}
	ref := EnvironmentRef{Site: s[:idx], Env: s[idx+1:]}
	if err := ref.Validate(); err != nil {
		return EnvironmentRef{}, err
	}
	return ref, nil
}

// Validate checks both parts are non-empty and safe identifiers.
func (r EnvironmentRef) Validate() error {
	if r.Site == "" || r.Env == "" {
		return errors.NewValidationError("site_env", "site and environment must not be empty", r.String())
	}
	if !ValidIdentifier(r.Site) {
		return errors.NewValidationError("site", "contains unsupported characters", r.Site)
	}
	if !ValidIdentifier(r.Env) {
		return errors.NewValidationError("env", "contains unsupported characters", r.Env)
	}
	return nil
}
