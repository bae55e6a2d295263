// Package store maps (site, env, host) to directories under the log root.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/DeBrosOfficial/sitelogs/pkg/errors"
	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
)

// housekeeping entries left by file managers and never treated as hosts.
var housekeeping = map[string]bool{
	".DS_Store": true,
	"Thumbs.db": true,
}

// EnvDir returns <root>/<site>/<env>.
func EnvDir(root, site, env string) string {
	return filepath.Join(root, site, env)
}

// LayoutPath returns <root>/<site>/<env>/<host>.
func LayoutPath(root, site, env, host string) string {
	return filepath.Join(root, site, env, host)
}

func skip(name string) bool {
	return housekeeping[name] || strings.HasPrefix(name, ".")
}

// ListCapturedHosts returns the host directories of an environment, sorted.
// A missing environment directory is a NoDataError.
func ListCapturedHosts(root, site, env string) ([]string, error) {
	dir := EnvDir(root, site, env)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNoDataError(site, env, dir)
		}
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var hosts []string
	for _, e := range entries {
		if !e.IsDir() || skip(e.Name()) {
			continue
		}
		hosts = append(hosts, filepath.Join(dir, e.Name()))
	}
	sort.Strings(hosts)
	return hosts, nil
}

// ListCapturedEnvironments walks <root>/<site>/<env> and returns every
// environment that has at least one host directory.
func ListCapturedEnvironments(root string) ([]logs.EnvironmentRef, error) {
	sites, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read log root %s: %w", root, err)
	}

	var refs []logs.EnvironmentRef
	for _, s := range sites {
		if !s.IsDir() || skip(s.Name()) {
			continue
		}
		envs, err := os.ReadDir(filepath.Join(root, s.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read site %s: %w", s.Name(), err)
		}
		for _, e := range envs {
			if !e.IsDir() || skip(e.Name()) {
				continue
			}
			hosts, err := ListCapturedHosts(root, s.Name(), e.Name())
			if err != nil || len(hosts) == 0 {
				continue
			}
			refs = append(refs, logs.EnvironmentRef{Site: s.Name(), Env: e.Name()})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].String() < refs[j].String() })
	return refs, nil
}

// FileInfo describes one captured log file.
type FileInfo struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// HumanSize renders Size as "1.2 MB".
func (f FileInfo) HumanSize() string {
	return humanize.Bytes(uint64(f.Size))
}

// Age renders ModTime relative to now, e.g. "3 hours ago".
func (f FileInfo) Age() string {
	return humanize.Time(f.ModTime)
}

// ListFiles returns every regular file below hostDir, including nested
// archive subpaths, sorted by relative name.
func ListFiles(hostDir string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.WalkDir(hostDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != hostDir && skip(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if skip(d.Name()) || !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(hostDir, path)
		if err != nil {
			return err
		}
		files = append(files, FileInfo{Name: rel, Path: path, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", hostDir, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// TotalSize sums the sizes of files.
func TotalSize(files []FileInfo) string {
	var total uint64
	for _, f := range files {
		total += uint64(f.Size)
	}
	return humanize.Bytes(total)
}

// Store binds the layout functions to one log root.
type Store struct {
	root string
}

// NewStore creates a store rooted at root.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the log root.
func (s *Store) Root() string {
	return s.root
}

// EnvDir returns the directory of ref.
func (s *Store) EnvDir(ref logs.EnvironmentRef) string {
	return EnvDir(s.root, ref.Site, ref.Env)
}

// HostDir returns the directory of one host of ref.
func (s *Store) HostDir(ref logs.EnvironmentRef, host string) string {
	return LayoutPath(s.root, ref.Site, ref.Env, host)
}

// EnsureHostDir creates dir/host if absent and returns its path.
func (s *Store) EnsureHostDir(dir, host string) (string, error) {
	if !logs.ValidIdentifier(host) {
		return "", errors.NewValidationError("host", "contains unsupported characters", host)
	}
	path := filepath.Join(dir, host)
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	return path, nil
}

// RequireEnv returns the host directories of ref, or a NoDataError when
// nothing has been synchronized yet.
func (s *Store) RequireEnv(ref logs.EnvironmentRef) ([]string, error) {
	hosts, err := ListCapturedHosts(s.root, ref.Site, ref.Env)
	if err != nil {
		return nil, err
	}
	if len(hosts) == 0 {
		return nil, errors.NewNoDataError(ref.Site, ref.Env, s.EnvDir(ref))
	}
	return hosts, nil
}

// Environments lists every captured environment.
func (s *Store) Environments() ([]logs.EnvironmentRef, error) {
	return ListCapturedEnvironments(s.root)
}
