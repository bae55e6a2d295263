// Package scan streams log files and collects lines matching a keyword.
package scan

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
)

// MaxLineSize bounds a single log line.
const MaxLineSize = 1024 * 1024

// Wildcard matches every line when used as the keyword.
const Wildcard = "*"

// Matcher decides whether a line is collected.
type Matcher struct {
	Keyword string
	Since   string
	Until   string
}

func (m Matcher) match(line string) bool {
	if m.Keyword != "" && m.Keyword != Wildcard && !strings.Contains(line, m.Keyword) {
		return false
	}
	if m.Since != "" && !strings.Contains(line, m.Since) {
		return false
	}
	return true
}

// ScanFile returns the lines of path containing keyword (and since, when
// set) in file order. A missing file yields no lines and no error.
func ScanFile(path, keyword, since string) ([]string, error) {
	return Matcher{Keyword: keyword, Since: since}.ScanFile(path)
}

// ScanFile applies m to one file. Collection stops after the first line
// containing Until.
func (m Matcher) ScanFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), MaxLineSize)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if m.match(line) {
			lines = append(lines, line)
		}
		if m.Until != "" && strings.Contains(line, m.Until) {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return lines, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}

// FileMatches groups the matching lines of one file.
type FileMatches struct {
	Path  string
	Lines []string
}

// Matches flattens the group into match records.
func (f FileMatches) Matches() []logs.Match {
	out := make([]logs.Match, len(f.Lines))
	for i, l := range f.Lines {
		out[i] = logs.Match{SourceFile: f.Path, Line: l}
	}
	return out
}

// Result holds every file with at least one match, in host then file order.
type Result struct {
	Files []FileMatches
}

// Total counts matching lines across files.
func (r *Result) Total() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Lines)
	}
	return n
}

// Empty reports whether nothing matched.
func (r *Result) Empty() bool {
	return len(r.Files) == 0
}

// Scanner runs queries over host directories.
type Scanner struct {
	workers int
	logger  *zap.Logger
}

// NewScanner creates a scanner reading up to workers files at once.
func NewScanner(workers int, logger *zap.Logger) *Scanner {
	if workers < 1 {
		workers = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{workers: workers, logger: logger}
}

// Files lists the files a query reads in one host directory.
func Files(hostDir, category string) ([]string, error) {
	if category != logs.AllCategoriesName {
		return []string{filepath.Join(hostDir, category+logs.LogSuffix)}, nil
	}

	entries, err := os.ReadDir(hostDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", hostDir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(hostDir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Scan runs q over every host directory. Files are read concurrently but
// the result keeps host order, then file name order.
func (s *Scanner) Scan(ctx context.Context, hostDirs []string, q logs.ScanQuery) (*Result, error) {
	if q.Category == "" {
		q.Category = logs.AllCategoriesName
	}

	var paths []string
	for _, dir := range hostDirs {
		files, err := Files(dir, q.Category)
		if err != nil {
			return nil, err
		}
		paths = append(paths, files...)
	}

	m := Matcher{Keyword: q.Keyword, Since: q.Since, Until: q.Until}
	found := make([][]string, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lines, err := m.ScanFile(p)
			if err != nil {
				return err
			}
			found[i] = lines
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{}
	for i, p := range paths {
		if len(found[i]) == 0 {
			continue
		}
		res.Files = append(res.Files, FileMatches{Path: p, Lines: found[i]})
	}

	s.logger.Debug("Scan finished",
		zap.String("category", q.Category),
		zap.String("keyword", q.Keyword),
		zap.Int("files", len(paths)),
		zap.Int("matches", res.Total()))
	return res, nil
}
