// Package analyze implements the per-category aggregation modes run over
// synchronized logs. Each mode reproduces a fixed text recipe: lines are
// split on whitespace or on double quotes and a fixed 1-based column is
// counted, ranked or tailed.
package analyze

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DeBrosOfficial/sitelogs/pkg/errors"
)

// Options tune individual modes.
type Options struct {
	URI    string // Path fragment for ip-accessing-502
	Code   string // Status code for request-method
	Method string // Keep only this method in request-method
	Filter string // Substring for most-requested-containing
	Limit  int    // Overrides the mode's default N when > 0
}

// Input is the data a mode runs over.
type Input struct {
	HostDir string
	Raw     []byte
	Options Options
}

// Row is one ranked key and its occurrence count.
type Row struct {
	Count int
	Key   string
}

// Output is what a mode produced. Ranking modes fill Rows, listing modes
// fill Lines; Notes carry extra context.
type Output struct {
	Title string
	Rows  []Row
	Lines []string
	Notes []string
}

// Empty reports whether the mode found nothing.
func (o *Output) Empty() bool {
	return len(o.Rows) == 0 && len(o.Lines) == 0 && len(o.Notes) == 0
}

// Analyzer is one log format with its named modes.
type Analyzer interface {
	Name() string
	LogFile() string
	Modes() []string
	DefaultMode() string
	Run(ctx context.Context, mode string, in Input) (*Output, error)
}

// unknownMode builds the error returned for a mode an analyzer lacks.
func unknownMode(a Analyzer, mode string) error {
	return errors.NewValidationError("grouped-by",
		fmt.Sprintf("unknown mode %q for %s (available: %s)", mode, a.Name(), strings.Join(a.Modes(), ", ")),
		mode)
}

// Registry maps category names to analyzers.
type Registry struct {
	analyzers map[string]Analyzer
}

// NewRegistry creates a registry holding analyzers.
func NewRegistry(analyzers ...Analyzer) *Registry {
	r := &Registry{analyzers: make(map[string]Analyzer)}
	for _, a := range analyzers {
		r.Register(a)
	}
	return r
}

// Register adds or replaces an analyzer.
func (r *Registry) Register(a Analyzer) {
	r.analyzers[a.Name()] = a
}

// Get returns the analyzer for category.
func (r *Registry) Get(category string) (Analyzer, error) {
	a, ok := r.analyzers[category]
	if !ok {
		return nil, errors.NewValidationError("type",
			fmt.Sprintf("no analyzer for %q (available: %s)", category, strings.Join(r.Names(), ", ")),
			category)
	}
	return a, nil
}

// Names lists registered categories, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.analyzers))
	for n := range r.analyzers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Default returns a registry with every built-in analyzer.
func Default(tools ToolRunner) *Registry {
	return NewRegistry(
		NewAccessAnalyzer(),
		NewErrorAnalyzer(),
		NewTailAnalyzer("php-error", 100),
		NewTailAnalyzer("php-fpm-error", 20).Windowed(),
		NewSlowAnalyzer(),
		NewMysqlSlowAnalyzer(tools),
	)
}

// HostOutput is the output of one mode for one host directory.
type HostOutput struct {
	HostDir string
	Path    string
	Output  *Output
}

// RunAll runs mode over every host directory holding the analyzer's log
// file. Hosts without the file are skipped.
func RunAll(ctx context.Context, reg *Registry, hostDirs []string, category, mode string, opts Options) ([]HostOutput, error) {
	a, err := reg.Get(category)
	if err != nil {
		return nil, err
	}
	if mode == "" {
		mode = a.DefaultMode()
	}
	if !hasMode(a, mode) {
		return nil, unknownMode(a, mode)
	}

	var out []HostOutput
	for _, dir := range hostDirs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		path := filepath.Join(dir, a.LogFile())
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return out, fmt.Errorf("failed to read %s: %w", path, err)
		}
		res, err := a.Run(ctx, mode, Input{HostDir: dir, Raw: raw, Options: opts})
		if err != nil {
			return out, err
		}
		out = append(out, HostOutput{HostDir: dir, Path: path, Output: res})
	}
	return out, nil
}

func hasMode(a Analyzer, mode string) bool {
	for _, m := range a.Modes() {
		if m == mode {
			return true
		}
	}
	return false
}
