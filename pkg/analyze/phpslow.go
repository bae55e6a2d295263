package analyze

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
)

const (
	slowPidCol       = 6  // "[date time]  [pool www] pid N"
	slowFunctionFrom = 21 // Stack frames start at column 22
)

var (
	fpmRequest = regexp.MustCompile(`request: "(GET|POST|HEAD) (.*?)"`)
	fpmParens  = regexp.MustCompile(`\(([^)]+)\)`)
)

// SlowAnalyzer reads the php slow log, cross-referencing the fpm error log.
type SlowAnalyzer struct{}

// NewSlowAnalyzer creates the php-slow analyzer.
func NewSlowAnalyzer() *SlowAnalyzer {
	return &SlowAnalyzer{}
}

func (a *SlowAnalyzer) Name() string        { return string(logs.PhpSlow) }
func (a *SlowAnalyzer) LogFile() string     { return logs.PhpSlow.FileName() }
func (a *SlowAnalyzer) Modes() []string     { return []string{"latest", "function", "minute"} }
func (a *SlowAnalyzer) DefaultMode() string { return "latest" }

func (a *SlowAnalyzer) Run(ctx context.Context, mode string, in Input) (*Output, error) {
	all := lines(in.Raw)

	switch mode {
	case "latest":
		return a.latest(all, in.HostDir)
	case "function":
		return &Output{Title: "Slow functions", Rows: top(countKeys(slowFunctions(all)), in.Options.Limit)}, nil
	case "minute":
		return &Output{Title: "Slow requests per minute", Rows: countRuns(slowMinutes(all))}, nil
	default:
		return nil, unknownMode(a, mode)
	}
}

// lastBlock returns the lines after the last blank line.
func lastBlock(all []string) []string {
	for i := len(all) - 1; i >= 0; i-- {
		if all[i] == "" {
			return all[i+1:]
		}
	}
	return all
}

func (a *SlowAnalyzer) latest(all []string, hostDir string) (*Output, error) {
	block := lastBlock(all)
	out := &Output{Title: "Latest slow request", Lines: block}
	if len(block) == 0 {
		return out, nil
	}

	pid := field(block[0], slowPidCol)
	if pid == "" {
		return out, nil
	}
	out.Notes = append(out.Notes, fmt.Sprintf("Looking for pid %s in %s", pid, logs.PhpFpmError.FileName()))

	raw, err := os.ReadFile(filepath.Join(hostDir, logs.PhpFpmError.FileName()))
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("failed to read fpm error log: %w", err)
	}
	for _, w := range fpmWarnings(lines(raw), pid) {
		out.Notes = append(out.Notes, w.notes()...)
	}
	return out, nil
}

type fpmWarning struct {
	line      int
	method    string
	uri       string
	timeSpent string
}

func (w fpmWarning) notes() []string {
	n := []string{
		fmt.Sprintf("Line number: %d", w.line),
		fmt.Sprintf("Request method: %s", w.method),
		fmt.Sprintf("Request URI: %s", w.uri),
	}
	if w.timeSpent != "" {
		n = append(n, fmt.Sprintf("Time spent: %s", w.timeSpent))
	}
	return n
}

// fpmWarnings finds "child <pid>" slow warnings; the pid must not be a
// prefix of a longer pid.
func fpmWarnings(all []string, pid string) []fpmWarning {
	marker := "WARNING: [pool www] child " + pid
	var out []fpmWarning
	for i, l := range all {
		idx := strings.Index(l, marker)
		if idx < 0 {
			continue
		}
		if rest := l[idx+len(marker):]; rest != "" && rest[0] >= '0' && rest[0] <= '9' {
			continue
		}

		w := fpmWarning{line: i + 1}
		if m := fpmRequest.FindStringSubmatch(l); m != nil {
			w.method, w.uri = m[1], m[2]
		}
		if groups := fpmParens.FindAllStringSubmatch(l, -1); len(groups) > 1 {
			w.timeSpent = groups[1][1]
		}
		out = append(out, w)
	}
	return out
}

// slowFunctions keys each stack frame directly below a script_filename line.
func slowFunctions(all []string) []string {
	var keys []string
	for i, l := range all {
		if !strings.Contains(l, "script_filename") || i+1 >= len(all) {
			continue
		}
		next := all[i+1]
		if strings.Contains(next, "script_filename") || strings.Contains(next, "--") {
			continue
		}
		if len(next) > slowFunctionFrom {
			keys = append(keys, next[slowFunctionFrom:])
		} else {
			keys = append(keys, "")
		}
	}
	return keys
}

// slowMinutes returns the HH:MM of every slow request header, sorted.
func slowMinutes(all []string) []string {
	var times []string
	for _, l := range all {
		if strings.Contains(l, "pool www") {
			times = append(times, cut(l, " ", 2))
		}
	}
	sort.Strings(times)
	for i, t := range times {
		parts := strings.SplitN(t, ":", 3)
		if len(parts) >= 2 {
			times[i] = parts[0] + ":" + parts[1]
		}
	}
	return times
}
