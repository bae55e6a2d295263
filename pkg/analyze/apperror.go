package analyze

import (
	"context"
	"fmt"
)

// TailAnalyzer shows the end of an application error log.
type TailAnalyzer struct {
	category string
	lines    int
	windowed bool
}

// NewTailAnalyzer creates a "latest" analyzer for category showing n lines
// unless the caller asks for a different count.
func NewTailAnalyzer(category string, n int) *TailAnalyzer {
	return &TailAnalyzer{category: category, lines: n}
}

// Windowed makes the analyzer read only the last recentWindow lines, so the
// line count caps the output instead of widening it.
func (a *TailAnalyzer) Windowed() *TailAnalyzer {
	a.windowed = true
	return a
}

func (a *TailAnalyzer) Name() string        { return a.category }
func (a *TailAnalyzer) LogFile() string     { return a.category + ".log" }
func (a *TailAnalyzer) Modes() []string     { return []string{"latest"} }
func (a *TailAnalyzer) DefaultMode() string { return "latest" }

func (a *TailAnalyzer) Run(ctx context.Context, mode string, in Input) (*Output, error) {
	if mode != "latest" {
		return nil, unknownMode(a, mode)
	}
	n := limitOr(in.Options, a.lines)
	if a.windowed {
		return &Output{
			Title: fmt.Sprintf("Recent lines of %s", a.LogFile()),
			Lines: recent(lines(in.Raw), n),
		}, nil
	}
	return &Output{
		Title: fmt.Sprintf("Last %d lines of %s", n, a.LogFile()),
		Lines: tail(lines(in.Raw), n),
	}, nil
}
