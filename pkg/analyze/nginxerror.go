package analyze

import (
	"context"
	"sort"
	"strings"

	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
)

// In an "access forbidden by rule" line the requested path is column 16.
const forbiddenPathCol = 16

// ErrorAnalyzer searches the nginx error log for known conditions.
type ErrorAnalyzer struct{}

// NewErrorAnalyzer creates the nginx-error analyzer.
func NewErrorAnalyzer() *ErrorAnalyzer {
	return &ErrorAnalyzer{}
}

func (a *ErrorAnalyzer) Name() string        { return string(logs.NginxError) }
func (a *ErrorAnalyzer) LogFile() string     { return logs.NginxError.FileName() }
func (a *ErrorAnalyzer) DefaultMode() string { return "latest" }

func (a *ErrorAnalyzer) Modes() []string {
	return []string{"latest", "access forbidden", "SSL_shutdown", "worker_connections"}
}

func (a *ErrorAnalyzer) Run(ctx context.Context, mode string, in Input) (*Output, error) {
	all := lines(in.Raw)

	switch mode {
	case "latest":
		return &Output{Title: "Latest nginx errors", Lines: recent(all, limitOr(in.Options, recentWindow))}, nil
	case "access forbidden":
		var keys []string
		for _, l := range grep(all, mode) {
			keys = append(keys, field(l, forbiddenPathCol))
		}
		return &Output{Title: "Forbidden paths", Rows: top(countKeys(keys), limitOr(in.Options, 20))}, nil
	case "SSL_shutdown", "worker_connections":
		matched := grep(all, mode)
		sort.Sort(sort.Reverse(sort.StringSlice(matched)))
		return &Output{Title: "Most recent " + mode + " events", Lines: headN(matched, limitOr(in.Options, 10))}, nil
	default:
		return nil, unknownMode(a, mode)
	}
}

func grep(all []string, needle string) []string {
	var out []string
	for _, l := range all {
		if strings.Contains(l, needle) {
			out = append(out, l)
		}
	}
	return out
}

func headN(all []string, n int) []string {
	if n > 0 && len(all) > n {
		return all[:n]
	}
	return all
}
