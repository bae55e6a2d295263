package analyze

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
)

const (
	mysqlDefaultMode = "digest"
	mysqlDefaultTop  = 5
)

var dumpSlowOrder = map[string]string{
	"query-count":       "c",
	"average-rows-sent": "r",
	"average-time":      "t",
}

var ptQueryLegend = []string{
	"Rank          The query's rank within the entire set of queries analyzed",
	"Query ID      The query's fingerprint",
	"Response time The total response time, and percentage of overall total",
	"Calls         The number of times this query was executed",
	"R/Call        The mean response time per execution",
	"V/M           The Variance-to-mean ratio of response time",
	"Item          The distilled query",
}

// MysqlSlowAnalyzer digests the database slow-query log.
type MysqlSlowAnalyzer struct {
	tools ToolRunner
}

// NewMysqlSlowAnalyzer creates the mysqld-slow-query analyzer.
func NewMysqlSlowAnalyzer(tools ToolRunner) *MysqlSlowAnalyzer {
	return &MysqlSlowAnalyzer{tools: tools}
}

func (a *MysqlSlowAnalyzer) Name() string        { return string(logs.MysqlSlowQuery) }
func (a *MysqlSlowAnalyzer) LogFile() string     { return logs.MysqlSlowQuery.FileName() }
func (a *MysqlSlowAnalyzer) DefaultMode() string { return mysqlDefaultMode }

func (a *MysqlSlowAnalyzer) Modes() []string {
	return []string{mysqlDefaultMode, "time", "query-count", "average-rows-sent", "average-time"}
}

func (a *MysqlSlowAnalyzer) Run(ctx context.Context, mode string, in Input) (*Output, error) {
	path := filepath.Join(in.HostDir, a.LogFile())

	switch mode {
	case mysqlDefaultMode:
		out, err := a.tools.Run(ctx, ToolPtQueryDigest, path)
		if err != nil {
			return nil, err
		}
		return &Output{Title: "Query digest", Lines: lines(out), Notes: ptQueryLegend}, nil
	case "time":
		return &Output{Title: "Queries by execution time", Rows: top(countKeys(queryTimes(lines(in.Raw))), in.Options.Limit)}, nil
	default:
		order, ok := dumpSlowOrder[mode]
		if !ok {
			return nil, unknownMode(a, mode)
		}
		n := limitOr(in.Options, mysqlDefaultTop)
		out, err := a.tools.Run(ctx, ToolMysqlDumpSlow, "-a", "-s", order, "-t", strconv.Itoa(n), path)
		if err != nil {
			return nil, err
		}
		return &Output{Title: fmt.Sprintf("Top %d queries by %s", n, mode), Lines: lines(out)}, nil
	}
}

// queryTimes keys each query by the "SET timestamp=N;" line that follows its
// Query_time header, rendered in UTC.
func queryTimes(all []string) []string {
	var keys []string
	for i, l := range all {
		if !strings.Contains(l, "Query_time") {
			continue
		}
		if next := lineAt(all, i+1); strings.Contains(next, "SET") {
			keys = append(keys, formatTimestamp(cut(next, "=", 2)))
		}
	}
	return keys
}

func lineAt(all []string, i int) string {
	if i < len(all) {
		return all[i]
	}
	return ""
}

func formatTimestamp(v string) string {
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), ";"))
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return v
	}
	return time.Unix(secs, 0).UTC().Format("2006-01-02 15:04:05")
}
