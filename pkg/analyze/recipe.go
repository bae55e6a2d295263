package analyze

import (
	"bufio"
	"bytes"
	"sort"
	"strings"
)

// lines splits raw log content, dropping the final empty line.
func lines(raw []byte) []string {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		out = append(out, strings.TrimSuffix(sc.Text(), "\r"))
	}
	return out
}

// field returns the 1-based whitespace-separated column n, or "".
func field(line string, n int) string {
	f := strings.Fields(line)
	if n < 1 || n > len(f) {
		return ""
	}
	return f[n-1]
}

// quoted returns the 1-based column n of line split on '"', or "".
func quoted(line string, n int) string {
	return cut(line, `"`, n)
}

// cut returns the 1-based column n of line split on every occurrence of sep,
// so consecutive separators yield empty columns.
func cut(line, sep string, n int) string {
	f := strings.Split(line, sep)
	if n < 1 || n > len(f) {
		return ""
	}
	return f[n-1]
}

// countKeys tallies keys and ranks them by count, highest first. Ties are
// broken by key.
func countKeys(keys []string) []Row {
	counts := make(map[string]int)
	var order []string
	for _, k := range keys {
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}
	rows := make([]Row, 0, len(order))
	for _, k := range order {
		rows = append(rows, Row{Count: counts[k], Key: k})
	}
	sortByCount(rows)
	return rows
}

// countByKey tallies keys and orders rows by key.
func countByKey(keys []string) []Row {
	rows := countKeys(keys)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}

// countRuns counts consecutive identical keys, keeping input order.
func countRuns(keys []string) []Row {
	var rows []Row
	for _, k := range keys {
		if n := len(rows); n > 0 && rows[n-1].Key == k {
			rows[n-1].Count++
			continue
		}
		rows = append(rows, Row{Count: 1, Key: k})
	}
	return rows
}

func sortByCount(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Key < rows[j].Key
	})
}

// top truncates rows to n; n <= 0 keeps everything.
func top(rows []Row, n int) []Row {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

// tail returns the last n lines.
func tail(all []string, n int) []string {
	if n <= 0 || len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// recentWindow is how many trailing lines the windowed error views read
// before applying their line limit.
const recentWindow = 10

// recent returns at most n of the last recentWindow lines, oldest first.
func recent(all []string, n int) []string {
	return headN(tail(all, recentWindow), n)
}

// limitOr returns opts.Limit when set, else def.
func limitOr(opts Options, def int) int {
	if opts.Limit > 0 {
		return opts.Limit
	}
	return def
}
