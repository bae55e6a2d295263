package analyze

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
)

// Access log columns. Whitespace split:
//
//	$1 client  $4 [time  $6 "METHOD  $7 path  $9 status
//
// Split on '"':
//
//	$1 client prefix  $2 request line  $3 status and size  $8 forwarded-for list
const (
	accessClientCol  = 1
	accessTimeCol    = 4
	accessMethodCol  = 6
	accessPathCol    = 7
	accessStatusCol  = 9
	quotedRequestCol = 2
	quotedStatusCol  = 3
	quotedForwardCol = 8
)

var (
	phpGetRequest  = regexp.MustCompile(`^GET .*\.php`)
	phpAnyRequest  = regexp.MustCompile(`(GET|POST) .*\.php`)
	staticRequests = []string{"robots.txt", ".css", ".js", ".png", ".ico"}
)

// AccessAnalyzer ranks nginx access log entries.
type AccessAnalyzer struct{}

// NewAccessAnalyzer creates the nginx-access analyzer.
func NewAccessAnalyzer() *AccessAnalyzer {
	return &AccessAnalyzer{}
}

func (a *AccessAnalyzer) Name() string        { return string(logs.NginxAccess) }
func (a *AccessAnalyzer) LogFile() string     { return logs.NginxAccess.FileName() }
func (a *AccessAnalyzer) DefaultMode() string { return "ip" }

func (a *AccessAnalyzer) Modes() []string {
	return []string{
		"ip",
		"response-code",
		"403",
		"404",
		"502",
		"ip-accessing-502",
		"php-404",
		"php-404-detailed",
		"most-requested-urls",
		"most-requested-containing",
		"request-per-second",
		"request-method",
	}
}

func (a *AccessAnalyzer) Run(ctx context.Context, mode string, in Input) (*Output, error) {
	all := lines(in.Raw)
	opts := in.Options

	switch mode {
	case "ip":
		return &Output{Title: "Top visitors by IP", Rows: top(countKeys(forwardedFor(all)), limitOr(opts, 20))}, nil
	case "response-code":
		return &Output{Title: "Responses by HTTP status", Rows: top(countKeys(statusCodes(all)), opts.Limit)}, nil
	case "403":
		return &Output{Title: "Top 403 requests by client and path", Rows: top(countKeys(forbidden(all)), opts.Limit)}, nil
	case "404", "502":
		return &Output{Title: fmt.Sprintf("Top %s requests", mode), Rows: top(countKeys(pathsWithStatus(all, mode)), opts.Limit)}, nil
	case "ip-accessing-502":
		uri := strings.TrimPrefix(opts.URI, "/")
		return &Output{
			Title: fmt.Sprintf("Clients hitting /%s with 502", uri),
			Rows:  top(countKeys(clientsFor502(all, uri)), opts.Limit),
		}, nil
	case "php-404":
		return &Output{Title: "Top PHP 404 requests", Rows: top(countKeys(php404(all)), limitOr(opts, 20))}, nil
	case "php-404-detailed":
		return &Output{Title: "PHP 404 requests in full", Lines: tail(php404Detailed(all), opts.Limit)}, nil
	case "most-requested-urls":
		return &Output{Title: "Most requested URLs", Rows: top(countKeys(requestedURLs(all, "")), limitOr(opts, 20))}, nil
	case "most-requested-containing":
		needle := opts.Filter
		if needle == "" {
			needle = "xml"
		}
		return &Output{
			Title: fmt.Sprintf("Most requested URLs containing %q", needle),
			Rows:  top(countKeys(requestedURLs(all, needle)), limitOr(opts, 20)),
		}, nil
	case "request-per-second":
		rows := countRuns(timestamps(all))
		sortByCount(rows)
		return &Output{Title: "Requests per second", Rows: top(rows, limitOr(opts, 10))}, nil
	case "request-method":
		code := opts.Code
		if code == "" {
			code = "200"
		}
		return &Output{
			Title: fmt.Sprintf("Request methods for responses matching %s", code),
			Rows:  top(requestMethods(all, code, opts.Method), opts.Limit),
		}, nil
	default:
		return nil, unknownMode(a, mode)
	}
}

// forwardedFor keys each line by the first address of its forwarded-for list.
func forwardedFor(all []string) []string {
	keys := make([]string, 0, len(all))
	for _, l := range all {
		keys = append(keys, strings.TrimSuffix(field(quoted(l, quotedForwardCol), 1), ","))
	}
	return keys
}

func statusCodes(all []string) []string {
	keys := make([]string, 0, len(all))
	for _, l := range all {
		keys = append(keys, cut(quoted(l, quotedStatusCol), " ", 2))
	}
	return keys
}

func hasStatus(line, code string) bool {
	return strings.Contains(field(line, accessStatusCol), code)
}

// forbidden keys 403 GET requests by "<first forwarded address> <path>".
func forbidden(all []string) []string {
	var keys []string
	for _, l := range all {
		if !hasStatus(l, "403") {
			continue
		}
		req := quoted(l, quotedRequestCol)
		if !strings.HasPrefix(req, "GET") {
			continue
		}
		joined := req + " " + quoted(l, quotedForwardCol)
		key := field(joined, 4) + " " + field(joined, 2)
		keys = append(keys, strings.ReplaceAll(key, ",", ""))
	}
	return keys
}

func pathsWithStatus(all []string, code string) []string {
	var keys []string
	for _, l := range all {
		if hasStatus(l, code) {
			keys = append(keys, field(l, accessPathCol))
		}
	}
	return keys
}

func clientsFor502(all []string, uri string) []string {
	var keys []string
	for _, l := range all {
		if !hasStatus(l, "502") || !strings.Contains(quoted(l, quotedRequestCol), "/"+uri) {
			continue
		}
		keys = append(keys, field(quoted(l, accessClientCol), 1))
	}
	return keys
}

func php404(all []string) []string {
	var keys []string
	for _, l := range all {
		if hasStatus(l, "404") && phpGetRequest.MatchString(quoted(l, quotedRequestCol)) {
			keys = append(keys, field(l, accessPathCol))
		}
	}
	return keys
}

func php404Detailed(all []string) []string {
	var out []string
	for _, l := range all {
		if phpAnyRequest.MatchString(l) && hasStatus(l, "404") {
			out = append(out, l)
		}
	}
	return out
}

// requestedURLs keys requests by URL; a non-empty needle keeps only
// request lines containing it.
func requestedURLs(all []string, needle string) []string {
	keys := make([]string, 0, len(all))
	for _, l := range all {
		req := quoted(l, quotedRequestCol)
		if needle != "" && !strings.Contains(req, needle) {
			continue
		}
		keys = append(keys, field(req, 2))
	}
	return keys
}

func timestamps(all []string) []string {
	keys := make([]string, 0, len(all))
	for _, l := range all {
		keys = append(keys, strings.ReplaceAll(field(l, accessTimeCol), "[", ""))
	}
	return keys
}

func isStatic(line string) bool {
	for _, s := range staticRequests {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

func requestMethods(all []string, code, method string) []Row {
	var keys []string
	for _, l := range all {
		if !strings.Contains(l, code) || isStatic(l) {
			continue
		}
		m := strings.ReplaceAll(field(l, accessMethodCol), `"`, "")
		if method != "" && !strings.EqualFold(m, method) {
			continue
		}
		keys = append(keys, m)
	}
	return countByKey(keys)
}
