// Package report renders scan results, aggregations and sync outcomes for
// the terminal.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/DeBrosOfficial/sitelogs/pkg/analyze"
	"github.com/DeBrosOfficial/sitelogs/pkg/fleetsync"
	"github.com/DeBrosOfficial/sitelogs/pkg/history"
	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
	"github.com/DeBrosOfficial/sitelogs/pkg/platform"
	"github.com/DeBrosOfficial/sitelogs/pkg/scan"
	"github.com/DeBrosOfficial/sitelogs/pkg/store"
)

// NoMatches is printed when a query found nothing.
const NoMatches = "No matches found."

// Presenter writes views to one writer.
type Presenter struct {
	w      io.Writer
	styles Styles
}

// NewPresenter creates a presenter writing to w.
func NewPresenter(w io.Writer, color bool) *Presenter {
	return &Presenter{w: w, styles: NewStyles(w, color)}
}

func (p *Presenter) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format, args...)
}

// Scan prints matches grouped under their source file.
func (p *Presenter) Scan(res *scan.Result) {
	if res == nil || res.Empty() {
		p.printf("%s\n", NoMatches)
		return
	}
	for _, f := range res.Files {
		p.printf("From %s file.\n", p.styles.Source.Render(f.Path))
		for _, l := range f.Lines {
			p.printf("%s\n", l)
		}
		p.printf("\n")
	}
	p.printf("%s\n", p.styles.Muted.Render(fmt.Sprintf("%d matching lines in %d files", res.Total(), len(res.Files))))
}

// Analysis prints one block per host.
func (p *Presenter) Analysis(outs []analyze.HostOutput) {
	if len(outs) == 0 {
		p.printf("%s\n", NoMatches)
		return
	}
	for _, ho := range outs {
		p.printf("From %s file.\n", p.styles.Source.Render(ho.Path))
		p.Output(ho.Output)
		p.printf("\n")
	}
}

// Output prints a single analysis output.
func (p *Presenter) Output(o *analyze.Output) {
	if o.Title != "" {
		p.printf("%s\n", p.styles.Title.Render(o.Title))
	}
	if o.Empty() {
		p.printf("%s\n", NoMatches)
		return
	}

	if len(o.Rows) > 0 {
		width := len(fmt.Sprint(o.Rows[0].Count))
		for _, r := range o.Rows {
			if n := len(fmt.Sprint(r.Count)); n > width {
				width = n
			}
		}
		for _, r := range o.Rows {
			count := fmt.Sprintf("%*d", width+4, r.Count)
			p.printf("%s %s\n", p.styles.Count.Render(count), r.Key)
		}
	}
	for _, l := range o.Lines {
		p.printf("%s\n", l)
	}
	for _, n := range o.Notes {
		p.printf("%s %s\n", p.styles.Muted.Render("--"), n)
	}
}

// SyncReport prints the per-host outcome of a sync.
func (p *Presenter) SyncReport(r *fleetsync.Report) {
	if r.Total() == 0 {
		p.printf("No hosts found for %s.\n", r.Env)
		return
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "HOST\tROLE\tSTATUS")
	for _, h := range r.Succeeded {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", h.Address, h.Role, "ok")
	}
	for _, f := range r.Failed {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Host.Address, f.Host.Role, "failed")
	}
	for _, h := range r.Skipped {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", h.Address, h.Role, "skipped")
	}
	tw.Flush()

	for _, f := range r.Failed {
		p.printf("%s %s: %v\n", p.styles.Error.Render("✗"), f.Host.Address, f.Err)
	}

	summary := fmt.Sprintf("%d/%d hosts synchronized into %s in %s (run %s)",
		len(r.Succeeded), r.Total(), r.Destination, r.Duration().Round(time.Millisecond), r.RunID)
	if r.OK() {
		p.printf("%s %s\n", p.styles.Success.Render("✓"), summary)
	} else {
		p.printf("%s %s\n", p.styles.Error.Render("!"), summary)
	}
}

// HostFiles prints the captured files of each host directory.
func (p *Presenter) HostFiles(hostDir string, files []store.FileInfo) {
	p.printf("%s\n", p.styles.Title.Render(filepath.Base(hostDir)))
	if len(files) == 0 {
		p.printf("  (empty)\n")
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 3, ' ', 0)
	for _, f := range files {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", f.Name, f.HumanSize(), f.Age())
	}
	tw.Flush()
	p.printf("  %s\n", p.styles.Muted.Render(fmt.Sprintf("%s in %s", store.TotalSize(files), pluralFiles(len(files)))))
}

func pluralFiles(n int) string {
	if n == 1 {
		return "1 file"
	}
	return humanize.Comma(int64(n)) + " files"
}

// Environments prints captured environments.
func (p *Presenter) Environments(refs []logs.EnvironmentRef) {
	if len(refs) == 0 {
		p.printf("No logs captured yet. Run `sitelogs get <site>.<env>` first.\n")
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "SITE\tENV")
	for _, r := range refs {
		fmt.Fprintf(tw, "%s\t%s\n", r.Site, r.Env)
	}
	tw.Flush()
}

// Sites prints the configured platform sites, marking those with captured logs.
func (p *Presenter) Sites(sites []platform.Site, captured []logs.EnvironmentRef) {
	envs := make(map[string][]string)
	for _, r := range captured {
		envs[r.Site] = append(envs[r.Site], r.Env)
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "NAME\tID\tCAPTURED")
	for _, s := range sites {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, s.ID, strings.Join(envs[s.Name], ","))
	}
	tw.Flush()
}

// History prints recorded sync runs.
func (p *Presenter) History(runs []history.Run) {
	if len(runs) == 0 {
		p.printf("No sync runs recorded.\n")
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "RUN\tENV\tHOSTS\tFAILED\tSTARTED\tTOOK")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID, r.Env, r.Succeeded+r.Failed, r.Failed,
			humanize.Time(r.Started), r.Duration().Round(time.Millisecond))
	}
	tw.Flush()
}

// RunHosts prints the per-host outcome of one recorded run.
func (p *Presenter) RunHosts(hosts []history.HostResult) {
	tw := tabwriter.NewWriter(p.w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "HOST\tROLE\tSTATUS")
	for _, h := range hosts {
		status := "ok"
		switch {
		case h.Skipped:
			status = "skipped"
		case h.Error != "":
			status = h.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", h.Host.Address, h.Host.Role, status)
	}
	tw.Flush()
}
