package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
)

// HostDoneMsg is sent when one host finished synchronizing.
type HostDoneMsg struct {
	Host logs.Host
	Err  error
}

// SyncDoneMsg ends the live view.
type SyncDoneMsg struct{}

// SyncProgress is the bubbletea model of a running sync.
type SyncProgress struct {
	title    string
	spinner  spinner.Model
	styles   Styles
	hosts    []HostDoneMsg
	finished bool
}

// NewSyncProgress creates the live view for one environment.
func NewSyncProgress(title string, styles Styles) SyncProgress {
	return SyncProgress{
		title:   title,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Title)),
		styles:  styles,
	}
}

// Init starts the spinner.
func (m SyncProgress) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages
func (m SyncProgress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case HostDoneMsg:
		m.hosts = append(m.hosts, msg)
		return m, nil

	case SyncDoneMsg:
		m.finished = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders finished hosts followed by the spinner line.
func (m SyncProgress) View() string {
	var s strings.Builder
	for _, h := range m.hosts {
		if h.Err != nil {
			fmt.Fprintf(&s, "%s %s %s\n", m.styles.Error.Render("✗"), h.Host.Address, m.styles.Muted.Render(string(h.Host.Role)))
			continue
		}
		fmt.Fprintf(&s, "%s %s %s\n", m.styles.Success.Render("✓"), h.Host.Address, m.styles.Muted.Render(string(h.Host.Role)))
	}
	if !m.finished {
		fmt.Fprintf(&s, "%s Synchronizing %s (%d done)\n", m.spinner.View(), m.title, len(m.hosts))
	}
	return s.String()
}

// Live runs fn while showing a spinner and a line per finished host. fn
// receives the callback to report hosts with; its error is returned.
func (p *Presenter) Live(ctx context.Context, title string, fn func(notify func(logs.Host, error)) error) error {
	prog := tea.NewProgram(NewSyncProgress(title, p.styles),
		tea.WithOutput(p.w),
		tea.WithInput(nil),
		tea.WithContext(ctx),
	)

	done := make(chan error, 1)
	go func() {
		err := fn(func(h logs.Host, err error) {
			prog.Send(HostDoneMsg{Host: h, Err: err})
		})
		prog.Send(SyncDoneMsg{})
		done <- err
	}()

	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		<-done
		return fmt.Errorf("progress view failed: %w", err)
	}
	return <-done
}
