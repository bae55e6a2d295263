package report

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles used across all views
type Styles struct {
	Title   lipgloss.Style
	Source  lipgloss.Style
	Count   lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
}

// NewStyles builds styles bound to w's color profile. With color off every
// style renders plain text.
func NewStyles(w io.Writer, color bool) Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return Styles{Title: plain, Source: plain, Count: plain, Muted: plain, Error: plain, Success: plain}
	}

	r := lipgloss.NewRenderer(w)
	return Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00D4AA")),
		Source: r.NewStyle().
			Foreground(lipgloss.Color("#5FAFFF")),
		Count: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFD75F")),
		Muted: r.NewStyle().
			Foreground(lipgloss.Color("#888888")),
		Error: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		Success: r.NewStyle().
			Foreground(lipgloss.Color("#00D4AA")).
			Bold(true),
	}
}
