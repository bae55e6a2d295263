package report

import (
	"fmt"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
)

func TestSyncProgressTracksHosts(t *testing.T) {
	var m tea.Model = NewSyncProgress("acme.live", NewStyles(io.Discard, false))

	m, _ = m.Update(HostDoneMsg{Host: logs.Host{Role: logs.RoleApp, Address: "10.0.0.1"}})
	m, _ = m.Update(HostDoneMsg{Host: logs.Host{Role: logs.RoleDB, Address: "10.0.0.2"}, Err: fmt.Errorf("exit 23")})

	view := m.View()
	assert.Contains(t, view, "✓ 10.0.0.1 appserver")
	assert.Contains(t, view, "✗ 10.0.0.2 dbserver")
	assert.Contains(t, view, "Synchronizing acme.live (2 done)")
}

func TestSyncProgressQuitsWhenDone(t *testing.T) {
	var m tea.Model = NewSyncProgress("acme.live", NewStyles(io.Discard, false))

	m, cmd := m.Update(SyncDoneMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.NotContains(t, m.View(), "Synchronizing")
}
