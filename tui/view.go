// ABOUTME: Top-level layout for the TUI
// ABOUTME: Implements the Bubble Tea View() function joining the now playing and playlist panels

package tui

import (
	"runtime/debug"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI
func (m model) View() string {
	defer func() {
		if r := recover(); r != nil {
			m.debugf("[PANIC] View panic: %v", r)
			m.debugf("[PANIC] Stack trace: %s", string(debug.Stack()))
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	if m.quitting {
		return "Saving settings and exiting...\n"
	}

	header := titleStyle.Render("cover-player")
	if m.snap.Directory != "" {
		header += "  " + helpStyle.Render(fit(m.snap.Directory, max(minViewportWidth, m.width-16)))
	}

	// Header, status and help take one line each plus a blank line
	panelHeight := max(minViewportHeight, m.height-(statusBarHeight+helpHeight+2))

	leftPanelStyle := lipgloss.NewStyle().
		Width(nowPlayingWidth).
		Height(panelHeight).
		Padding(0, 1)

	rightPanelStyle := lipgloss.NewStyle().
		Width(max(minViewportWidth*2, m.width-nowPlayingWidth-panelPadding)).
		Height(panelHeight).
		Padding(0, 1)

	right := m.renderPlaylist()
	if m.mode == modeDevices {
		right = m.renderDevices()
	}

	combined := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftPanelStyle.Render(m.renderNowPlaying()),
		rightPanelStyle.Render(right),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		combined,
		m.renderStatus(),
		m.renderHelp(),
	)
}
