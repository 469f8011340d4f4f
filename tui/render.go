// ABOUTME: Rendering functions for TUI components
// ABOUTME: Handles all visual formatting and display logic

package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/x/ansi"

	"cover-player/engine"
	"cover-player/library"
)

const (
	titleColumnWidth  = 36
	artistColumnWidth = 22
	progressBarWidth  = 24
)

var stateIcons = map[engine.PlaybackState]string{
	engine.Stopped: "■",
	engine.Playing: "▶",
	engine.Paused:  "⏸",
}

// renderNowPlaying renders the current track panel
func (m model) renderNowPlaying() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Now playing") + "\n\n")

	if m.snap.Current == "" {
		b.WriteString(helpStyle.Render("Nothing loaded") + "\n")

		return b.String()
	}

	info := m.trackInfo(m.snap.Current)
	width := nowPlayingWidth - 2

	b.WriteString(playingStyle.Render(stateIcons[m.snap.State]+" "+fit(info.Title, width-2)) + "\n")
	b.WriteString(fit(info.Artist, width) + "\n")
	b.WriteString(helpStyle.Render(fit(info.Album, width)) + "\n\n")

	if m.snap.Image != "" {
		b.WriteString(fit("Cover: "+library.BaseName(m.snap.Image), width) + "\n")
	} else {
		b.WriteString(helpStyle.Render("No cover") + "\n")
	}

	b.WriteString("\n")
	b.WriteString(progressBar(m.snap.Position, m.snap.Duration, progressBarWidth))
	b.WriteString(fmt.Sprintf(" %s / %s\n", formatDuration(m.snap.Position), formatDuration(m.snap.Duration)))
	b.WriteString(fmt.Sprintf("Volume %3.0f%%\n", m.snap.Volume*100))

	device := m.snap.Device
	if device == "" {
		device = "system default"
	}

	b.WriteString(helpStyle.Render(fit("Output: "+device, width)) + "\n")

	if m.snap.Cursor < 0 {
		b.WriteString("\n" + helpStyle.Render("Not in playlist") + "\n")
	}

	return b.String()
}

// renderPlaylist renders the playlist with viewport scrolling
func (m model) renderPlaylist() string {
	var b strings.Builder

	title := fmt.Sprintf("Playlist (%d)", len(m.snap.Tracks))
	b.WriteString(titleStyle.Render(title) + "\n\n")

	header := fmt.Sprintf("  %-4s %s %s", "#", pad("Title", titleColumnWidth), pad("Artist", artistColumnWidth))
	b.WriteString(playlistHeaderStyle.Render(header) + "\n")

	if len(m.snap.Tracks) == 0 {
		b.WriteString(helpStyle.Render("  No audio files. Press o to open a file or directory."))

		return b.String()
	}

	// Content is set in Update()
	b.WriteString(m.viewport.View())

	return b.String()
}

// updateViewportContent renders every row; the viewport handles scrolling
func (m *model) updateViewportContent() {
	var b strings.Builder

	for i, path := range m.snap.Tracks {
		info := m.trackInfo(path)

		marker := "  "
		if i == m.snap.Cursor {
			marker = stateIcons[m.snap.State] + " "
		}

		line := fmt.Sprintf("%s%-4d %s %s",
			marker,
			i+1,
			pad(fit(info.Title, titleColumnWidth), titleColumnWidth),
			pad(fit(info.Artist, artistColumnWidth), artistColumnWidth),
		)

		switch {
		case i == m.cursorPos:
			line = cursorStyle.Render(line)
		case i == m.snap.Cursor:
			line = playingStyle.Render(line)
		}

		b.WriteString(line + "\n")
	}

	m.viewport.SetContent(b.String())
}

// renderDevices renders the output device picker in place of the playlist
func (m model) renderDevices() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Output device") + "\n\n")

	for i, dev := range m.devices {
		line := "  " + dev.Description
		if dev.Description == m.snap.Device {
			line += " (current)"
		}

		if i == m.deviceCursor {
			line = cursorStyle.Render(line)
		}

		b.WriteString(line + "\n")
	}

	return b.String()
}

// renderStatus renders the status bar
func (m model) renderStatus() string {
	if m.statusMsg != "" && time.Since(m.statusMsgAge) < statusMessageDuration {
		return statusStyle.Width(m.width).Render(m.statusMsg)
	}

	position := "-"
	if m.snap.Cursor >= 0 {
		position = fmt.Sprintf("%d", m.snap.Cursor+1)
	}

	status := fmt.Sprintf("%d tracks | Track %s/%d | %s",
		len(m.snap.Tracks),
		position,
		len(m.snap.Tracks),
		m.snap.State,
	)

	if m.snap.SaveErr != nil {
		status += " | " + errorStyle.Render("settings not saved")
	}

	return statusStyle.Width(m.width).Render(status)
}

// renderHelp renders the key help line for the active mode
func (m model) renderHelp() string {
	var bindings []string

	switch m.mode {
	case modeOpen:
		return m.input.View() + "  " + helpStyle.Render("enter: open • esc: cancel")
	case modeDevices:
		bindings = helpEntries(keys.Up, keys.Down, keys.Cancel)
		bindings = append(bindings, "enter: select")
	default:
		bindings = helpEntries(keys.Play, keys.Pause, keys.Stop, keys.Next, keys.Previous,
			keys.Back, keys.Forward, keys.Louder, keys.Quieter,
			keys.Open, keys.Devices, keys.Refresh, keys.Export, keys.Quit)
	}

	return helpStyle.Render(strings.Join(bindings, " • "))
}

func helpEntries(bindings ...key.Binding) []string {
	entries := make([]string, 0, len(bindings))

	for _, binding := range bindings {
		h := binding.Help()
		entries = append(entries, h.Key+": "+h.Desc)
	}

	return entries
}

// trackInfo returns cached tag metadata, falling back to the file name
func (m model) trackInfo(path string) library.TrackInfo {
	if info, ok := m.infos[path]; ok {
		return info
	}

	name := library.BaseName(path)

	return library.TrackInfo{Path: path, Title: strings.TrimSuffix(name, filepath.Ext(name))}
}

// ========== Formatting ==========

// fit shortens s to width terminal cells, adding "…" if truncated
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}

	return ansi.Truncate(s, width, "…")
}

// pad right-pads s with spaces to width terminal cells
func pad(s string, width int) string {
	if n := width - ansi.StringWidth(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}

	return s
}

// formatDuration renders m:ss, or h:mm:ss from one hour up
func formatDuration(d time.Duration) string {
	d = max(0, d).Round(time.Second)

	h := int(d / time.Hour)
	mins := int(d/time.Minute) % 60
	secs := int(d/time.Second) % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mins, secs)
	}

	return fmt.Sprintf("%d:%02d", mins, secs)
}

// progressBar renders position within duration as a fixed width bar
func progressBar(pos, duration time.Duration, width int) string {
	filled := 0
	if duration > 0 {
		filled = int(int64(width) * int64(min(max(0, pos), duration)) / int64(duration))
	}

	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}
