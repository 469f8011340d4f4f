// ABOUTME: Event handling and state updates for the TUI
// ABOUTME: Implements the Bubble Tea Update() function and turns key presses into player intents

package tui

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"cover-player/engine"
	"cover-player/library"
	"cover-player/player"
	"cover-player/playlist"
)

// Update handles messages and updates the model
//
//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.debugf("[PANIC] Update panic: %v", r)
			m.debugf("[PANIC] Stack trace: %s", string(debug.Stack()))
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.viewport.YOffset = 0
		m.updateViewportContent()
		m.ensureCursorVisible()

		return m, nil

	case engineEventMsg:
		advanced, err := m.player.HandleEvent(msg.ev)
		if err != nil {
			m.setStatusMsg(describeError(player.TrackEnded, err))
		} else if advanced && msg.ev.Status == engine.InvalidMedia {
			m.setStatusMsg(fmt.Sprintf("Cannot play %s, skipped", library.BaseName(msg.ev.Path)))
		}

		return m, tea.Batch(m.sync(), waitForEngineEvent(m.events))

	case engineClosedMsg:
		m.debugf("[TUI] engine event channel closed")

		return m, nil

	case dirChangeMsg:
		m.debugf("[TUI] directory %s changed, rescanning", m.snap.Directory)
		cmd := m.dispatch(player.Intent{Kind: player.Refresh})

		return m, tea.Batch(cmd, waitForDirChange(m.watcher))

	case tagsLoadedMsg:
		for _, info := range msg.infos {
			m.infos[info.Path] = info
		}

		m.updateViewportContent()

		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeOpen:
			return m.handleOpenKey(msg)
		case modeDevices:
			return m.handleDeviceKey(msg)
		default:
			return m.handleBrowseKey(msg)
		}
	}

	return m, nil
}

//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (m model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m.quit()

	case key.Matches(msg, keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, keys.PageUp):
		m.moveCursor(-pageJumpSize)
	case key.Matches(msg, keys.PageDown):
		m.moveCursor(pageJumpSize)
	case key.Matches(msg, keys.Home):
		m.moveCursor(-len(m.snap.Tracks))
	case key.Matches(msg, keys.End):
		m.moveCursor(len(m.snap.Tracks))

	case key.Matches(msg, keys.Play):
		if len(m.snap.Tracks) == 0 {
			m.setStatusMsg("Playlist is empty, press o to open a file")

			return m, nil
		}

		return m, m.dispatch(player.Intent{Kind: player.Select, Path: m.snap.Tracks[m.cursorPos]})

	case key.Matches(msg, keys.Pause):
		return m, m.dispatch(player.Intent{Kind: player.TogglePause})
	case key.Matches(msg, keys.Stop):
		return m, m.dispatch(player.Intent{Kind: player.Stop})
	case key.Matches(msg, keys.Next):
		return m, m.dispatch(player.Intent{Kind: player.Next})
	case key.Matches(msg, keys.Previous):
		return m, m.dispatch(player.Intent{Kind: player.Previous})
	case key.Matches(msg, keys.Back):
		return m, m.dispatch(player.Intent{Kind: player.Seek, Offset: -m.opts.SeekStep})
	case key.Matches(msg, keys.Forward):
		return m, m.dispatch(player.Intent{Kind: player.Seek, Offset: m.opts.SeekStep})
	case key.Matches(msg, keys.Louder):
		return m, m.dispatch(player.Intent{Kind: player.Volume, Volume: min(1, m.snap.Volume+m.opts.VolumeStep)})
	case key.Matches(msg, keys.Quieter):
		return m, m.dispatch(player.Intent{Kind: player.Volume, Volume: max(0, m.snap.Volume-m.opts.VolumeStep)})
	case key.Matches(msg, keys.Refresh):
		err := m.player.Dispatch(player.Intent{Kind: player.Refresh})
		cmd := m.sync()

		if err != nil {
			m.setStatusMsg(describeError(player.Refresh, err))
		} else {
			m.setStatusMsg(fmt.Sprintf("Rescanned: %d tracks", len(m.snap.Tracks)))
		}

		return m, cmd

	case key.Matches(msg, keys.Export):
		return m, m.export()

	case key.Matches(msg, keys.Open):
		m.mode = modeOpen
		m.input.SetValue(openPrefill(m.snap))
		m.input.CursorEnd()

		return m, tea.Batch(m.input.Focus(), textinput.Blink)

	case key.Matches(msg, keys.Devices):
		m.openDevicePicker()
	}

	return m, nil
}

//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (m model) handleOpenKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m.quit()

	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input.Blur()

		return m, nil

	case tea.KeyEnter:
		m.mode = modeBrowse
		m.input.Blur()

		path := strings.TrimSpace(m.input.Value())
		if path == "" {
			return m, nil
		}

		return m, m.dispatch(player.Intent{Kind: player.Open, Path: path})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (m model) handleDeviceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m.quit()

	case key.Matches(msg, keys.Cancel), key.Matches(msg, keys.Devices):
		m.mode = modeBrowse

	case key.Matches(msg, keys.Up):
		m.deviceCursor = max(0, m.deviceCursor-1)
	case key.Matches(msg, keys.Down):
		m.deviceCursor = min(len(m.devices)-1, m.deviceCursor+1)

	case key.Matches(msg, keys.Play):
		m.mode = modeBrowse
		dev := m.devices[m.deviceCursor]

		err := m.player.Dispatch(player.Intent{Kind: player.DeviceChanged, Device: dev.Description})
		cmd := m.sync()

		if err != nil {
			m.setStatusMsg(describeError(player.DeviceChanged, err))
		} else {
			m.setStatusMsg("Output: " + dev.Description)
		}

		return m, cmd
	}

	return m, nil
}

// dispatch sends one intent and refreshes the view from the player
func (m *model) dispatch(in player.Intent) tea.Cmd {
	if err := m.player.Dispatch(in); err != nil {
		m.debugf("[TUI] %s failed: %v", in.Kind, err)
		m.setStatusMsg(describeError(in.Kind, err))
	}

	return m.sync()
}

//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (m model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.shutdownErr = m.player.Dispatch(player.Intent{
		Kind:     player.Shutdown,
		Geometry: formatGeometry(m.width, m.height),
	})

	return m, tea.Quit
}

func (m *model) moveCursor(delta int) {
	if len(m.snap.Tracks) == 0 {
		return
	}

	m.cursorPos = max(0, min(m.cursorPos+delta, len(m.snap.Tracks)-1))
	m.updateViewportContent()
	m.ensureCursorVisible()
}

func (m *model) export() tea.Cmd {
	if len(m.snap.Tracks) == 0 {
		m.setStatusMsg("Nothing to export")

		return nil
	}

	if err := m.player.Dispatch(player.Intent{Kind: player.Export}); err != nil {
		m.setStatusMsg(describeError(player.Export, err))

		return nil
	}

	m.setStatusMsg(fmt.Sprintf("Exported %d tracks to %s/playlist.m3u8", len(m.snap.Tracks), m.snap.Directory))

	return nil
}

func (m *model) openDevicePicker() {
	devices, err := m.player.Devices()
	if err != nil {
		m.setStatusMsg(fmt.Sprintf("Cannot list output devices: %v", err))

		return
	}

	if len(devices) == 0 {
		m.setStatusMsg("No output devices")

		return
	}

	m.devices = devices
	m.deviceCursor = 0

	if dev, ok := engine.FindDevice(devices, m.snap.Device); ok {
		for i, d := range devices {
			if d == dev {
				m.deviceCursor = i
			}
		}
	}

	m.mode = modeDevices
}

// openPrefill suggests the playlist directory as the start of a path
func openPrefill(snap player.Snapshot) string {
	if snap.Directory == "" {
		return ""
	}

	return strings.TrimSuffix(snap.Directory, "/") + "/"
}

// describeError turns dispatcher errors into status bar text
func describeError(kind player.IntentKind, err error) string {
	switch {
	case errors.Is(err, playlist.ErrEmptyPlaylist):
		return "Playlist is empty"
	case errors.Is(err, library.ErrNotFound):
		return fmt.Sprintf("Not found: %v", err)
	case errors.Is(err, player.ErrAllTracksFailed):
		return "No playable track in playlist, stopped"
	default:
		return fmt.Sprintf("%s failed: %v", kind, err)
	}
}
