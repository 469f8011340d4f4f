// ABOUTME: Terminal UI model and core state management
// ABOUTME: Bubble Tea model over the player dispatcher, fed by engine events and a directory watcher

// Package tui provides the interactive terminal front end of cover-player.
package tui

import (
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cover-player/engine"
	"cover-player/library"
	"cover-player/player"
)

// Layout constants for UI dimensions
const (
	nowPlayingWidth = 42 // Left panel width for the current track
	panelPadding    = 2  // Horizontal spacing between panels

	// UI chrome heights (elements that reduce available viewport space)
	titleHeight     = 2 // Panel title bars
	headerHeight    = 1 // Column headers for playlist
	statusBarHeight = 1 // Bottom status bar
	helpHeight      = 1 // Help text line
	spacingHeight   = 2 // Vertical spacing between elements
	totalUIChrome   = titleHeight + headerHeight + statusBarHeight + helpHeight + spacingHeight

	minViewportWidth  = 20
	minViewportHeight = 5
)

const (
	pageJumpSize          = 10
	statusMessageDuration = 5 * time.Second
)

// mode selects which keymap is active
type mode int

const (
	modeBrowse  mode = iota // Playlist navigation and transport keys
	modeOpen                // Path prompt for the Open intent
	modeDevices             // Output device picker
)

// Messages produced by commands
type (
	engineEventMsg  struct{ ev engine.Event }
	engineClosedMsg struct{}
	dirChangeMsg    struct{}
	tagsLoadedMsg   struct{ infos []library.TrackInfo }
)

// model holds the TUI state
type model struct {
	player  Player
	events  <-chan engine.Event
	watcher *dirWatcher
	opts    Options
	debugf  func(string, ...interface{})

	snap  player.Snapshot
	infos map[string]library.TrackInfo // Tag metadata by track path

	// UI state
	width        int
	height       int
	quitting     bool
	shutdownErr  error
	statusMsg    string
	statusMsgAge time.Time

	mode         mode
	input        textinput.Model
	devices      []engine.Device
	deviceCursor int

	// Browse cursor, independent of the playing track
	cursorPos int
	viewport  viewport.Model
}

// Key bindings
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Play     key.Binding
	Pause    key.Binding
	Stop     key.Binding
	Next     key.Binding
	Previous key.Binding
	Back     key.Binding
	Forward  key.Binding
	Louder   key.Binding
	Quieter  key.Binding
	Open     key.Binding
	Devices  key.Binding
	Refresh  key.Binding
	Export   key.Binding
	Cancel   key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("pgdn", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("G", "bottom"),
	),
	Play: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "play"),
	),
	Pause: key.NewBinding(
		key.WithKeys(" ", "space"),
		key.WithHelp("space", "pause"),
	),
	Stop: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "stop"),
	),
	Next: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "next"),
	),
	Previous: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "prev"),
	),
	Back: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←", "rewind"),
	),
	Forward: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→", "forward"),
	),
	Louder: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "louder"),
	),
	Quieter: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "quieter"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open"),
	),
	Devices: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "output"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rescan"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	playlistHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("10"))

	playingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("240")).
			Foreground(lipgloss.Color("15"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// Run starts the TUI and blocks until the user quits. The player is shut
// down on exit, also when the program ends abnormally.
func Run(p Player, events <-chan engine.Event, opts Options) error {
	var watcher *dirWatcher

	if opts.WatchDirectory {
		w, err := newDirWatcher(opts.Debugf)
		if err != nil {
			log.Printf("Directory watching disabled: %v", err)
		} else {
			watcher = w
			defer w.Close()
		}
	}

	m := initModel(p, events, watcher, opts)

	prog := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := prog.Run()

	fm, ok := finalModel.(model)
	if !ok || !fm.quitting {
		fm.shutdownErr = p.Dispatch(player.Intent{Kind: player.Shutdown})
	}

	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if fm.shutdownErr != nil {
		log.Printf("Shutdown: %v", fm.shutdownErr)
	}

	return nil
}

// initModel creates the initial model from the player's current state
func initModel(p Player, events <-chan engine.Event, watcher *dirWatcher, opts Options) model {
	debugf := opts.Debugf
	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}

	input := textinput.New()
	input.Prompt = "Open: "
	input.Placeholder = "file, directory or .m3u8"
	input.CharLimit = 4096

	m := model{
		player:   p,
		events:   events,
		watcher:  watcher,
		opts:     opts,
		debugf:   debugf,
		infos:    map[string]library.TrackInfo{},
		input:    input,
		viewport: viewport.New(0, 0), // Width and height set on first WindowSizeMsg
	}

	m.snap = p.Snapshot()
	m.cursorPos = max(0, m.snap.Cursor)

	// Lay out with the remembered size until the terminal reports its own
	if w, h, ok := parseGeometry(m.snap.Geometry); ok {
		m.resize(w, h)
	}

	m.watchDirectory()

	return m
}

// Init starts the long-running commands
func (m model) Init() tea.Cmd {
	return tea.Batch(
		waitForEngineEvent(m.events),
		waitForDirChange(m.watcher),
		m.loadTags(m.snap.Tracks),
		tea.EnterAltScreen,
	)
}

// waitForEngineEvent waits for the next engine event
func waitForEngineEvent(events <-chan engine.Event) tea.Cmd {
	if events == nil {
		return nil
	}

	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return engineClosedMsg{}
		}

		return engineEventMsg{ev: ev}
	}
}

// loadTags reads display metadata for tracks that have none cached yet
func (m *model) loadTags(tracks []string) tea.Cmd {
	var missing []string

	for _, path := range tracks {
		if _, ok := m.infos[path]; !ok {
			missing = append(missing, path)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	workers := m.opts.TagWorkers

	return func() tea.Msg {
		return tagsLoadedMsg{infos: library.ReadAllTrackInfo(missing, workers)}
	}
}

// sync pulls a fresh snapshot after any state change and reacts to what moved
func (m *model) sync() tea.Cmd {
	prev := m.snap
	m.snap = m.player.Snapshot()

	if m.snap.Cursor >= 0 && (m.snap.Cursor != prev.Cursor || m.snap.Current != prev.Current) {
		m.cursorPos = m.snap.Cursor
	}

	m.cursorPos = max(0, min(m.cursorPos, len(m.snap.Tracks)-1))

	if m.snap.SaveErr != nil && prev.SaveErr == nil {
		m.setStatusMsg(fmt.Sprintf("Settings not saved: %v", m.snap.SaveErr))
	}

	if m.snap.Directory != prev.Directory {
		m.watchDirectory()
	}

	m.updateViewportContent()
	m.ensureCursorVisible()

	if slices.Equal(prev.Tracks, m.snap.Tracks) {
		return nil
	}

	return m.loadTags(m.snap.Tracks)
}

func (m *model) watchDirectory() {
	if m.watcher == nil {
		return
	}

	if err := m.watcher.Watch(m.snap.Directory); err != nil {
		m.debugf("[TUI] %v", err)
	}
}

// setStatusMsg sets a transient status message with current timestamp
func (m *model) setStatusMsg(msg string) {
	m.statusMsg = msg
	m.statusMsgAge = time.Now()
}

// ensureCursorVisible keeps the browse cursor on screen with middle-of-screen scrolling
func (m *model) ensureCursorVisible() {
	vm := NewViewportManager(m.viewport.Height, m.cursorPos, len(m.snap.Tracks))
	m.viewport.SetYOffset(vm.CalculateOffset())
}

// resize lays out the panels for a terminal of the given size
func (m *model) resize(width, height int) {
	m.width = width
	m.height = height

	m.viewport.Width = max(minViewportWidth, width-nowPlayingWidth-panelPadding)
	m.viewport.Height = max(minViewportHeight, height-totalUIChrome)
	m.input.Width = max(minViewportWidth, width-len(m.input.Prompt)-2)
}

// ========== Helpers ==========

// formatGeometry encodes the terminal size as the opaque window state
func formatGeometry(width, height int) []byte {
	if width <= 0 || height <= 0 {
		return nil
	}

	return fmt.Appendf(nil, "%dx%d", width, height)
}

// parseGeometry decodes window state written by formatGeometry
func parseGeometry(geometry []byte) (int, int, bool) {
	var width, height int

	if _, err := fmt.Sscanf(string(geometry), "%dx%d", &width, &height); err != nil {
		return 0, 0, false
	}

	if width <= 0 || height <= 0 {
		return 0, 0, false
	}

	return width, height, true
}
