// ABOUTME: Player dispatcher: the one object that turns intents into playlist and session calls
// ABOUTME: Restores state at start-up and persists settings after every mutation and at shutdown

// Package player wires the playlist controller, the playback session and the
// settings store together. It is constructed once at start-up and driven by
// Dispatch from a single goroutine, so it holds no locks.
package player

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cover-player/engine"
	"cover-player/library"
	"cover-player/playlist"
	"cover-player/session"
	"cover-player/settings"
)

// ErrAllTracksFailed is returned when every track in a row failed to play
var ErrAllTracksFailed = errors.New("no playable track in playlist")

// Store persists settings
type Store interface {
	Load() settings.Settings
	Save(s settings.Settings) error
}

// Options configures start-up behavior
type Options struct {
	AutoplayOnStart bool
	Volume          float64
	TagWorkers      int // Tag readers for Export, 0 = NumCPU
	Debugf          func(format string, args ...interface{})
}

// Snapshot is a read-only view of the player for rendering
type Snapshot struct {
	Tracks    []string
	Cursor    int
	Directory string
	Current   string
	Image     string
	State     engine.PlaybackState
	Position  time.Duration
	Duration  time.Duration
	Volume    float64
	Device    string
	Geometry  []byte
	SaveErr   error
}

// Player dispatches intents
type Player struct {
	store    Store
	engine   engine.Engine
	playlist *playlist.Controller
	session  *session.Session
	opts     Options
	debugf   func(string, ...interface{})

	settings settings.Settings
	failures int // consecutive tracks that ended in InvalidMedia
	saveErr  error
}

// New creates a player over the given engine and scanner
func New(store Store, eng engine.Engine, scanner playlist.Scanner, opts Options) *Player {
	debugf := opts.Debugf
	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}

	return &Player{
		store:    store,
		engine:   eng,
		playlist: playlist.NewController(scanner),
		session:  session.New(eng, nil, debugf),
		opts:     opts,
		debugf:   debugf,
		settings: settings.Defaults(),
	}
}

// Start loads settings, rebinds the remembered device and restores the
// remembered playlist. The remembered track is played when autoplay is on
// and it is still part of that playlist.
func (p *Player) Start() error {
	p.settings = p.store.Load()
	p.session.SetVolume(p.opts.Volume)

	devices, err := p.engine.Devices()
	if err != nil {
		p.debugf("player: device enumeration failed: %v", err)
	} else if dev, ok := engine.FindDevice(devices, p.settings.LastDeviceName); ok {
		if err := p.engine.SetDevice(dev); err != nil {
			p.debugf("player: restoring device %q failed: %v", dev.Description, err)
		}
	}

	current := p.settings.Current()
	p.playlist.Restore(p.settings.PlaylistMemory, current)
	p.debugf("player: restored %d tracks, cursor %d", p.playlist.Len(), p.playlist.Cursor())

	if p.playlist.Cursor() < 0 {
		return nil
	}

	if p.opts.AutoplayOnStart {
		return p.play(current)
	}

	return p.session.Resume(current, 0, engine.Stopped)
}

// Dispatch performs one intent. Intents that change persisted state save
// settings afterwards, whether or not they succeeded.
func (p *Player) Dispatch(in Intent) error {
	p.debugf("player: %s %s", in.Kind, in.Path)

	var err error

	switch in.Kind {
	case Open:
		err = p.open(in.Path)
	case Select:
		err = p.selectPath(in.Path)
	case Next:
		err = p.step(p.playlist.Next)
	case Previous:
		err = p.step(p.playlist.Previous)
	case TrackEnded:
		err = p.trackEnded(in.Event)
	case Refresh:
		err = p.refresh()
	case DeviceChanged:
		err = p.changeDevice(in.Device)
	case TogglePause:
		return p.session.TogglePause()
	case Stop:
		p.session.Stop()

		return nil
	case Seek:
		return p.session.Seek(in.Offset)
	case Volume:
		p.session.SetVolume(in.Volume)

		return nil
	case Export:
		return p.export(in.Path)
	case Shutdown:
		return p.shutdown(in.Geometry)
	default:
		return fmt.Errorf("unknown intent %v", in.Kind)
	}

	p.persist()

	return err
}

// HandleEvent turns engine events that finish the current track into a
// TrackEnded intent. It returns true when it dispatched one.
func (p *Player) HandleEvent(ev engine.Event) (bool, error) {
	if !p.session.HandleEvent(ev) {
		return false, nil
	}

	return true, p.Dispatch(Intent{Kind: TrackEnded, Event: ev})
}

// Snapshot returns the state needed to draw the player
func (p *Player) Snapshot() Snapshot {
	return Snapshot{
		Tracks:    p.playlist.Tracks(),
		Cursor:    p.playlist.Cursor(),
		Directory: p.playlist.Directory(),
		Current:   p.session.CurrentPath(),
		Image:     p.session.ImagePath(),
		State:     p.session.State(),
		Position:  p.session.Position(),
		Duration:  p.session.Duration(),
		Volume:    p.session.Volume(),
		Device:    p.engine.Device().Description,
		Geometry:  p.settings.WindowGeometry,
		SaveErr:   p.saveErr,
	}
}

// Devices lists the output devices the user can pick from
func (p *Player) Devices() ([]engine.Device, error) {
	return p.engine.Devices()
}

// Settings returns the record that would be persisted now
func (p *Player) Settings() settings.Settings {
	return p.settings
}

// open loads the directory containing path and plays it. Directories are
// loaded without playing and M3U8 files replace the playlist.
func (p *Player) open(path string) error {
	norm := library.NormalizePath(path)

	info, err := os.Stat(filepath.FromSlash(norm))
	if err != nil {
		return fmt.Errorf("file %s: %w", norm, library.ErrNotFound)
	}

	if info.IsDir() {
		if err := p.playlist.LoadDirectory(norm); err != nil {
			return err
		}

		p.settings.LastDirectory = norm

		return nil
	}

	if isPlaylistFile(norm) {
		return p.importPlaylist(norm)
	}

	dir := library.Dir(norm)
	if err := p.playlist.LoadDirectory(dir); err != nil {
		return err
	}

	p.settings.LastDirectory = dir

	// Files outside the allow-list still play, with no cursor
	if _, err := p.playlist.SelectByPath(norm); err != nil {
		p.playlist.Deselect()
	}

	p.failures = 0

	return p.play(norm)
}

func (p *Player) importPlaylist(path string) error {
	tracks, err := playlist.ReadPlaylist(path)
	if err != nil {
		return err
	}

	p.playlist.Restore(tracks, "")
	p.settings.LastDirectory = library.Dir(path)

	if p.playlist.Len() == 0 {
		return nil
	}

	return p.step(p.playlist.Next)
}

func (p *Player) selectPath(path string) error {
	if _, err := p.playlist.SelectByPath(path); err != nil {
		return err
	}

	p.failures = 0

	return p.play(path)
}

func (p *Player) step(move func() (string, error)) error {
	path, err := move()
	if err != nil {
		return err
	}

	p.failures = 0

	return p.play(path)
}

// trackEnded advances to the next track. A run of undecodable tracks as
// long as the playlist stops playback.
func (p *Player) trackEnded(ev engine.Event) error {
	if ev.Kind == engine.MediaStatusChanged && ev.Status == engine.InvalidMedia {
		p.failures++
	} else {
		p.failures = 0
	}

	if p.failures >= max(1, p.playlist.Len()) {
		p.debugf("player: %d consecutive failures, stopping", p.failures)
		p.failures = 0
		p.session.Stop()

		return ErrAllTracksFailed
	}

	path, err := p.playlist.Next()
	if err != nil {
		p.session.Stop()

		return err
	}

	return p.play(path)
}

// refresh rescans the directory of the current track (or the last used
// directory). A surviving current track is reloaded at its offset in its
// playing or paused state; a vanished one is stopped and forgotten.
func (p *Player) refresh() error {
	current := p.session.CurrentPath()

	dir := p.settings.LastDirectory
	if current != "" {
		dir = library.Dir(current)
	}

	if dir == "" {
		return nil
	}

	state := p.session.State()

	var offset time.Duration
	if state != engine.Stopped {
		offset = p.session.Position()
	}

	if err := p.playlist.LoadDirectory(dir); err != nil {
		return err
	}

	if current == "" {
		return nil
	}

	if _, err := p.playlist.SelectByPath(current); err != nil {
		p.debugf("player: %s vanished on refresh", current)
		p.session.Clear()
		p.playlist.Deselect()
		p.settings.SetCurrent("")

		return nil
	}

	return p.session.Resume(current, offset, state)
}

func (p *Player) changeDevice(description string) error {
	devices, err := p.engine.Devices()
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}

	dev, ok := engine.FindDevice(devices, description)
	if !ok {
		return fmt.Errorf("device %q: %w", description, library.ErrNotFound)
	}

	p.settings.LastDeviceName = dev.Description

	return p.session.SwitchDevice(dev)
}

func (p *Player) export(path string) error {
	if path == "" {
		path = filepath.Join(filepath.FromSlash(p.playlist.Directory()), "playlist.m3u8")
	}

	infos := library.ReadAllTrackInfo(p.playlist.Tracks(), p.opts.TagWorkers)

	if err := playlist.WritePlaylist(path, infos); err != nil {
		return fmt.Errorf("failed to export playlist: %w", err)
	}

	return nil
}

func (p *Player) shutdown(geometry []byte) error {
	if geometry != nil {
		p.settings.WindowGeometry = geometry
	}

	p.persist()

	if err := p.engine.Close(); err != nil {
		return fmt.Errorf("failed to close engine: %w", err)
	}

	return p.saveErr
}

func (p *Player) play(path string) error {
	p.settings.SetCurrent(path)

	if _, err := p.session.Open(path); err != nil {
		return err
	}

	return nil
}

// persist snapshots state into settings and saves; failures are kept for
// display and never abort the intent
func (p *Player) persist() {
	p.settings.PlaylistMemory = p.playlist.Tracks()

	p.saveErr = p.store.Save(p.settings)
	if p.saveErr != nil {
		p.debugf("player: saving settings failed: %v", p.saveErr)
	}
}

func isPlaylistFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))

	return ext == ".m3u" || ext == ".m3u8"
}
