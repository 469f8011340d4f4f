// ABOUTME: Playlist controller owning the ordered track list and the playback cursor
// ABOUTME: Implements directory (re)load with selection preservation and wraparound navigation

package playlist

import (
	"errors"
	"fmt"

	"cover-player/library"
)

// ErrEmptyPlaylist is returned when navigating an empty playlist
var ErrEmptyPlaylist = errors.New("playlist is empty")

// State is the controller's coarse state
type State int

const (
	Empty  State = iota // No tracks loaded
	Loaded              // At least one track
)

// String returns the state name
func (s State) String() string {
	if s == Loaded {
		return "loaded"
	}

	return "empty"
}

// Scanner produces the ordered audio files of a directory
type Scanner interface {
	Scan(dir string) ([]string, error)
}

// Controller owns the playlist and a cursor into it.
// The cursor is -1 when the playlist is empty or nothing is selected.
// The list is only ever replaced wholesale.
type Controller struct {
	scanner Scanner
	tracks  []string
	cursor  int
	dir     string
}

// NewController creates an empty controller
func NewController(scanner Scanner) *Controller {
	return &Controller{scanner: scanner, cursor: -1}
}

// LoadDirectory scans dir and replaces the playlist with the result.
// If the previously current path is still present the cursor follows it,
// otherwise it resets to -1. On scan failure nothing changes.
func (c *Controller) LoadDirectory(dir string) error {
	previous, _ := c.CurrentPath()

	tracks, err := c.scanner.Scan(dir)
	if err != nil {
		return fmt.Errorf("failed to load directory: %w", err)
	}

	c.tracks = tracks
	c.dir = library.NormalizePath(dir)
	c.cursor = c.indexOf(previous)

	return nil
}

// Restore installs a remembered playlist without scanning.
// Duplicates are dropped (first occurrence wins) and the cursor points at
// current when it is part of the list.
func (c *Controller) Restore(paths []string, current string) {
	seen := make(map[string]bool, len(paths))
	tracks := make([]string, 0, len(paths))

	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}

		seen[p] = true
		tracks = append(tracks, p)
	}

	c.tracks = tracks
	c.dir = ""

	if len(tracks) > 0 {
		c.dir = library.Dir(tracks[0])
	}

	c.cursor = c.indexOf(current)
}

// SelectByPath moves the cursor to path and returns its index
func (c *Controller) SelectByPath(path string) (int, error) {
	idx := c.indexOf(path)
	if idx < 0 {
		return -1, fmt.Errorf("track %s: %w", path, library.ErrNotFound)
	}

	c.cursor = idx

	return idx, nil
}

// Next advances the cursor with wraparound and returns the new path
func (c *Controller) Next() (string, error) {
	return c.move(1)
}

// Previous moves the cursor back with wraparound and returns the new path
func (c *Controller) Previous() (string, error) {
	return c.move(-1)
}

// move shifts the cursor by delta using a non-negative modulus, so moving
// back from "no selection" (-1) lands on len-2 just like (-1-1) mod len.
func (c *Controller) move(delta int) (string, error) {
	n := len(c.tracks)
	if n == 0 {
		return "", ErrEmptyPlaylist
	}

	c.cursor = ((c.cursor+delta)%n + n) % n

	return c.tracks[c.cursor], nil
}

// Deselect clears the cursor without touching the list
func (c *Controller) Deselect() {
	c.cursor = -1
}

// CurrentPath returns the path under the cursor
func (c *Controller) CurrentPath() (string, bool) {
	if c.cursor < 0 || c.cursor >= len(c.tracks) {
		return "", false
	}

	return c.tracks[c.cursor], true
}

// Cursor returns the selected index or -1
func (c *Controller) Cursor() int {
	return c.cursor
}

// Tracks returns a copy of the playlist
func (c *Controller) Tracks() []string {
	return append([]string{}, c.tracks...)
}

// Len returns the number of tracks
func (c *Controller) Len() int {
	return len(c.tracks)
}

// Directory returns the directory the playlist was loaded from, if any
func (c *Controller) Directory() string {
	return c.dir
}

// State reports whether any tracks are loaded
func (c *Controller) State() State {
	if len(c.tracks) == 0 {
		return Empty
	}

	return Loaded
}

func (c *Controller) indexOf(path string) int {
	if path == "" {
		return -1
	}

	for i, p := range c.tracks {
		if p == path {
			return i
		}
	}

	return -1
}
