// ABOUTME: Watches the playlist directory for added, removed or renamed audio files
// ABOUTME: Changes are debounced into a single dirChangeMsg that triggers a Refresh intent

package tui

import (
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"cover-player/library"
)

// dirChangeDebounce lets a burst of copies or deletes settle into one rescan
const dirChangeDebounce = 300 * time.Millisecond

// dirWatcher follows one directory at a time
type dirWatcher struct {
	fs     *fsnotify.Watcher
	dir    string
	debugf func(string, ...interface{})
}

func newDirWatcher(debugf func(string, ...interface{})) (*dirWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}

	return &dirWatcher{fs: fs, debugf: debugf}, nil
}

// Watch moves the watch to dir; an empty dir stops watching
func (w *dirWatcher) Watch(dir string) error {
	if dir == w.dir {
		return nil
	}

	if w.dir != "" {
		if err := w.fs.Remove(filepath.FromSlash(w.dir)); err != nil {
			w.debugf("[WATCHER] Remove %s: %v", w.dir, err)
		}
	}

	w.dir = ""

	if dir == "" {
		return nil
	}

	if err := w.fs.Add(filepath.FromSlash(dir)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.dir = dir

	return nil
}

func (w *dirWatcher) Close() error {
	return w.fs.Close()
}

// waitForDirChange returns a command that waits for playlist-relevant file system events
func waitForDirChange(w *dirWatcher) tea.Cmd {
	if w == nil {
		return nil
	}

	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.fs.Events:
				if !ok {
					return nil
				}

				if !affectsPlaylist(event) {
					continue
				}

				w.debugf("[WATCHER] %s", event)
				time.Sleep(dirChangeDebounce)
				w.drain()

				return dirChangeMsg{}
			case err, ok := <-w.fs.Errors:
				if !ok {
					return nil
				}
				// Log error but continue watching
				w.debugf("[WATCHER] Error: %v", err)
			}
		}
	}
}

// drain discards events queued during the debounce
func (w *dirWatcher) drain() {
	for {
		select {
		case _, ok := <-w.fs.Events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// affectsPlaylist reports whether an event can change the scan result.
// Writes to existing files cannot.
func affectsPlaylist(event fsnotify.Event) bool {
	if !library.IsAudio(event.Name) {
		return false
	}

	return event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
