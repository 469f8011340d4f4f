// ABOUTME: Persisted session state: last directory, device, playlist and current file
// ABOUTME: JSON store with default fallback on missing or corrupt files and atomic rewrites

// Package settings persists the player's session state between runs.
// The on-disk format is a small JSON object; a missing or unreadable file
// always yields the zero record instead of an error.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCorrupt marks a settings file that exists but cannot be decoded.
// It never leaves this package: Load recovers by returning defaults.
var ErrCorrupt = errors.New("settings file is corrupt")

// Settings is the record written to disk after every mutation
type Settings struct {
	LastDirectory   string   `json:"last_dir"`
	LastDeviceName  string   `json:"last_device_desc"`
	PlaylistMemory  []string `json:"playlist_memory"`
	CurrentFilePath *string  `json:"current_file_path"`
	WindowGeometry  []byte   `json:"window_geometry"` // opaque, base64 on disk
}

// Defaults returns the record used when nothing has been persisted yet
func Defaults() Settings {
	return Settings{
		PlaylistMemory: []string{},
	}
}

// Current returns the current file path or "" when none is set
func (s Settings) Current() string {
	if s.CurrentFilePath == nil {
		return ""
	}

	return *s.CurrentFilePath
}

// SetCurrent stores path as the current file; "" clears it
func (s *Settings) SetCurrent(path string) {
	if path == "" {
		s.CurrentFilePath = nil

		return
	}

	s.CurrentFilePath = &path
}

// Store reads and writes Settings at a fixed path
type Store struct {
	path   string
	debugf func(string, ...interface{})
}

// NewStore creates a store for the given file path.
// debugf may be nil.
func NewStore(path string, debugf func(string, ...interface{})) *Store {
	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}

	return &Store{path: path, debugf: debugf}
}

// DefaultPath returns settings.json under the user config directory
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "settings.json"
	}

	return filepath.Join(dir, "cover-player", "settings.json")
}

// Path returns the file backing this store
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file. It never fails: missing, unreadable or
// malformed files all produce Defaults().
func (s *Store) Load() Settings {
	settings, err := s.load()
	if err != nil {
		s.debugf("[SETTINGS] Falling back to defaults: %v", err)

		return Defaults()
	}

	return settings
}

// load is Load with the failure classification kept for callers that care
func (s *Store) load() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}

		return Defaults(), fmt.Errorf("failed to read settings file: %w", err)
	}

	settings := Defaults()
	if err := json.Unmarshal(data, &settings); err != nil {
		return Defaults(), fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}

	if settings.PlaylistMemory == nil {
		settings.PlaylistMemory = []string{}
	}

	return settings, nil
}

// Save writes the full record, replacing the previous file atomically.
// The data goes to a temp file in the same directory which is then renamed
// over the target, so a crash mid-write leaves the old file intact.
func (s *Store) Save(settings Settings) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	if settings.PlaylistMemory == nil {
		settings.PlaylistMemory = []string{}
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}

	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("failed to write settings: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("failed to sync settings: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close settings file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}

	s.debugf("[SETTINGS] Saved %d playlist entries to %s", len(settings.PlaylistMemory), s.path)

	return nil
}
