// ABOUTME: Directory scanning for audio files with phonetic ordering
// ABOUTME: Lists immediate audio entries of a directory and sorts them by transliterated name

// Package library finds audio files on disk and derives everything the player
// shows about them: playlist order, companion images and tag information.
package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned when a directory or a selected path does not exist
var ErrNotFound = errors.New("not found")

// AudioExtensions lists the playable extensions, lower case with leading dot
var AudioExtensions = []string{".mp3", ".wav", ".flac", ".ogg", ".m4a"}

// IsAudio reports whether path has one of AudioExtensions (case-insensitive)
func IsAudio(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range AudioExtensions {
		if ext == allowed {
			return true
		}
	}

	return false
}

// NormalizePath returns the absolute, cleaned path with forward slashes
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}

	return filepath.ToSlash(abs)
}

// BaseName returns the last element of a forward- or back-slash path
func BaseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}

	return path
}

// Dir returns everything before the last path separator of a normalized path
func Dir(path string) string {
	return filepath.ToSlash(filepath.Dir(filepath.FromSlash(path)))
}

// Scanner lists audio files in a directory in phonetic order
type Scanner struct {
	sortKey SortKeyFunc
}

// NewScanner creates a scanner using the given sort key strategy.
// A nil strategy falls back to PinyinKey.
func NewScanner(sortKey SortKeyFunc) *Scanner {
	if sortKey == nil {
		sortKey = PinyinKey
	}

	return &Scanner{sortKey: sortKey}
}

// Scan returns the audio files directly inside dir, ordered by sort key of
// their base name with ties broken by the name itself. Subdirectories are
// never descended into. A missing directory yields ErrNotFound; an existing
// directory without audio files yields an empty slice.
func (s *Scanner) Scan(dir string) ([]string, error) {
	root := NormalizePath(dir)

	info, err := os.Stat(filepath.FromSlash(root))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("directory %s: %w", root, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("directory %s: %w", root, ErrNotFound)
	}

	entries, err := os.ReadDir(filepath.FromSlash(root))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	type keyed struct {
		path string
		name string
		key  string
	}

	files := make([]keyed, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !IsAudio(name) {
			continue
		}

		full := strings.TrimSuffix(root, "/") + "/" + name

		// Symlinks are followed only to find out whether they point at a directory
		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(filepath.FromSlash(full))
			if err != nil || target.IsDir() {
				continue
			}
		}

		files = append(files, keyed{path: full, name: name, key: s.sortKey(name)})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].key != files[j].key {
			return files[i].key < files[j].key
		}

		return files[i].name < files[j].name
	})

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}

	return paths, nil
}
