// ABOUTME: Handles reading and writing M3U8 playlist files
// ABOUTME: Exports the current playlist to disk and reads exported playlists back

// Package playlist owns the ordered list of tracks the player cycles through.
// It provides the navigation cursor used by the player and M3U8 import/export
// of the list itself.
package playlist

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cover-player/library"
)

// unknownLength is the #EXTINF duration for tracks whose length is not known
const unknownLength = -1

// ReadPlaylist reads an M3U8 playlist file and returns its track paths.
// Relative entries are resolved against the playlist's directory and all
// paths are returned with forward slashes.
func ReadPlaylist(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open playlist: %w", err)
	}

	defer func() {
		_ = file.Close() // Explicitly ignore error for read-only file
	}()

	baseDir := filepath.Dir(path)

	var tracks []string

	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !filepath.IsAbs(filepath.FromSlash(line)) {
			line = filepath.Join(baseDir, filepath.FromSlash(line))
		}

		tracks = append(tracks, filepath.ToSlash(line))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading playlist: %w", err)
	}

	return tracks, nil
}

// WritePlaylist writes tracks to an extended M3U8 playlist file, one
// #EXTINF record ("Artist - Title") before each path
// Creates a backup (.bak) of the existing file before overwriting
func WritePlaylist(path string, tracks []library.TrackInfo) (err error) {
	if _, statErr := os.Stat(path); statErr == nil {
		backupPath := path + ".bak"
		if err := os.Rename(path, backupPath); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close playlist file: %w", closeErr)
		}
	}()

	writer := bufio.NewWriter(file)
	if _, err := writer.WriteString("#EXTM3U\n"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, track := range tracks {
		if _, err := fmt.Fprintf(writer, "#EXTINF:%d,%s\n%s\n", unknownLength, track, track.Path); err != nil {
			return fmt.Errorf("failed to write track: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	return nil
}
