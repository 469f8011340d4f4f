// ABOUTME: Defines TrackInfo and tag reading directly from audio files
// ABOUTME: Reads title, artist and album for display, in parallel on a worker pool

package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"cover-player/pool"
)

// TrackInfo is display metadata for one playlist entry
type TrackInfo struct {
	Path   string // Normalized audio path
	Title  string // Tag title, or the file name without extension
	Artist string // Empty if not tagged
	Album  string // Empty if not tagged
}

// ReadTrackInfo reads the tags of a single file.
// The title falls back to the base name when the file has no usable tags.
func ReadTrackInfo(path string) (TrackInfo, error) {
	info := TrackInfo{
		Path:  path,
		Title: strings.TrimSuffix(BaseName(path), filepath.Ext(path)),
	}

	file, err := os.Open(filepath.FromSlash(path))
	if err != nil {
		return info, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return info, fmt.Errorf("failed to read metadata: %w", err)
	}

	if title := strings.TrimSpace(metadata.Title()); title != "" {
		info.Title = title
	}

	info.Artist = strings.TrimSpace(metadata.Artist())
	info.Album = strings.TrimSpace(metadata.Album())

	return info, nil
}

// ReadAllTrackInfo reads tags for every path using workers goroutines
// (0 = NumCPU). The result is index-aligned with paths; files whose tags
// cannot be read get the base-name fallback.
func ReadAllTrackInfo(paths []string, workers int) []TrackInfo {
	infos := make([]TrackInfo, len(paths))
	if len(paths) == 0 {
		return infos
	}

	p := pool.NewWorkerPool(workers, len(paths))
	defer p.Close()

	for i, path := range paths {
		p.Submit(func() {
			// Errors already produce a usable fallback
			infos[i], _ = ReadTrackInfo(path)
		})
	}

	p.Wait()

	return infos
}

// String returns "Artist - Title" or just the title when untagged
func (t TrackInfo) String() string {
	if t.Artist == "" {
		return t.Title
	}

	return t.Artist + " - " + t.Title
}
