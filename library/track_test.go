// ABOUTME: Tests for tag reading
// ABOUTME: Verifies the file-name fallback and index alignment of parallel reads

package library

import (
	"path/filepath"
	"testing"
)

func TestReadTrackInfoFallsBackToFileName(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Untagged Song.mp3")

	info, err := ReadTrackInfo(filepath.ToSlash(filepath.Join(dir, "Untagged Song.mp3")))
	if err == nil {
		t.Error("Expected metadata error for empty file")
	}

	if info.Title != "Untagged Song" {
		t.Errorf("Title = %q, want %q", info.Title, "Untagged Song")
	}

	if info.String() != "Untagged Song" {
		t.Errorf("String = %q", info.String())
	}
}

func TestReadTrackInfoMissingFile(t *testing.T) {
	info, err := ReadTrackInfo("/nonexistent/dir/gone.flac")
	if err == nil {
		t.Error("Expected error for missing file")
	}

	if info.Title != "gone" {
		t.Errorf("Title = %q, want gone", info.Title)
	}
}

func TestReadAllTrackInfoAligned(t *testing.T) {
	dir := t.TempDir()
	names := []string{"a.mp3", "b.ogg", "c.flac", "d.wav"}
	touch(t, dir, names...)

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.ToSlash(filepath.Join(dir, n))
	}

	infos := ReadAllTrackInfo(paths, 2)
	if len(infos) != len(paths) {
		t.Fatalf("Expected %d infos, got %d", len(paths), len(infos))
	}

	for i, info := range infos {
		if info.Path != paths[i] {
			t.Errorf("infos[%d].Path = %q, want %q", i, info.Path, paths[i])
		}
	}

	if got := ReadAllTrackInfo(nil, 0); len(got) != 0 {
		t.Errorf("Expected empty result for no paths, got %v", got)
	}
}

func TestTrackInfoString(t *testing.T) {
	info := TrackInfo{Title: "Song", Artist: "Band"}
	if info.String() != "Band - Song" {
		t.Errorf("String = %q", info.String())
	}
}
