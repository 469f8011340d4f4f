// ABOUTME: Tests for the playlist controller
// ABOUTME: Verifies loading, selection preservation, wraparound navigation and error cases

package playlist

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"cover-player/library"
)

// fakeScanner returns canned directory listings
type fakeScanner struct {
	dirs  map[string][]string
	calls int
}

func (f *fakeScanner) Scan(dir string) ([]string, error) {
	f.calls++

	tracks, ok := f.dirs[dir]
	if !ok {
		return nil, fmt.Errorf("directory %s: %w", dir, library.ErrNotFound)
	}

	return append([]string{}, tracks...), nil
}

func newTestController(tracks ...string) (*Controller, *fakeScanner) {
	scanner := &fakeScanner{dirs: map[string][]string{"/music": tracks}}

	return NewController(scanner), scanner
}

func TestNewControllerIsEmpty(t *testing.T) {
	c, _ := newTestController()

	if c.State() != Empty {
		t.Errorf("Expected Empty state, got %v", c.State())
	}

	if c.Cursor() != -1 {
		t.Errorf("Expected cursor -1, got %d", c.Cursor())
	}

	if _, ok := c.CurrentPath(); ok {
		t.Error("Expected no current path")
	}
}

func TestLoadDirectory(t *testing.T) {
	c, _ := newTestController("/music/a.mp3", "/music/b.mp3")

	if err := c.LoadDirectory("/music"); err != nil {
		t.Fatalf("LoadDirectory failed: %v", err)
	}

	if c.State() != Loaded || c.Len() != 2 {
		t.Errorf("Expected 2 loaded tracks, got %d (%v)", c.Len(), c.State())
	}

	if c.Cursor() != -1 {
		t.Errorf("Expected cursor -1 after fresh load, got %d", c.Cursor())
	}

	if c.Directory() != "/music" {
		t.Errorf("Directory = %q", c.Directory())
	}
}

func TestLoadDirectoryNotFoundKeepsState(t *testing.T) {
	c, _ := newTestController("/music/a.mp3", "/music/b.mp3")
	if err := c.LoadDirectory("/music"); err != nil {
		t.Fatal(err)
	}

	if _, err := c.SelectByPath("/music/b.mp3"); err != nil {
		t.Fatal(err)
	}

	err := c.LoadDirectory("/gone")
	if !errors.Is(err, library.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if c.Len() != 2 || c.Cursor() != 1 {
		t.Errorf("Expected previous state to survive, got len=%d cursor=%d", c.Len(), c.Cursor())
	}
}

func TestReloadPreservesSelection(t *testing.T) {
	c, scanner := newTestController("/music/a.mp3", "/music/c.mp3")
	if err := c.LoadDirectory("/music"); err != nil {
		t.Fatal(err)
	}

	if _, err := c.SelectByPath("/music/c.mp3"); err != nil {
		t.Fatal(err)
	}

	// A new file appears before the selected one
	scanner.dirs["/music"] = []string{"/music/a.mp3", "/music/b.mp3", "/music/c.mp3"}

	if err := c.LoadDirectory("/music"); err != nil {
		t.Fatal(err)
	}

	path, ok := c.CurrentPath()
	if !ok || path != "/music/c.mp3" {
		t.Errorf("Expected cursor on /music/c.mp3, got %q (ok=%v)", path, ok)
	}

	if c.Cursor() != 2 {
		t.Errorf("Expected cursor 2, got %d", c.Cursor())
	}
}

func TestReloadDropsVanishedSelection(t *testing.T) {
	c, scanner := newTestController("/music/a.mp3", "/music/b.mp3")
	if err := c.LoadDirectory("/music"); err != nil {
		t.Fatal(err)
	}

	if _, err := c.SelectByPath("/music/b.mp3"); err != nil {
		t.Fatal(err)
	}

	scanner.dirs["/music"] = []string{"/music/a.mp3"}

	if err := c.LoadDirectory("/music"); err != nil {
		t.Fatal(err)
	}

	if c.Cursor() != -1 {
		t.Errorf("Expected cursor -1 when selection vanished, got %d", c.Cursor())
	}
}

func TestSelectByPath(t *testing.T) {
	c, _ := newTestController("/music/a.mp3", "/music/b.mp3", "/music/c.mp3")
	if err := c.LoadDirectory("/music"); err != nil {
		t.Fatal(err)
	}

	idx, err := c.SelectByPath("/music/b.mp3")
	if err != nil || idx != 1 {
		t.Errorf("SelectByPath = %d, %v; want 1, nil", idx, err)
	}

	_, err = c.SelectByPath("/music/zzz.mp3")
	if !errors.Is(err, library.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if c.Cursor() != 1 {
		t.Errorf("Failed selection moved cursor to %d", c.Cursor())
	}
}

func TestNavigateEmpty(t *testing.T) {
	c, _ := newTestController()

	if _, err := c.Next(); !errors.Is(err, ErrEmptyPlaylist) {
		t.Errorf("Next: expected ErrEmptyPlaylist, got %v", err)
	}

	if _, err := c.Previous(); !errors.Is(err, ErrEmptyPlaylist) {
		t.Errorf("Previous: expected ErrEmptyPlaylist, got %v", err)
	}
}

func TestNextPreviousWraparound(t *testing.T) {
	c, _ := newTestController("/music/a.mp3", "/music/b.mp3", "/music/c.mp3")
	if err := c.LoadDirectory("/music"); err != nil {
		t.Fatal(err)
	}

	if _, err := c.SelectByPath("/music/c.mp3"); err != nil {
		t.Fatal(err)
	}

	path, err := c.Next()
	if err != nil || path != "/music/a.mp3" {
		t.Errorf("Next from last = %q, %v; want /music/a.mp3", path, err)
	}

	path, err = c.Previous()
	if err != nil || path != "/music/c.mp3" {
		t.Errorf("Previous from first = %q, %v; want /music/c.mp3", path, err)
	}
}

func TestNavigateFromNoSelection(t *testing.T) {
	tests := []struct {
		name   string
		tracks []string
		next   bool
		want   int
	}{
		{"next goes to first", []string{"/1", "/2", "/3"}, true, 0},
		{"previous goes to len-2", []string{"/1", "/2", "/3"}, false, 1},
		{"previous single track", []string{"/1"}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(&fakeScanner{})
			c.Restore(tt.tracks, "")

			var err error
			if tt.next {
				_, err = c.Next()
			} else {
				_, err = c.Previous()
			}

			if err != nil {
				t.Fatal(err)
			}

			if c.Cursor() != tt.want {
				t.Errorf("Cursor = %d, want %d", c.Cursor(), tt.want)
			}
		})
	}
}

// TestWraparoundClosure verifies N moves in either direction return to the start
func TestWraparoundClosure(t *testing.T) {
	for n := 1; n <= 6; n++ {
		tracks := make([]string, n)
		for i := range tracks {
			tracks[i] = fmt.Sprintf("/music/%02d.mp3", i)
		}

		for start := range n {
			for _, forward := range []bool{true, false} {
				c := NewController(&fakeScanner{})
				c.Restore(tracks, tracks[start])

				for range n {
					var err error
					if forward {
						_, err = c.Next()
					} else {
						_, err = c.Previous()
					}

					if err != nil {
						t.Fatal(err)
					}
				}

				if c.Cursor() != start {
					t.Errorf("n=%d start=%d forward=%v: cursor ended at %d", n, start, forward, c.Cursor())
				}
			}
		}
	}
}

func TestRestore(t *testing.T) {
	c := NewController(&fakeScanner{})
	c.Restore([]string{"/m/a.mp3", "/m/b.mp3", "/m/a.mp3", "", "/m/c.mp3"}, "/m/c.mp3")

	want := []string{"/m/a.mp3", "/m/b.mp3", "/m/c.mp3"}
	if !reflect.DeepEqual(c.Tracks(), want) {
		t.Errorf("Tracks = %v, want %v", c.Tracks(), want)
	}

	if c.Cursor() != 2 {
		t.Errorf("Cursor = %d, want 2", c.Cursor())
	}

	if c.Directory() != "/m" {
		t.Errorf("Directory = %q, want /m", c.Directory())
	}

	c.Restore([]string{"/m/a.mp3"}, "/m/missing.mp3")
	if c.Cursor() != -1 {
		t.Errorf("Cursor = %d, want -1 for unknown current", c.Cursor())
	}
}

func TestTracksReturnsCopy(t *testing.T) {
	c := NewController(&fakeScanner{})
	c.Restore([]string{"/a", "/b"}, "")

	tracks := c.Tracks()
	tracks[0] = "/mutated"

	if c.Tracks()[0] != "/a" {
		t.Error("Tracks exposed internal slice")
	}
}

func TestDeselect(t *testing.T) {
	c := NewController(&fakeScanner{})
	c.Restore([]string{"/a", "/b"}, "/b")
	c.Deselect()

	if c.Cursor() != -1 {
		t.Errorf("Cursor = %d after Deselect", c.Cursor())
	}
}
