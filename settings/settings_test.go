// ABOUTME: Tests for settings persistence
// ABOUTME: Verifies default fallback, round-trips, JSON wire format and atomic replacement

package settings

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	return NewStore(filepath.Join(t.TempDir(), "settings.json"), nil)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	store := newTestStore(t)

	got := store.Load()

	if got.LastDirectory != "" || got.LastDeviceName != "" {
		t.Errorf("Expected empty strings, got %+v", got)
	}

	if got.PlaylistMemory == nil || len(got.PlaylistMemory) != 0 {
		t.Errorf("Expected empty non-nil playlist, got %#v", got.PlaylistMemory)
	}

	if got.CurrentFilePath != nil {
		t.Errorf("Expected no current file, got %q", *got.CurrentFilePath)
	}

	if got.WindowGeometry != nil {
		t.Errorf("Expected no geometry, got %v", got.WindowGeometry)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	want := Settings{
		LastDirectory:  "C:/Music/專輯",
		LastDeviceName: "USB Audio DAC",
		PlaylistMemory: []string{"C:/Music/專輯/a.mp3", "C:/Music/專輯/啊.mp3"},
		WindowGeometry: []byte{0x01, 0xd9, 0xd0, 0xcb, 0x00, 0x03},
	}
	want.SetCurrent("C:/Music/專輯/啊.mp3")

	if err := store.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got := store.Load()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestSaveWritesWireFormat(t *testing.T) {
	store := newTestStore(t)

	s := Defaults()
	s.LastDirectory = "/music"
	s.WindowGeometry = []byte("80x24")

	if err := store.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Saved file is not JSON: %v", err)
	}

	for _, key := range []string{"last_dir", "last_device_desc", "playlist_memory", "current_file_path", "window_geometry"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("Missing key %q in %s", key, data)
		}
	}

	if raw["current_file_path"] != nil {
		t.Errorf("Expected current_file_path null, got %v", raw["current_file_path"])
	}

	if raw["window_geometry"] != "ODB4MjQ=" {
		t.Errorf("Expected base64 geometry, got %v", raw["window_geometry"])
	}
}

func TestLoadCorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `{"last_dir": "/mu`},
		{"wrong type", `{"playlist_memory": "not a list"}`},
		{"bad base64", `{"window_geometry": "%%%"}`},
		{"not an object", `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			if err := os.WriteFile(store.Path(), []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}

			_, err := store.load()
			if !errors.Is(err, ErrCorrupt) {
				t.Errorf("Expected ErrCorrupt, got %v", err)
			}

			got := store.Load()
			if !reflect.DeepEqual(got, Defaults()) {
				t.Errorf("Expected defaults, got %+v", got)
			}
		})
	}
}

func TestLoadMissingKeysDefault(t *testing.T) {
	store := newTestStore(t)
	content := `{"last_dir": "/music", "playlist_memory": null, "extra": 42}`

	if err := os.WriteFile(store.Path(), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	got := store.Load()
	if got.LastDirectory != "/music" {
		t.Errorf("LastDirectory = %q, want /music", got.LastDirectory)
	}

	if got.PlaylistMemory == nil {
		t.Error("Expected null playlist to be normalized to empty")
	}

	if got.Current() != "" {
		t.Errorf("Expected no current file, got %q", got.Current())
	}
}

func TestSaveReplacesPreviousContent(t *testing.T) {
	store := newTestStore(t)

	first := Defaults()
	first.PlaylistMemory = []string{"/a.mp3", "/b.mp3", "/c.mp3"}

	if err := store.Save(first); err != nil {
		t.Fatal(err)
	}

	second := Defaults()
	second.LastDeviceName = "Speakers"

	if err := store.Save(second); err != nil {
		t.Fatal(err)
	}

	got := store.Load()
	if len(got.PlaylistMemory) != 0 || got.LastDeviceName != "Speakers" {
		t.Errorf("Expected second record only, got %+v", got)
	}

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}

		t.Errorf("Expected only settings.json, found %v", names)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "settings.json")
	store := NewStore(path, nil)

	if err := store.Save(Defaults()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected settings file to exist: %v", err)
	}
}

func TestSetCurrent(t *testing.T) {
	var s Settings

	s.SetCurrent("/music/a.mp3")
	if s.Current() != "/music/a.mp3" {
		t.Errorf("Current = %q", s.Current())
	}

	s.SetCurrent("")
	if s.CurrentFilePath != nil {
		t.Error("Expected SetCurrent(\"\") to clear the path")
	}
}
