// ABOUTME: Tests for the playback session against a fake engine
// ABOUTME: Verifies open, companion images, device switching, resume and end-of-media handling

package session

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"cover-player/engine"
	"cover-player/engine/enginetest"
)

func newTestSession() (*Session, *enginetest.Fake) {
	fake := enginetest.New()

	return New(fake, nil, nil), fake
}

func TestOpenPlaysAndResolvesImage(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.ToSlash(filepath.Join(dir, "song.mp3"))
	cover := filepath.ToSlash(filepath.Join(dir, "song.png"))

	for _, p := range []string{audio, cover} {
		if err := os.WriteFile(p, nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	s, fake := newTestSession()

	image, err := s.Open(audio)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if image != cover {
		t.Errorf("Expected image %s, got %q", cover, image)
	}

	want := []string{"Stop", "SetSource " + audio, "Play"}
	if !reflect.DeepEqual(fake.Calls, want) {
		t.Errorf("Calls = %v, want %v", fake.Calls, want)
	}

	if s.CurrentPath() != audio || s.State() != engine.Playing {
		t.Errorf("Expected %s playing, got %s (%v)", audio, s.CurrentPath(), s.State())
	}
}

func TestOpenWithoutImage(t *testing.T) {
	s, _ := newTestSession()

	image, err := s.Open("/music/b.mp3")
	if err != nil {
		t.Fatal(err)
	}

	if image != "" || s.ImagePath() != "" {
		t.Errorf("Expected no image, got %q", image)
	}
}

func TestOpenEngineFailure(t *testing.T) {
	s, fake := newTestSession()
	fake.Failing["/music/bad.m4a"] = errors.New("unsupported")

	_, err := s.Open("/music/bad.m4a")
	if !errors.Is(err, ErrPlaybackEngine) {
		t.Errorf("Expected ErrPlaybackEngine, got %v", err)
	}

	if s.CurrentPath() != "/music/bad.m4a" {
		t.Errorf("Failed track should still be current, got %q", s.CurrentPath())
	}
}

func TestSwitchDevicePreservesPosition(t *testing.T) {
	tests := []struct {
		name      string
		pause     bool
		wantState engine.PlaybackState
	}{
		{"playing resumes", false, engine.Playing},
		{"paused stays paused", true, engine.Paused},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, fake := newTestSession()

			if _, err := s.Open("/music/a.mp3"); err != nil {
				t.Fatal(err)
			}

			fake.Pos = 42 * time.Second

			if tt.pause {
				fake.Pause()
			}

			fake.Calls = nil
			usb := engine.Device{ID: 1, Description: "USB"}

			if err := s.SwitchDevice(usb); err != nil {
				t.Fatalf("SwitchDevice failed: %v", err)
			}

			if fake.Dev != usb {
				t.Errorf("Expected device USB, got %v", fake.Dev)
			}

			if fake.Pos != 42*time.Second {
				t.Errorf("Expected position 42s, got %v", fake.Pos)
			}

			if fake.St != tt.wantState {
				t.Errorf("Expected state %v, got %v", tt.wantState, fake.St)
			}
		})
	}
}

func TestSwitchDeviceWhileStopped(t *testing.T) {
	s, fake := newTestSession()

	if err := s.SwitchDevice(engine.Device{ID: 2, Description: "HDMI"}); err != nil {
		t.Fatal(err)
	}

	want := []string{"SetDevice HDMI"}
	if !reflect.DeepEqual(fake.Calls, want) {
		t.Errorf("Calls = %v, want %v", fake.Calls, want)
	}
}

func TestSwitchDeviceFailure(t *testing.T) {
	s, fake := newTestSession()
	fake.DeviceErr = errors.New("busy")

	if err := s.SwitchDevice(engine.Device{Description: "Busy"}); !errors.Is(err, ErrPlaybackEngine) {
		t.Errorf("Expected ErrPlaybackEngine, got %v", err)
	}
}

func TestResume(t *testing.T) {
	s, fake := newTestSession()

	tests := []struct {
		name   string
		offset time.Duration
		state  engine.PlaybackState
	}{
		{"stopped", 10 * time.Second, engine.Stopped},
		{"paused", 10 * time.Second, engine.Paused},
		{"playing", 0, engine.Playing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Resume("/music/a.mp3", tt.offset, tt.state); err != nil {
				t.Fatal(err)
			}

			if fake.Pos != tt.offset || fake.St != tt.state {
				t.Errorf("Expected %v at %v, got %v at %v", tt.state, tt.offset, fake.St, fake.Pos)
			}
		})
	}
}

func TestHandleEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   engine.Event
		want bool
	}{
		{"end of current", engine.Event{Kind: engine.MediaStatusChanged, Path: "/m/a.mp3", Status: engine.EndOfMedia}, true},
		{"invalid current", engine.Event{Kind: engine.MediaStatusChanged, Path: "/m/a.mp3", Status: engine.InvalidMedia}, true},
		{"loaded", engine.Event{Kind: engine.MediaStatusChanged, Path: "/m/a.mp3", Status: engine.Loaded}, false},
		{"stale path", engine.Event{Kind: engine.MediaStatusChanged, Path: "/m/old.mp3", Status: engine.EndOfMedia}, false},
		{"position tick", engine.Event{Kind: engine.PositionChanged, Path: "/m/a.mp3"}, false},
	}

	s, _ := newTestSession()
	if _, err := s.Open("/m/a.mp3"); err != nil {
		t.Fatal(err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.HandleEvent(tt.ev); got != tt.want {
				t.Errorf("HandleEvent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandleEventWithoutTrack(t *testing.T) {
	s, _ := newTestSession()

	if s.HandleEvent(engine.Event{Kind: engine.MediaStatusChanged, Status: engine.EndOfMedia}) {
		t.Error("Expected no advance without a current track")
	}
}

func TestTogglePause(t *testing.T) {
	s, fake := newTestSession()

	// Nothing loaded: no-op
	if err := s.TogglePause(); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Open("/m/a.mp3"); err != nil {
		t.Fatal(err)
	}

	if err := s.TogglePause(); err != nil || fake.St != engine.Paused {
		t.Errorf("Expected Paused, got %v (%v)", fake.St, err)
	}

	if err := s.TogglePause(); err != nil || fake.St != engine.Playing {
		t.Errorf("Expected Playing, got %v (%v)", fake.St, err)
	}
}

func TestSeekClampsAtStart(t *testing.T) {
	s, fake := newTestSession()

	if _, err := s.Open("/m/a.mp3"); err != nil {
		t.Fatal(err)
	}

	fake.Pos = 3 * time.Second

	if err := s.Seek(-5 * time.Second); err != nil {
		t.Fatal(err)
	}

	if fake.Pos != 0 {
		t.Errorf("Expected 0, got %v", fake.Pos)
	}

	if err := s.Seek(5 * time.Second); err != nil {
		t.Fatal(err)
	}

	if fake.Pos != 5*time.Second {
		t.Errorf("Expected 5s, got %v", fake.Pos)
	}
}

func TestClear(t *testing.T) {
	s, fake := newTestSession()

	if _, err := s.Open("/m/a.mp3"); err != nil {
		t.Fatal(err)
	}

	s.Clear()

	if s.CurrentPath() != "" || fake.St != engine.Stopped {
		t.Errorf("Expected cleared and stopped, got %q %v", s.CurrentPath(), fake.St)
	}
}
