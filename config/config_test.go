// ABOUTME: Tests for configuration load/save functionality
// ABOUTME: Validates TOML parsing, clamping and default config fallback behavior

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DefaultVolume != 0.7 {
		t.Errorf("Expected DefaultVolume 0.7, got %.2f", cfg.DefaultVolume)
	}

	if !cfg.AutoplayOnStart {
		t.Error("Expected AutoplayOnStart to default to true")
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	tmpfile, err := os.CreateTemp(t.TempDir(), "cover-player-*.toml")
	if err != nil {
		t.Fatal(err)
	}

	defer os.Remove(tmpfile.Name())
	tmpfile.Close()

	cfg := DefaultConfig()
	cfg.DefaultVolume = 0.25
	cfg.WatchDirectory = false
	cfg.SettingsPath = "/tmp/somewhere/settings.json"

	if err := SaveConfig(tmpfile.Name(), cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(tmpfile.Name())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded != cfg {
		t.Errorf("Config mismatch: got %+v, want %+v", loaded, cfg)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	if err != nil {
		t.Errorf("Expected no error for non-existent file, got: %v", err)
	}

	if cfg != DefaultConfig() {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("default_volume = 0.5\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.DefaultVolume != 0.5 {
		t.Errorf("Expected DefaultVolume 0.5, got %.2f", cfg.DefaultVolume)
	}

	if !cfg.AutoplayOnStart || cfg.SeekStep != "5s" {
		t.Errorf("Expected remaining keys to keep defaults, got %+v", cfg)
	}
}

func TestLoadMalformedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("default_volume = [oops"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err == nil {
		t.Error("Expected parse error for malformed file")
	}

	if cfg != DefaultConfig() {
		t.Errorf("Expected defaults on parse error, got %+v", cfg)
	}
}

func TestClampConfig(t *testing.T) {
	tests := []struct {
		name   string
		in     Config
		volume float64
		qual   int
	}{
		{"volume too high", Config{DefaultVolume: 3, ResampleQuality: 2}, 1, 2},
		{"volume negative", Config{DefaultVolume: -1, ResampleQuality: 6}, 0, 6},
		{"quality out of range", Config{DefaultVolume: 0.5, ResampleQuality: 9}, 0.5, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clampConfig(tt.in)
			if got.DefaultVolume != tt.volume {
				t.Errorf("DefaultVolume = %.2f, want %.2f", got.DefaultVolume, tt.volume)
			}

			if got.ResampleQuality != tt.qual {
				t.Errorf("ResampleQuality = %d, want %d", got.ResampleQuality, tt.qual)
			}
		})
	}
}

func TestSeekDuration(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.SeekDuration(); got != 5*time.Second {
		t.Errorf("SeekDuration = %v, want 5s", got)
	}

	cfg.SeekStep = "250ms"
	if got := cfg.SeekDuration(); got != 250*time.Millisecond {
		t.Errorf("SeekDuration = %v, want 250ms", got)
	}

	cfg.SeekStep = "nonsense"
	if got := cfg.SeekDuration(); got != 5*time.Second {
		t.Errorf("SeekDuration fallback = %v, want 5s", got)
	}
}
