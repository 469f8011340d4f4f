// ABOUTME: Application preferences for cover-player
// ABOUTME: Handles loading/saving TOML config files with fallback to defaults

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds user-tunable player preferences.
// Session state (last directory, playlist, device) lives in the settings package.
type Config struct {
	// SettingsPath overrides where session settings are persisted
	SettingsPath string `toml:"settings_path"`

	// Playback
	DefaultVolume   float64 `toml:"default_volume"` // 0.0 - 1.0
	AutoplayOnStart bool    `toml:"autoplay_on_start"`
	SeekStep        string  `toml:"seek_step"`        // Go duration string, e.g. "5s"
	ResampleQuality int     `toml:"resample_quality"` // beep resampler quality, 1-6

	// Library
	WatchDirectory bool `toml:"watch_directory"` // Rescan the playlist directory on change
	TagWorkers     int  `toml:"tag_workers"`     // Parallel tag readers (0 = NumCPU)
}

// DefaultConfig returns the defaults used when no config file exists
func DefaultConfig() Config {
	return Config{
		SettingsPath:    "",
		DefaultVolume:   0.7,
		AutoplayOnStart: true,
		SeekStep:        "5s",
		ResampleQuality: 4,
		WatchDirectory:  true,
		TagWorkers:      0,
	}
}

// SeekDuration parses SeekStep, falling back to five seconds
func (c Config) SeekDuration() time.Duration {
	d, err := time.ParseDuration(c.SeekStep)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}

	return d
}

// GetConfigPath returns the default config file path
// First tries current directory, then falls back to ~/.config/cover-player/config.toml
func GetConfigPath() string {
	if _, err := os.Stat("./cover-player.toml"); err == nil {
		return "./cover-player.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./cover-player.toml"
	}

	return filepath.Join(home, ".config", "cover-player", "config.toml")
}

// LoadConfig loads configuration from a TOML file
// If the file doesn't exist or fails to load, returns default config
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}

		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	// Decode over defaults so keys missing from the file keep their default value
	config := DefaultConfig()
	if err := toml.Unmarshal(data, &config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return clampConfig(config), nil
}

// SaveConfig saves configuration to a TOML file
func SaveConfig(path string, config Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	config = clampConfig(config)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Printf("Warning: failed to close config file: %v\n", err)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// clampConfig keeps numeric values inside the ranges the player accepts
func clampConfig(config Config) Config {
	if config.DefaultVolume < 0 {
		config.DefaultVolume = 0
	}

	if config.DefaultVolume > 1 {
		config.DefaultVolume = 1
	}

	if config.ResampleQuality < 1 || config.ResampleQuality > 6 {
		config.ResampleQuality = 4
	}

	if config.TagWorkers < 0 {
		config.TagWorkers = 0
	}

	return config
}
