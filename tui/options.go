// ABOUTME: Options for the terminal UI
// ABOUTME: Derived from the TOML config plus the debug logger

package tui

import (
	"time"

	"cover-player/config"
)

// Options configures the TUI
type Options struct {
	SeekStep       time.Duration // Jump for the seek keys
	VolumeStep     float64       // Change per volume key press
	WatchDirectory bool          // Refresh when audio files in the playlist directory change
	TagWorkers     int           // Parallel tag readers for the title column
	Debugf         func(format string, args ...interface{})
}

// OptionsFromConfig maps user preferences to UI options
func OptionsFromConfig(cfg config.Config, debugf func(string, ...interface{})) Options {
	return Options{
		SeekStep:       cfg.SeekDuration(),
		VolumeStep:     0.05,
		WatchDirectory: cfg.WatchDirectory,
		TagWorkers:     cfg.TagWorkers,
		Debugf:         debugf,
	}
}
