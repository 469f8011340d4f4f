// ABOUTME: Shared initialization code for the player and listing modes
// ABOUTME: Provides debug logging, config loading and settings path resolution

package main

import (
	"fmt"
	"log"
	"os"

	"cover-player/config"
	"cover-player/settings"
)

const debugLogFile = "cover-player-debug.log"

var debugLog *log.Logger

// SetupDebugLog initializes debug logging
func SetupDebugLog(filename string) error {
	if err := InitDebugLog(filename); err != nil {
		return fmt.Errorf("failed to initialize debug log: %w", err)
	}

	if filename == debugLogFile {
		fileInfo, _ := os.Stdout.Stat()
		if (fileInfo.Mode() & os.ModeCharDevice) != 0 {
			fmt.Printf("Debug logging enabled: %s\n", filename)
		}
	}

	return nil
}

// InitDebugLog initializes debug logging
func InitDebugLog(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugLog = log.New(f, "", log.Ltime|log.Lmicroseconds)

	return nil
}

// debugf logs debug messages if enabled
func debugf(format string, args ...interface{}) {
	if debugLog != nil {
		debugLog.Printf(format, args...)
	}
}

// loadConfig reads the TOML config, warning and falling back to defaults
// when the file is unreadable
func loadConfig(path string) config.Config {
	if path == "" {
		path = config.GetConfigPath()
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Printf("Warning: %v, using defaults", err)
	}

	debugf("[CONFIG] %s: %+v", path, cfg)

	return cfg
}

// resolveSettingsPath picks the settings file: flag, then config, then the
// user config directory
func resolveSettingsPath(flagPath string, cfg config.Config) string {
	switch {
	case flagPath != "":
		return flagPath
	case cfg.SettingsPath != "":
		return cfg.SettingsPath
	default:
		return settings.DefaultPath()
	}
}

// truncate shortens s to maxLen runes, adding "..." if needed
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return string(runes[:maxLen])
	}

	return string(runes[:maxLen-3]) + "..."
}
