// ABOUTME: Player mode: wires the audio engine, settings store and dispatcher into the TUI
// ABOUTME: Resumes the remembered session, opens the command-line path, then hands over to the UI

package main

import (
	"fmt"
	"log"

	"cover-player/audio"
	"cover-player/config"
	"cover-player/library"
	"cover-player/player"
	"cover-player/settings"
	"cover-player/tui"
)

// PlayerOptions contains the resolved command-line and config options
type PlayerOptions struct {
	Config       config.Config
	SettingsPath string
	OpenPath     string // Optional file, directory or playlist to open at start
}

// RunPlayer runs the interactive player until the user quits
func RunPlayer(opts PlayerOptions) error {
	cfg := opts.Config

	store := settings.NewStore(opts.SettingsPath, debugf)
	debugf("[MAIN] settings at %s", store.Path())

	eng, err := audio.New(audio.Options{
		ResampleQuality: cfg.ResampleQuality,
		Volume:          cfg.DefaultVolume,
		Debugf:          debugf,
	})
	if err != nil {
		return fmt.Errorf("failed to start audio: %w", err)
	}

	p := player.New(store, eng, library.NewScanner(library.PinyinKey), player.Options{
		AutoplayOnStart: cfg.AutoplayOnStart,
		Volume:          cfg.DefaultVolume,
		TagWorkers:      cfg.TagWorkers,
		Debugf:          debugf,
	})

	if err := p.Start(); err != nil {
		log.Printf("Warning: could not resume last track: %v", err)
	}

	if opts.OpenPath != "" {
		if err := p.Dispatch(player.Intent{Kind: player.Open, Path: opts.OpenPath}); err != nil {
			log.Printf("Warning: could not open %s: %v", opts.OpenPath, err)
		}
	}

	return tui.Run(p, eng.Events(), tui.OptionsFromConfig(cfg, debugf))
}
