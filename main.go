// ABOUTME: Entry point for cover-player
// ABOUTME: Handles command-line parsing, profiling, and routing to the player or listing mode

// Package main provides the entry point for cover-player, a terminal audio
// player that plays a directory in phonetic order and shows each track's cover.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
)

func main() {
	os.Exit(run())
}

func run() int {
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile := flag.String("memprofile", "", "write memory profile to file")
	debug := flag.Bool("debug", false, "enable debug logging to "+debugLogFile)
	configFlag := flag.String("config", "", "config file (default: ./cover-player.toml or ~/.config/cover-player/config.toml)")
	settingsFlag := flag.String("settings", "", "settings file (default: from config, else the user config directory)")
	list := flag.Bool("list", false, "print the playlist of a directory and exit without opening an audio device")
	flag.Parse()

	args := flag.Args()
	if len(args) > 1 || (*list && len(args) != 1) {
		fmt.Println("Usage: cover-player [flags] [file|directory|playlist.m3u8]")
		fmt.Println("       cover-player -list <directory>")
		fmt.Println("Example: cover-player ~/Music/Albums/Kind\\ of\\ Blue")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()

		return 1
	}

	if *cpuprofile != "" {
		stopCPUProfile := setupCPUProfile(*cpuprofile)
		defer stopCPUProfile()
	}

	if *memprofile != "" {
		defer writeMemoryProfile(*memprofile)
	}

	if *debug {
		if err := SetupDebugLog(debugLogFile); err != nil {
			log.Printf("Failed to setup debug log: %v", err)

			return 1
		}
	}

	cfg := loadConfig(*configFlag)

	if *list {
		if err := RunList(os.Stdout, args[0], cfg.TagWorkers); err != nil {
			log.Printf("List error: %v", err)

			return 1
		}

		return 0
	}

	opts := PlayerOptions{
		Config:       cfg,
		SettingsPath: resolveSettingsPath(*settingsFlag, cfg),
	}

	if len(args) == 1 {
		opts.OpenPath = args[0]
	}

	if err := RunPlayer(opts); err != nil {
		log.Printf("Player error: %v", err)

		return 1
	}

	return 0
}

// setupCPUProfile starts CPU profiling, returns cleanup function
func setupCPUProfile(filename string) func() {
	f, err := os.Create(filename)
	if err != nil {
		log.Fatalf("could not create CPU profile: %v", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		log.Fatalf("could not start CPU profile: %v", err)
	}

	return func() {
		pprof.StopCPUProfile()

		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close CPU profile: %v", err)
		}
	}
}

// writeMemoryProfile writes memory profile to file
func writeMemoryProfile(filename string) {
	f, err := os.Create(filename)
	if err != nil {
		log.Printf("could not create memory profile: %v", err)

		return
	}

	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close memory profile: %v", err)
		}
	}()

	runtime.GC()

	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Printf("could not write memory profile: %v", err)
	}
}
