// ABOUTME: Playback engine boundary shared by the session, the dispatcher and the audio backend
// ABOUTME: Defines the engine interface, its status events and output device descriptions

// Package engine describes what the player needs from something that can
// decode and play audio files. The audio package provides the real
// implementation; tests substitute their own.
package engine

import (
	"fmt"
	"time"
)

// MediaStatus describes the state of the loaded source
type MediaStatus int

const (
	NoMedia      MediaStatus = iota // No source set
	Loaded                          // Source decoded and ready
	EndOfMedia                      // Source played to the end
	InvalidMedia                    // Source could not be decoded
)

// String returns the status name
func (s MediaStatus) String() string {
	switch s {
	case NoMedia:
		return "no media"
	case Loaded:
		return "loaded"
	case EndOfMedia:
		return "end of media"
	case InvalidMedia:
		return "invalid media"
	default:
		return fmt.Sprintf("MediaStatus(%d)", int(s))
	}
}

// PlaybackState describes the transport state
type PlaybackState int

const (
	Stopped PlaybackState = iota
	Playing
	Paused
)

// String returns the state name
func (s PlaybackState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("PlaybackState(%d)", int(s))
	}
}

// EventKind identifies which field of an Event is meaningful
type EventKind int

const (
	PositionChanged EventKind = iota
	DurationChanged
	MediaStatusChanged
	PlaybackStateChanged
)

// Event is a notification from the engine. Path is the source the event
// refers to so listeners can drop events for a source they already replaced.
type Event struct {
	Kind     EventKind
	Path     string
	Position time.Duration
	Duration time.Duration
	Status   MediaStatus
	State    PlaybackState
	Err      error
}

// Device is an output device as presented to the user.
// Description is what gets persisted, IDs are only stable within one run.
type Device struct {
	ID          int
	Description string
}

// NoDevice is the zero device, meaning "system default"
var NoDevice = Device{ID: -1}

// Engine plays one source at a time on one output device
type Engine interface {
	SetSource(path string) error
	Play() error
	Pause()
	Stop()
	SetPosition(pos time.Duration) error
	Position() time.Duration
	Duration() time.Duration
	State() PlaybackState
	Volume() float64
	SetVolume(v float64)
	Devices() ([]Device, error)
	SetDevice(dev Device) error
	Device() Device
	Events() <-chan Event
	Close() error
}

// FindDevice returns the device whose description matches, if any
func FindDevice(devices []Device, description string) (Device, bool) {
	if description == "" {
		return NoDevice, false
	}

	for _, d := range devices {
		if d.Description == description {
			return d, true
		}
	}

	return NoDevice, false
}
