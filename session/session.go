// ABOUTME: Playback session binding the now-playing track to the engine and its companion image
// ABOUTME: Handles open, device rebinding with position carry-over, resume and end-of-media detection

// Package session wraps the single "now playing" track. It talks to the
// playback engine and resolves the image shown next to the track.
package session

import (
	"errors"
	"fmt"
	"time"

	"cover-player/engine"
	"cover-player/library"
)

// ErrPlaybackEngine wraps every failure reported by the engine
var ErrPlaybackEngine = errors.New("playback engine error")

// ImageResolver finds the companion image for an audio file
type ImageResolver func(audioPath string) (string, bool)

// Session owns the current path, its image and the engine driving it
type Session struct {
	engine engine.Engine
	images ImageResolver
	debugf func(string, ...interface{})

	path  string
	image string
}

// New creates a session. A nil resolver uses library.CompanionImage.
func New(eng engine.Engine, images ImageResolver, debugf func(string, ...interface{})) *Session {
	if images == nil {
		images = library.CompanionImage
	}

	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}

	return &Session{engine: eng, images: images, debugf: debugf}
}

// Open makes path the current track, resolves its image and starts playing it.
// The image is resolved even when the engine rejects the file.
func (s *Session) Open(path string) (string, error) {
	s.setTrack(path)
	s.engine.Stop()

	if err := s.engine.SetSource(path); err != nil {
		return s.image, engineError("load", err)
	}

	if err := s.engine.Play(); err != nil {
		return s.image, engineError("play", err)
	}

	s.debugf("session: playing %s (image %q)", path, s.image)

	return s.image, nil
}

// SwitchDevice rebinds output to dev. An active track keeps its position
// and its playing or paused state.
func (s *Session) SwitchDevice(dev engine.Device) error {
	state := s.engine.State()
	active := s.path != "" && state != engine.Stopped
	pos := s.engine.Position()

	if err := s.engine.SetDevice(dev); err != nil {
		return engineError("switch device", err)
	}

	if !active {
		return nil
	}

	s.debugf("session: device %q, restoring %s at %v", dev.Description, s.path, pos)

	return s.Resume(s.path, pos, state)
}

// Resume reloads path, seeks to offset and restores state. Stopped leaves
// the track loaded at offset without a transport state.
func (s *Session) Resume(path string, offset time.Duration, state engine.PlaybackState) error {
	s.setTrack(path)

	if err := s.engine.SetSource(path); err != nil {
		return engineError("load", err)
	}

	if offset > 0 {
		if err := s.engine.SetPosition(offset); err != nil {
			return engineError("seek", err)
		}
	}

	switch state {
	case engine.Playing:
		if err := s.engine.Play(); err != nil {
			return engineError("play", err)
		}
	case engine.Paused:
		s.engine.Pause()
	}

	return nil
}

// HandleEvent reports whether ev means the current track is finished,
// either played to the end or rejected by the decoder.
// Events about a different path are ignored.
func (s *Session) HandleEvent(ev engine.Event) bool {
	if ev.Kind != engine.MediaStatusChanged || s.path == "" {
		return false
	}

	if ev.Path != "" && ev.Path != s.path {
		return false
	}

	return ev.Status == engine.EndOfMedia || ev.Status == engine.InvalidMedia
}

// TogglePause pauses a playing track or plays a paused or stopped one
func (s *Session) TogglePause() error {
	if s.engine.State() == engine.Playing {
		s.engine.Pause()

		return nil
	}

	if s.path == "" {
		return nil
	}

	if err := s.engine.Play(); err != nil {
		return engineError("play", err)
	}

	return nil
}

// Stop halts playback and keeps the track current
func (s *Session) Stop() {
	s.engine.Stop()
}

// Clear stops playback and forgets the current track
func (s *Session) Clear() {
	s.engine.Stop()
	s.path = ""
	s.image = ""
}

// Seek moves the playback position by delta, never before the start
func (s *Session) Seek(delta time.Duration) error {
	if s.path == "" {
		return nil
	}

	pos := max(s.engine.Position()+delta, 0)

	if err := s.engine.SetPosition(pos); err != nil {
		return engineError("seek", err)
	}

	return nil
}

// SetVolume sets the linear output volume
func (s *Session) SetVolume(v float64) {
	s.engine.SetVolume(v)
}

// Volume returns the linear output volume
func (s *Session) Volume() float64 { return s.engine.Volume() }

// CurrentPath returns the now-playing path, empty when none
func (s *Session) CurrentPath() string { return s.path }

// ImagePath returns the companion image of the current track, empty when none
func (s *Session) ImagePath() string { return s.image }

// State returns the engine transport state
func (s *Session) State() engine.PlaybackState { return s.engine.State() }

// Position returns the playback offset
func (s *Session) Position() time.Duration { return s.engine.Position() }

// Duration returns the length of the current track
func (s *Session) Duration() time.Duration { return s.engine.Duration() }

func (s *Session) setTrack(path string) {
	s.path = path
	s.image = ""

	if image, ok := s.images(path); ok {
		s.image = image
	}
}

func engineError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPlaybackEngine, op, err)
}
