// ABOUTME: In-memory engine.Engine for tests of code that drives playback
// ABOUTME: Records calls, simulates per-path load failures and emits status events

// Package enginetest provides a scriptable fake playback engine.
package enginetest

import (
	"errors"
	"fmt"
	"time"

	"cover-player/engine"
)

// ErrNoSource mirrors the real engine's refusal to play without a source
var ErrNoSource = errors.New("no source loaded")

// Fake implements engine.Engine without decoding anything
type Fake struct {
	Calls      []string
	Source     string
	Pos        time.Duration
	Length     time.Duration
	St         engine.PlaybackState
	Vol        float64
	Dev        engine.Device
	DeviceList []engine.Device

	// Failing maps paths to the error SetSource returns for them
	Failing   map[string]error
	DeviceErr error
	Closed    bool

	events chan engine.Event
}

var _ engine.Engine = (*Fake)(nil)

// New returns a stopped fake with a one minute track length
func New(devices ...engine.Device) *Fake {
	return &Fake{
		Length:     time.Minute,
		Vol:        1,
		Dev:        engine.NoDevice,
		DeviceList: devices,
		Failing:    map[string]error{},
		events:     make(chan engine.Event, 64),
	}
}

func (f *Fake) record(format string, args ...interface{}) {
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
}

// Emit queues an event, dropping it when the buffer is full
func (f *Fake) Emit(ev engine.Event) {
	select {
	case f.events <- ev:
	default:
	}
}

// Drain returns all queued events
func (f *Fake) Drain() []engine.Event {
	var events []engine.Event

	for {
		select {
		case ev := <-f.events:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func (f *Fake) SetSource(path string) error {
	f.record("SetSource %s", path)
	f.St = engine.Stopped
	f.Pos = 0

	if err, ok := f.Failing[path]; ok {
		f.Source = ""
		f.Emit(engine.Event{Kind: engine.MediaStatusChanged, Path: path, Status: engine.InvalidMedia, Err: err})

		return err
	}

	f.Source = path
	f.Emit(engine.Event{Kind: engine.MediaStatusChanged, Path: path, Status: engine.Loaded})

	return nil
}

func (f *Fake) Play() error {
	f.record("Play")

	if f.Source == "" {
		return ErrNoSource
	}

	f.St = engine.Playing

	return nil
}

func (f *Fake) Pause() {
	f.record("Pause")

	if f.Source != "" {
		f.St = engine.Paused
	}
}

func (f *Fake) Stop() {
	f.record("Stop")
	f.St = engine.Stopped
	f.Pos = 0
}

func (f *Fake) SetPosition(pos time.Duration) error {
	f.record("SetPosition %v", pos)

	if f.Source == "" {
		return ErrNoSource
	}

	f.Pos = max(0, min(pos, f.Length))

	return nil
}

func (f *Fake) Position() time.Duration     { return f.Pos }
func (f *Fake) Duration() time.Duration     { return f.Length }
func (f *Fake) State() engine.PlaybackState { return f.St }
func (f *Fake) Volume() float64             { return f.Vol }

func (f *Fake) SetVolume(v float64) {
	f.Vol = max(0, min(v, 1))
}

func (f *Fake) Devices() ([]engine.Device, error) {
	return append([]engine.Device{}, f.DeviceList...), nil
}

func (f *Fake) SetDevice(dev engine.Device) error {
	f.record("SetDevice %s", dev.Description)

	if f.DeviceErr != nil {
		return f.DeviceErr
	}

	f.Dev = dev

	return nil
}

func (f *Fake) Device() engine.Device       { return f.Dev }
func (f *Fake) Events() <-chan engine.Event { return f.events }

func (f *Fake) Close() error {
	f.record("Close")
	f.Closed = true

	return nil
}
