// ABOUTME: beep-based playback engine rendering into a PortAudio output stream
// ABOUTME: Owns the decode chain (ctrl, resampler, volume) and reports status through an event channel

// Package audio implements engine.Engine. Files are decoded with beep,
// resampled to the output device rate and pulled by the device's stream
// callback. All state is guarded by a single mutex shared with that callback.
package audio

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"

	"cover-player/engine"
)

// ErrNoSource is returned by operations that need a loaded source
var ErrNoSource = errors.New("no source loaded")

const (
	defaultSampleRate = beep.SampleRate(44100)
	eventBuffer       = 64
)

// Options configures an Engine
type Options struct {
	ResampleQuality int     // beep resampler quality
	Volume          float64 // initial linear volume, 0.0 - 1.0
	Debugf          func(format string, args ...interface{})
}

// Engine plays one source at a time through one output device
type Engine struct {
	mu      sync.Mutex
	backend backend
	quality int
	debugf  func(string, ...interface{})

	device engine.Device
	out    output
	rate   beep.SampleRate

	path   string
	source beep.StreamSeekCloser
	format beep.Format
	ctrl   *beep.Ctrl
	volume *effects.Volume
	level  float64
	state  engine.PlaybackState
	buf    [][2]float64

	lastSecond int
	closed     bool
	events     chan engine.Event
}

var _ engine.Engine = (*Engine)(nil)

// New initialises PortAudio and returns an engine bound to the default device
func New(opts Options) (*Engine, error) {
	b, err := newPortaudioBackend()
	if err != nil {
		return nil, err
	}

	return newEngine(b, opts), nil
}

func newEngine(b backend, opts Options) *Engine {
	debugf := opts.Debugf
	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}

	quality := opts.ResampleQuality
	if quality < 1 {
		quality = 4
	}

	return &Engine{
		backend:    b,
		quality:    quality,
		debugf:     debugf,
		device:     engine.NoDevice,
		rate:       defaultSampleRate,
		level:      clampVolume(opts.Volume),
		lastSecond: -1,
		events:     make(chan engine.Event, eventBuffer),
	}
}

// SetSource stops playback and decodes path. A file that cannot be decoded
// leaves the engine without a source and reports InvalidMedia.
func (e *Engine) SetSource(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closeSourceLocked()
	e.setStateLocked(engine.Stopped)

	stream, format, err := decode(path)
	if err != nil {
		e.debugf("audio: decode %s failed: %v", path, err)
		e.emitLocked(engine.Event{Kind: engine.MediaStatusChanged, Path: path, Status: engine.InvalidMedia, Err: err})

		return err
	}

	e.path = path
	e.source = stream
	e.format = format
	e.ctrl = &beep.Ctrl{Streamer: stream, Paused: true}
	e.lastSecond = -1
	e.rebuildChainLocked()

	e.debugf("audio: loaded %s (%d Hz, %v)", path, format.SampleRate, format.SampleRate.D(stream.Len()))
	e.emitLocked(engine.Event{Kind: engine.MediaStatusChanged, Path: path, Status: engine.Loaded})
	e.emitLocked(engine.Event{Kind: engine.DurationChanged, Path: path, Duration: format.SampleRate.D(stream.Len())})

	return nil
}

// Play starts or resumes the loaded source, opening the output stream on first use.
// Playing a source that already reached its end restarts it.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.source == nil {
		return ErrNoSource
	}

	if err := e.ensureOutputLocked(); err != nil {
		return err
	}

	if e.source.Position() >= e.source.Len() {
		if err := e.source.Seek(0); err != nil {
			return fmt.Errorf("failed to rewind: %w", err)
		}
	}

	e.ctrl.Paused = false
	e.setStateLocked(engine.Playing)

	return nil
}

// Pause halts a playing source, keeping its position. A loaded source that
// is not playing is held paused at its current position.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.source == nil || e.state == engine.Paused {
		return
	}

	e.ctrl.Paused = true
	e.setStateLocked(engine.Paused)
}

// Stop halts playback and rewinds to the start
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.source != nil {
		e.ctrl.Paused = true
		if err := e.source.Seek(0); err != nil {
			e.debugf("audio: rewind on stop failed: %v", err)
		}
	}

	e.setStateLocked(engine.Stopped)
}

// SetPosition seeks within the loaded source, clamped to its length
func (e *Engine) SetPosition(pos time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.source == nil {
		return ErrNoSource
	}

	n := e.format.SampleRate.N(pos)
	n = max(0, min(n, e.source.Len()))

	if err := e.source.Seek(n); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	e.emitLocked(engine.Event{Kind: engine.PositionChanged, Path: e.path, Position: e.format.SampleRate.D(n)})

	return nil
}

// Position returns the playback offset of the loaded source
func (e *Engine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.source == nil {
		return 0
	}

	return e.format.SampleRate.D(e.source.Position())
}

// Duration returns the length of the loaded source
func (e *Engine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.source == nil {
		return 0
	}

	return e.format.SampleRate.D(e.source.Len())
}

// State returns the transport state
func (e *Engine) State() engine.PlaybackState {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

// Volume returns the linear volume in [0, 1]
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.level
}

// SetVolume sets the linear volume, clamped to [0, 1]
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.level = clampVolume(v)
	e.applyVolumeLocked()
}

// Devices lists output devices sorted by description
func (e *Engine) Devices() ([]engine.Device, error) {
	devices, err := e.backend.Devices()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(devices, func(i, j int) bool {
		return devices[i].Description < devices[j].Description
	})

	return devices, nil
}

// Device returns the selected output device
func (e *Engine) Device() engine.Device {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.device
}

// SetDevice rebinds output to dev. An open stream is closed and reopened on
// the new device; the source and its position are kept.
func (e *Engine) SetDevice(dev engine.Device) error {
	e.mu.Lock()
	old := e.out
	e.out = nil
	e.device = dev
	e.mu.Unlock()

	// The stream must be stopped without holding mu, its callback takes it
	if old != nil {
		e.closeOutput(old)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if old == nil {
		return nil
	}

	if err := e.ensureOutputLocked(); err != nil {
		if e.ctrl != nil {
			e.ctrl.Paused = true
		}

		e.setStateLocked(engine.Stopped)

		return err
	}

	return nil
}

// Events returns the channel status events are delivered on.
// Events are dropped when the channel is full.
func (e *Engine) Events() <-chan engine.Event {
	return e.events
}

// Close stops output, releases the source and shuts down the backend
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()

		return nil
	}

	old := e.out
	e.out = nil
	e.mu.Unlock()

	if old != nil {
		e.closeOutput(old)
	}

	e.mu.Lock()
	e.closeSourceLocked()
	e.closed = true
	close(e.events)
	e.mu.Unlock()

	return e.backend.Close()
}

// render is the output stream callback. It fills out with the next frames
// of the chain and detects the end of the source.
func (e *Engine) render(out [][]float32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	frames := 0
	if len(out) > 0 {
		frames = len(out[0])
	}

	if cap(e.buf) < frames {
		e.buf = make([][2]float64, frames)
	}

	buf := e.buf[:frames]
	n, ok := 0, true

	if e.state == engine.Playing && e.volume != nil {
		n, ok = e.volume.Stream(buf)
	}

	for i := range frames {
		var left, right float64
		if i < n {
			left, right = buf[i][0], buf[i][1]
		}

		for ch := range out {
			switch ch {
			case 0:
				out[ch][i] = float32(left)
			case 1:
				out[ch][i] = float32(right)
			default:
				out[ch][i] = 0
			}
		}
	}

	if e.state != engine.Playing {
		return
	}

	if !ok || (n < frames && e.source.Position() >= e.source.Len()) {
		e.finishLocked()

		return
	}

	e.tickLocked()
}

// finishLocked handles the source running out or failing mid-stream
func (e *Engine) finishLocked() {
	e.ctrl.Paused = true
	e.setStateLocked(engine.Stopped)

	if err := e.source.Err(); err != nil {
		e.emitLocked(engine.Event{Kind: engine.MediaStatusChanged, Path: e.path, Status: engine.InvalidMedia, Err: err})

		return
	}

	e.emitLocked(engine.Event{Kind: engine.MediaStatusChanged, Path: e.path, Status: engine.EndOfMedia})
}

// tickLocked reports position once per second of audio
func (e *Engine) tickLocked() {
	pos := e.format.SampleRate.D(e.source.Position())

	second := int(pos / time.Second)
	if second == e.lastSecond {
		return
	}

	e.lastSecond = second
	e.emitLocked(engine.Event{Kind: engine.PositionChanged, Path: e.path, Position: pos})
}

func (e *Engine) ensureOutputLocked() error {
	if e.out != nil {
		return nil
	}

	out, err := e.backend.Open(e.device, e.render)
	if err != nil {
		return fmt.Errorf("failed to open output device: %w", err)
	}

	if rate := out.SampleRate(); rate > 0 && rate != e.rate {
		e.rate = rate
		e.rebuildChainLocked()
	}

	if err := out.Start(); err != nil {
		_ = out.Close()

		return fmt.Errorf("failed to start output stream: %w", err)
	}

	e.out = out
	e.debugf("audio: output open on %q at %d Hz", e.device.Description, e.rate)

	return nil
}

func (e *Engine) closeOutput(out output) {
	if err := out.Stop(); err != nil {
		e.debugf("audio: stop stream: %v", err)
	}

	if err := out.Close(); err != nil {
		e.debugf("audio: close stream: %v", err)
	}
}

// rebuildChainLocked wires ctrl -> resampler -> volume for the current rates
func (e *Engine) rebuildChainLocked() {
	if e.ctrl == nil {
		return
	}

	var s beep.Streamer = e.ctrl
	if e.format.SampleRate > 0 && e.format.SampleRate != e.rate {
		s = beep.Resample(e.quality, e.format.SampleRate, e.rate, e.ctrl)
	}

	e.volume = &effects.Volume{Streamer: s, Base: 2}
	e.applyVolumeLocked()
}

// applyVolumeLocked maps the linear level onto beep's exponential volume
func (e *Engine) applyVolumeLocked() {
	if e.volume == nil {
		return
	}

	if e.level <= 0 {
		e.volume.Silent = true

		return
	}

	e.volume.Silent = false
	e.volume.Volume = math.Log2(e.level)
}

func (e *Engine) closeSourceLocked() {
	if e.source != nil {
		if err := e.source.Close(); err != nil {
			e.debugf("audio: close %s: %v", e.path, err)
		}
	}

	e.path = ""
	e.source = nil
	e.ctrl = nil
	e.volume = nil
}

func (e *Engine) setStateLocked(state engine.PlaybackState) {
	if e.state == state {
		return
	}

	e.state = state
	e.emitLocked(engine.Event{Kind: engine.PlaybackStateChanged, Path: e.path, State: state})
}

// emitLocked never blocks, the caller may be the audio callback
func (e *Engine) emitLocked(ev engine.Event) {
	if e.closed {
		return
	}

	select {
	case e.events <- ev:
	default:
	}
}

func clampVolume(v float64) float64 {
	return max(0, min(v, 1))
}
