// ABOUTME: PortAudio output backend: device enumeration and non-interleaved float32 streams
// ABOUTME: Device IDs are indexes into portaudio.Devices() and only valid for one process run

package audio

import (
	"errors"
	"fmt"

	"github.com/gopxl/beep/v2"
	"github.com/gordonklaus/portaudio"

	"cover-player/engine"
)

const framesPerBuffer = 1024

var errNoOutputDevice = errors.New("no output device available")

// output is an opened, possibly running, device stream
type output interface {
	Start() error
	Stop() error
	Close() error
	SampleRate() beep.SampleRate
}

// backend enumerates devices and opens streams on them
type backend interface {
	Devices() ([]engine.Device, error)
	Open(dev engine.Device, render func(out [][]float32)) (output, error)
	Close() error
}

type portaudioBackend struct{}

func newPortaudioBackend() (*portaudioBackend, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	return &portaudioBackend{}, nil
}

func (b *portaudioBackend) Devices() ([]engine.Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]engine.Device, 0, len(infos))

	for i, info := range infos {
		if info.MaxOutputChannels < 1 {
			continue
		}

		devices = append(devices, engine.Device{ID: i, Description: describe(info)})
	}

	return devices, nil
}

func describe(info *portaudio.DeviceInfo) string {
	if info.HostApi == nil || info.HostApi.Name == "" {
		return info.Name
	}

	return fmt.Sprintf("%s (%s)", info.Name, info.HostApi.Name)
}

func (b *portaudioBackend) lookup(dev engine.Device) (*portaudio.DeviceInfo, error) {
	if dev.ID >= 0 {
		infos, err := portaudio.Devices()
		if err != nil {
			return nil, fmt.Errorf("failed to list devices: %w", err)
		}

		if dev.ID < len(infos) && infos[dev.ID].MaxOutputChannels > 0 {
			return infos[dev.ID], nil
		}
	}

	info, err := portaudio.DefaultOutputDevice()
	if err != nil || info == nil {
		return nil, errNoOutputDevice
	}

	return info, nil
}

func (b *portaudioBackend) Open(dev engine.Device, render func(out [][]float32)) (output, error) {
	info, err := b.lookup(dev)
	if err != nil {
		return nil, err
	}

	params := portaudio.HighLatencyParameters(nil, info)
	params.Output.Channels = min(2, info.MaxOutputChannels)
	params.SampleRate = info.DefaultSampleRate
	params.FramesPerBuffer = framesPerBuffer

	stream, err := portaudio.OpenStream(params, render)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream on %s: %w", info.Name, err)
	}

	return &portaudioOutput{stream: stream, rate: beep.SampleRate(int(params.SampleRate))}, nil
}

func (b *portaudioBackend) Close() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}

	return nil
}

type portaudioOutput struct {
	stream *portaudio.Stream
	rate   beep.SampleRate
}

func (o *portaudioOutput) Start() error { return o.stream.Start() }
func (o *portaudioOutput) Stop() error  { return o.stream.Stop() }
func (o *portaudioOutput) Close() error { return o.stream.Close() }

func (o *portaudioOutput) SampleRate() beep.SampleRate { return o.rate }
