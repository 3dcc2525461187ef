package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudioOpener opens real speaker and microphone handles through
// PortAudio. The process must call portaudio.Initialize before the first
// open and portaudio.Terminate on shutdown.
type PortAudioOpener struct{}

// OpenPlayback opens the named output device, or the system default when
// the name is empty or matches no device.
func (PortAudioOpener) OpenPlayback(preferredName string) (PlaybackDevice, error) {
	dev, err := outputDeviceByName(preferredName)
	if err != nil {
		return nil, err
	}

	params := portaudio.LowLatencyParameters(nil, dev)
	params.Output.Channels = Channels
	params.SampleRate = SampleRate
	params.FramesPerBuffer = FrameSamples

	buf := make([]int16, FrameSamples)
	stream, err := portaudio.OpenStream(params, &buf)
	if err != nil {
		return nil, fmt.Errorf("opening playback stream on %q: %w", dev.Name, err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("starting playback stream on %q: %w", dev.Name, err)
	}
	return &portAudioPlayback{stream: stream, buf: buf}, nil
}

// OpenCapture opens the named input device, or the system default when the
// name is empty or matches no device.
func (PortAudioOpener) OpenCapture(preferredName string) (CaptureDevice, error) {
	dev, err := inputDeviceByName(preferredName)
	if err != nil {
		return nil, err
	}

	params := portaudio.LowLatencyParameters(dev, nil)
	params.Input.Channels = Channels
	params.SampleRate = SampleRate
	params.FramesPerBuffer = FrameSamples

	buf := make([]int16, FrameSamples)
	stream, err := portaudio.OpenStream(params, &buf)
	if err != nil {
		return nil, fmt.Errorf("opening capture stream on %q: %w", dev.Name, err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("starting capture stream on %q: %w", dev.Name, err)
	}
	return &portAudioCapture{stream: stream, buf: buf}, nil
}

type portAudioPlayback struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	buf    []int16
	closed bool
}

func (p *portAudioPlayback) Write(samples []int16) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("playback device is closed")
	}
	for len(samples) > 0 {
		n := copy(p.buf, samples)
		for i := n; i < len(p.buf); i++ {
			p.buf[i] = 0
		}
		samples = samples[n:]
		if err := p.stream.Write(); err != nil {
			return fmt.Errorf("writing playback block: %w", err)
		}
	}
	return nil
}

func (p *portAudioPlayback) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	_ = p.stream.Stop()
	return p.stream.Close()
}

type portAudioCapture struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	buf    []int16
	closed bool
}

func (c *portAudioCapture) Read(samples []int16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("capture device is closed")
	}
	for read := 0; read < len(samples); {
		if err := c.stream.Read(); err != nil {
			return fmt.Errorf("reading capture block: %w", err)
		}
		read += copy(samples[read:], c.buf)
	}
	return nil
}

func (c *portAudioCapture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	_ = c.stream.Stop()
	return c.stream.Close()
}

func outputDeviceByName(name string) (*portaudio.DeviceInfo, error) {
	if name != "" {
		devices, err := portaudio.Devices()
		if err != nil {
			return nil, fmt.Errorf("enumerating audio devices: %w", err)
		}
		for _, d := range devices {
			if d.Name == name && d.MaxOutputChannels > 0 {
				return d, nil
			}
		}
	}
	dev, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return nil, fmt.Errorf("resolving default output device: %w", err)
	}
	return dev, nil
}

func inputDeviceByName(name string) (*portaudio.DeviceInfo, error) {
	if name != "" {
		devices, err := portaudio.Devices()
		if err != nil {
			return nil, fmt.Errorf("enumerating audio devices: %w", err)
		}
		for _, d := range devices {
			if d.Name == name && d.MaxInputChannels > 0 {
				return d, nil
			}
		}
	}
	dev, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, fmt.Errorf("resolving default input device: %w", err)
	}
	return dev, nil
}
