// Package audio implements the voice pipeline of the companion client: a
// per-speaker opus decoder pool, the speaker/microphone device session, the
// voice room state machine, and proximity-based volume attenuation.
package audio

import (
	"fmt"
	"sync"

	"github.com/pion/opus"
)

// Codec parameters shared by every decoder in the pool. Frames are 20ms of
// 48kHz mono audio.
const (
	SampleRate   = 48000
	Channels     = 1
	FrameSamples = SampleRate / 50
)

// SpeakerDecoder converts compressed frames from one remote speaker into
// playable samples. Safe for concurrent use; frames from the same speaker
// are decoded one at a time because the decoder carries inter-frame state.
type SpeakerDecoder struct {
	mu  sync.Mutex
	dec opus.Decoder
	pcm []byte
}

// NewSpeakerDecoder creates a decoder for the given codec configuration.
//
// Precondition: sampleRate and channels must match the pool-wide SampleRate
// and Channels constants; other configurations are rejected.
// Postcondition: Returns a ready decoder or a non-nil error.
func NewSpeakerDecoder(sampleRate, channels int) (*SpeakerDecoder, error) {
	if sampleRate != SampleRate || channels != Channels {
		return nil, fmt.Errorf("unsupported codec configuration %dHz/%dch, want %dHz/%dch",
			sampleRate, channels, SampleRate, Channels)
	}
	return &SpeakerDecoder{
		dec: opus.NewDecoder(),
		pcm: make([]byte, FrameSamples*2),
	}, nil
}

// Decode decompresses one frame into signed 16-bit samples.
//
// Precondition: frame must be a complete compressed frame.
// Postcondition: Returns the decoded samples, or a non-nil error for
// malformed frames. Callers skip playback for the frame on error.
func (d *SpeakerDecoder) Decode(frame []byte) ([]int16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, _, err := d.dec.Decode(frame, d.pcm); err != nil {
		return nil, fmt.Errorf("decoding audio frame: %w", err)
	}

	samples := make([]int16, FrameSamples)
	for i := range samples {
		samples[i] = int16(d.pcm[2*i]) | int16(d.pcm[2*i+1])<<8
	}
	return samples, nil
}
