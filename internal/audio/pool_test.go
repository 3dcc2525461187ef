package audio

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewSpeakerDecoder_RejectsUnsupportedConfig(t *testing.T) {
	_, err := NewSpeakerDecoder(44100, 1)
	require.Error(t, err)
	_, err = NewSpeakerDecoder(48000, 2)
	require.Error(t, err)

	dec, err := NewSpeakerDecoder(SampleRate, Channels)
	require.NoError(t, err)
	assert.NotNil(t, dec)
}

func TestDecoderPool_GetOrCreate_ReturnsSameInstance(t *testing.T) {
	p := NewDecoderPool(zaptest.NewLogger(t))

	first := p.GetOrCreate("alice")
	require.NotNil(t, first)
	second := p.GetOrCreate("alice")
	assert.Same(t, first, second)

	other := p.GetOrCreate("bob")
	require.NotNil(t, other)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, p.Size())
}

func TestDecoderPool_GetOrCreate_ConcurrentFirstArrival(t *testing.T) {
	p := NewDecoderPool(zaptest.NewLogger(t))

	const goroutines = 64
	var wg sync.WaitGroup
	decoders := make([]*SpeakerDecoder, goroutines)
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decoders[i] = p.GetOrCreate("alice")
		}()
	}
	wg.Wait()

	require.Equal(t, 1, p.Size(), "concurrent first arrivals must construct exactly one decoder")
	for i := range goroutines {
		require.NotNil(t, decoders[i])
		assert.Same(t, decoders[0], decoders[i])
	}
}
