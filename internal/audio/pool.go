package audio

import (
	"sync"

	"go.uber.org/zap"
)

// DecoderPool owns one SpeakerDecoder per remote speaker, created on first
// frame. Entries live for the whole session; speakers that disconnect keep
// their decoder so redelivered frames stay decodable.
// All methods are safe for concurrent use.
type DecoderPool struct {
	mu       sync.Mutex
	logger   *zap.Logger
	decoders map[string]*SpeakerDecoder
}

// NewDecoderPool creates an empty DecoderPool.
//
// Precondition: logger must be non-nil.
func NewDecoderPool(logger *zap.Logger) *DecoderPool {
	return &DecoderPool{
		logger:   logger,
		decoders: make(map[string]*SpeakerDecoder),
	}
}

// GetOrCreate returns the decoder for the given speaker, constructing one
// if the speaker has never been heard before.
//
// Precondition: speaker must be non-empty.
// Postcondition: Concurrent calls with the same key observe the same decoder
// instance; at most one decoder is ever constructed per key. Returns nil
// when construction fails, in which case nothing is cached and the caller
// must skip playback for the frame.
func (p *DecoderPool) GetOrCreate(speaker string) *SpeakerDecoder {
	p.mu.Lock()
	defer p.mu.Unlock()

	if dec, ok := p.decoders[speaker]; ok {
		return dec
	}

	dec, err := NewSpeakerDecoder(SampleRate, Channels)
	if err != nil {
		p.logger.Error("creating speaker decoder",
			zap.String("speaker", speaker),
			zap.Error(err),
		)
		return nil
	}

	p.decoders[speaker] = dec
	return dec
}

// Size returns the number of decoders currently in the pool.
func (p *DecoderPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.decoders)
}
