package audio

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrDeviceUnavailable marks a failed speaker or microphone open. Callers
// convert it into the leave-room transition; it never propagates to the
// event loop.
var ErrDeviceUnavailable = errors.New("audio device unavailable")

// PlaybackDevice is an open speaker handle.
type PlaybackDevice interface {
	// Write plays one block of samples, blocking until consumed.
	Write(samples []int16) error
	// Close releases the device. Closing twice is allowed.
	Close() error
}

// CaptureDevice is an open microphone handle.
type CaptureDevice interface {
	// Read fills samples with the next captured block, blocking until full.
	Read(samples []int16) error
	// Close releases the device. Closing twice is allowed.
	Close() error
}

// DeviceOpener opens audio hardware by name. Implementations fall back to
// the system default when the preferred name is unset or does not match an
// available device.
type DeviceOpener interface {
	OpenPlayback(preferredName string) (PlaybackDevice, error)
	OpenCapture(preferredName string) (CaptureDevice, error)
}

// DeviceSession owns the local speaker and microphone handles and enforces
// single-open semantics per role. All methods are safe for concurrent use;
// open and close are serialized per device role.
type DeviceSession struct {
	opener DeviceOpener
	logger *zap.Logger

	speakerMu sync.Mutex
	speaker   PlaybackDevice

	micMu sync.Mutex
	mic   CaptureDevice
}

// NewDeviceSession creates a DeviceSession with both devices closed.
//
// Precondition: opener and logger must be non-nil.
func NewDeviceSession(opener DeviceOpener, logger *zap.Logger) *DeviceSession {
	return &DeviceSession{
		opener: opener,
		logger: logger,
	}
}

// OpenSpeaker opens the playback device if it is not already open.
//
// Postcondition: The speaker is open, or ErrDeviceUnavailable wraps the
// failure. An already-open speaker is left untouched.
func (s *DeviceSession) OpenSpeaker(preferredName string) error {
	s.speakerMu.Lock()
	defer s.speakerMu.Unlock()

	if s.speaker != nil {
		return nil
	}

	dev, err := s.opener.OpenPlayback(preferredName)
	if err != nil {
		return fmt.Errorf("%w: opening speaker: %w", ErrDeviceUnavailable, err)
	}
	s.speaker = dev
	s.logger.Info("speaker open", zap.String("preferred", preferredName))
	return nil
}

// OpenMicrophone opens the capture device if it is not already open.
//
// Postcondition: The microphone is open, or ErrDeviceUnavailable wraps the
// failure. An already-open microphone is left untouched.
func (s *DeviceSession) OpenMicrophone(preferredName string) error {
	s.micMu.Lock()
	defer s.micMu.Unlock()

	if s.mic != nil {
		return nil
	}

	dev, err := s.opener.OpenCapture(preferredName)
	if err != nil {
		return fmt.Errorf("%w: opening microphone: %w", ErrDeviceUnavailable, err)
	}
	s.mic = dev
	s.logger.Info("microphone open", zap.String("preferred", preferredName))
	return nil
}

// SpeakerOpen reports whether the playback device is open.
func (s *DeviceSession) SpeakerOpen() bool {
	s.speakerMu.Lock()
	defer s.speakerMu.Unlock()
	return s.speaker != nil
}

// MicrophoneOpen reports whether the capture device is open.
func (s *DeviceSession) MicrophoneOpen() bool {
	s.micMu.Lock()
	defer s.micMu.Unlock()
	return s.mic != nil
}

// Play writes one decoded block to the speaker, attenuated by volume in
// [0,1]. Frames arriving while the speaker is closed are dropped silently.
func (s *DeviceSession) Play(samples []int16, volume float64) error {
	s.speakerMu.Lock()
	defer s.speakerMu.Unlock()

	if s.speaker == nil {
		return nil
	}
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	if volume != 1 {
		attenuated := make([]int16, len(samples))
		for i, v := range samples {
			attenuated[i] = int16(float64(v) * volume)
		}
		samples = attenuated
	}
	if err := s.speaker.Write(samples); err != nil {
		return fmt.Errorf("writing to speaker: %w", err)
	}
	return nil
}

// CloseBoth releases both devices. Closing an already-closed device is a
// no-op; errors during close are logged, not returned.
func (s *DeviceSession) CloseBoth() {
	s.speakerMu.Lock()
	if s.speaker != nil {
		if err := s.speaker.Close(); err != nil {
			s.logger.Warn("closing speaker", zap.Error(err))
		}
		s.speaker = nil
	}
	s.speakerMu.Unlock()

	s.micMu.Lock()
	if s.mic != nil {
		if err := s.mic.Close(); err != nil {
			s.logger.Warn("closing microphone", zap.Error(err))
		}
		s.mic = nil
	}
	s.micMu.Unlock()
}
