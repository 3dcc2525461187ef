package audio

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakePlayback struct {
	mu     sync.Mutex
	writes [][]int16
	closes int
}

func (f *fakePlayback) Write(samples []int16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	block := make([]int16, len(samples))
	copy(block, samples)
	f.writes = append(f.writes, block)
	return nil
}

func (f *fakePlayback) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

type fakeCapture struct {
	mu     sync.Mutex
	closes int
}

func (f *fakeCapture) Read(samples []int16) error { return nil }

func (f *fakeCapture) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

type fakeOpener struct {
	mu           sync.Mutex
	failPlayback bool
	failCapture  bool
	playbacks    []*fakePlayback
	captures     []*fakeCapture
}

func (f *fakeOpener) OpenPlayback(preferredName string) (PlaybackDevice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPlayback {
		return nil, errors.New("no such output device")
	}
	dev := &fakePlayback{}
	f.playbacks = append(f.playbacks, dev)
	return dev, nil
}

func (f *fakeOpener) OpenCapture(preferredName string) (CaptureDevice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCapture {
		return nil, errors.New("no such input device")
	}
	dev := &fakeCapture{}
	f.captures = append(f.captures, dev)
	return dev, nil
}

func newTestSession(t *testing.T, opener *fakeOpener) *DeviceSession {
	t.Helper()
	return NewDeviceSession(opener, zaptest.NewLogger(t))
}

func TestDeviceSession_OpenSpeaker_Idempotent(t *testing.T) {
	opener := &fakeOpener{}
	s := newTestSession(t, opener)

	require.NoError(t, s.OpenSpeaker(""))
	require.NoError(t, s.OpenSpeaker(""))
	assert.Len(t, opener.playbacks, 1, "second open must not create a new handle")
	assert.True(t, s.SpeakerOpen())
}

func TestDeviceSession_OpenMicrophone_Failure(t *testing.T) {
	opener := &fakeOpener{failCapture: true}
	s := newTestSession(t, opener)

	err := s.OpenMicrophone("Broken Mic")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
	assert.False(t, s.MicrophoneOpen())
}

func TestDeviceSession_Play_AttenuatesVolume(t *testing.T) {
	opener := &fakeOpener{}
	s := newTestSession(t, opener)
	require.NoError(t, s.OpenSpeaker(""))

	require.NoError(t, s.Play([]int16{1000, -1000, 0}, 0.5))

	dev := opener.playbacks[0]
	require.Len(t, dev.writes, 1)
	assert.Equal(t, []int16{500, -500, 0}, dev.writes[0])
}

func TestDeviceSession_Play_FullVolumePassesThrough(t *testing.T) {
	opener := &fakeOpener{}
	s := newTestSession(t, opener)
	require.NoError(t, s.OpenSpeaker(""))

	require.NoError(t, s.Play([]int16{123, -456}, 1))
	assert.Equal(t, []int16{123, -456}, opener.playbacks[0].writes[0])
}

func TestDeviceSession_Play_ClosedSpeakerDropsFrame(t *testing.T) {
	s := newTestSession(t, &fakeOpener{})
	assert.NoError(t, s.Play([]int16{1, 2, 3}, 1))
}

func TestDeviceSession_CloseBoth_Idempotent(t *testing.T) {
	opener := &fakeOpener{}
	s := newTestSession(t, opener)
	require.NoError(t, s.OpenSpeaker(""))
	require.NoError(t, s.OpenMicrophone(""))

	s.CloseBoth()
	s.CloseBoth()

	assert.Equal(t, 1, opener.playbacks[0].closes)
	assert.Equal(t, 1, opener.captures[0].closes)
	assert.False(t, s.SpeakerOpen())
	assert.False(t, s.MicrophoneOpen())
}
