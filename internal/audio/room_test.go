package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRoom(t *testing.T, opener *fakeOpener) *RoomManager {
	t.Helper()
	devices := NewDeviceSession(opener, zaptest.NewLogger(t))
	return NewRoomManager(devices, "Preferred Speaker", "Preferred Mic", zaptest.NewLogger(t))
}

func TestRoomManager_Enter_AcquiresDevices(t *testing.T) {
	opener := &fakeOpener{}
	r := newTestRoom(t, opener)

	require.NoError(t, r.Enter("ABC", MembershipCreated))

	st := r.State()
	assert.True(t, st.Active)
	assert.Equal(t, "ABC", st.Code)
	assert.Equal(t, MembershipCreated, st.Membership)
	assert.False(t, st.Proximity)
	assert.Len(t, opener.playbacks, 1)
	assert.Len(t, opener.captures, 1)
}

func TestRoomManager_Enter_DeviceFailureRollsBack(t *testing.T) {
	opener := &fakeOpener{failCapture: true}
	r := newTestRoom(t, opener)

	err := r.Enter("ABC", MembershipJoined)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeviceUnavailable)

	st := r.State()
	assert.False(t, st.Active, "failed acquisition must leave the machine idle")
	assert.Equal(t, "", st.Code)
	// The speaker opened before the microphone failed; rollback closes it.
	require.Len(t, opener.playbacks, 1)
	assert.Equal(t, 1, opener.playbacks[0].closes)
}

func TestRoomManager_Enter_WhileActiveRefreshesCode(t *testing.T) {
	opener := &fakeOpener{}
	r := newTestRoom(t, opener)
	require.NoError(t, r.Enter("ABC", MembershipCreated))

	require.NoError(t, r.Enter("XYZ", MembershipJoined))

	st := r.State()
	assert.Equal(t, "XYZ", st.Code)
	assert.Len(t, opener.playbacks, 1, "refresh must not reopen devices")
	assert.Len(t, opener.captures, 1)
}

func TestRoomManager_SetProximity_LazyPartialAcquisition(t *testing.T) {
	opener := &fakeOpener{}
	devices := NewDeviceSession(opener, zaptest.NewLogger(t))
	r := NewRoomManager(devices, "", "", zaptest.NewLogger(t))

	require.NoError(t, r.Enter("ABC", MembershipJoined))
	speaker := opener.playbacks[0]

	// Drop only the microphone, then re-enable proximity.
	devices.micMu.Lock()
	_ = devices.mic.Close()
	devices.mic = nil
	devices.micMu.Unlock()

	require.NoError(t, r.SetProximity(true))

	st := r.State()
	assert.True(t, st.Proximity)
	require.Len(t, opener.playbacks, 1, "open speaker must keep its handle")
	assert.Equal(t, speaker, opener.playbacks[0])
	assert.Len(t, opener.captures, 2, "closed microphone must be reopened")
}

func TestRoomManager_SetProximity_DisableClosesBoth(t *testing.T) {
	opener := &fakeOpener{}
	r := newTestRoom(t, opener)
	require.NoError(t, r.Enter("ABC", MembershipCreated))
	require.NoError(t, r.SetProximity(true))

	require.NoError(t, r.SetProximity(false))

	st := r.State()
	assert.True(t, st.Active, "disabling proximity keeps room membership")
	assert.False(t, st.Proximity)
	assert.Equal(t, 1, opener.playbacks[0].closes)
	assert.Equal(t, 1, opener.captures[0].closes)
}

func TestRoomManager_SetProximity_WhileIdleKeepsInvariant(t *testing.T) {
	opener := &fakeOpener{}
	r := newTestRoom(t, opener)

	require.NoError(t, r.SetProximity(true))

	st := r.State()
	assert.False(t, st.Active)
	assert.False(t, st.Proximity, "proximity flag requires room membership")
}

func TestRoomManager_Leave_ClosesDevicesAndResets(t *testing.T) {
	opener := &fakeOpener{}
	r := newTestRoom(t, opener)
	require.NoError(t, r.Enter("ABC", MembershipJoined))

	r.Leave()

	st := r.State()
	assert.False(t, st.Active)
	assert.Equal(t, MembershipNone, st.Membership)
	assert.Equal(t, 1, opener.playbacks[0].closes)
	assert.Equal(t, 1, opener.captures[0].closes)
}
