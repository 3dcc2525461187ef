package audio

import (
	"sync"

	"go.uber.org/zap"
)

// Membership is how this client entered the active voice room.
type Membership int

const (
	MembershipNone Membership = iota
	MembershipCreated
	MembershipJoined
)

// RoomState is a snapshot of the voice room state machine.
type RoomState struct {
	Active     bool
	Code       string
	Membership Membership
	Proximity  bool
}

// RoomManager is the voice room state machine: Idle, or Active with a room
// code and an optional proximity-mixing flag. Transitions drive device
// acquisition and release on the underlying DeviceSession.
// All methods are safe for concurrent use.
type RoomManager struct {
	mu      sync.Mutex
	logger  *zap.Logger
	devices *DeviceSession

	speakerName string
	micName     string

	active     bool
	code       string
	membership Membership
	proximity  bool
}

// NewRoomManager creates an idle RoomManager.
//
// Precondition: devices and logger must be non-nil. speakerName and micName
// are the configured preferred device names; empty means system default.
func NewRoomManager(devices *DeviceSession, speakerName, micName string, logger *zap.Logger) *RoomManager {
	return &RoomManager{
		logger:      logger,
		devices:     devices,
		speakerName: speakerName,
		micName:     micName,
	}
}

// Enter transitions Idle -> Active{code} after acquiring both devices.
// Entering while already active refreshes the room code and re-runs the
// idempotent acquisition without reopening devices.
//
// Precondition: code must be non-empty.
// Postcondition: On success both devices are open and the room is active.
// On failure every device is closed again, the machine stays (or returns
// to) Idle, and the error is returned for the caller to convert into a
// leave emission.
func (r *RoomManager) Enter(code string, membership Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		r.logger.Warn("room entered while already active, refreshing code",
			zap.String("old_code", r.code),
			zap.String("new_code", code),
		)
	}

	if err := r.acquireLocked(); err != nil {
		r.devices.CloseBoth()
		r.active = false
		r.code = ""
		r.membership = MembershipNone
		r.proximity = false
		return err
	}

	r.active = true
	r.code = code
	r.membership = membership
	return nil
}

// SetProximity toggles proximity mixing. Enabling opens any device that is
// not yet open, leaving already-open handles untouched; disabling closes
// both devices unconditionally.
//
// Postcondition: Returns a device acquisition error only when enabling;
// disabling never fails.
func (r *RoomManager) SetProximity(enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !enabled {
		r.proximity = false
		r.devices.CloseBoth()
		return nil
	}

	if err := r.acquireLocked(); err != nil {
		return err
	}
	if !r.active {
		// The server only toggles proximity for room members; tolerate the
		// stray toggle but keep the membership invariant intact.
		r.logger.Warn("proximity enabled with no active room")
		return nil
	}
	r.proximity = true
	return nil
}

// Leave transitions Active -> Idle and releases both devices. Leaving while
// idle is a no-op apart from the device teardown.
func (r *RoomManager) Leave() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.active = false
	r.code = ""
	r.membership = MembershipNone
	r.proximity = false
	r.devices.CloseBoth()
}

// State returns a snapshot of the state machine.
func (r *RoomManager) State() RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomState{
		Active:     r.active,
		Code:       r.code,
		Membership: r.membership,
		Proximity:  r.proximity,
	}
}

// acquireLocked opens any not-yet-open device using the configured
// preferred names. Idempotent for already-open devices.
func (r *RoomManager) acquireLocked() error {
	if err := r.devices.OpenSpeaker(r.speakerName); err != nil {
		return err
	}
	if err := r.devices.OpenMicrophone(r.micName); err != nil {
		return err
	}
	return nil
}
