package audio

import "math"

// Vec3 is an in-world position.
type Vec3 struct {
	X, Y, Z float64
}

// DistanceTo returns the euclidean distance to another position.
func (v Vec3) DistanceTo(o Vec3) float64 {
	dx, dy, dz := v.X-o.X, v.Y-o.Y, v.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Entity is a live in-world entity resolved from a speaker name.
type Entity struct {
	Name string
	Pos  Vec3
}

// WorldLookup resolves speakers to live in-world entities. Implementations
// are read-only views over the game world and must be safe for concurrent
// use.
type WorldLookup interface {
	// NearbyPlayer returns the entity for the named player if one is loaded
	// near the local player, or false when the speaker is not present.
	NearbyPlayer(name string) (Entity, bool)
	// ListenerPosition returns the local player's current position.
	ListenerPosition() Vec3
}

// Calculator computes the proximity attenuation for a speaking participant.
// It has no side effects; every call reads the current world state.
type Calculator struct {
	world  WorldLookup
	radius float64
}

// NewCalculator creates a Calculator with the given audible radius.
//
// Precondition: world must be non-nil; radius must be > 0.
func NewCalculator(world WorldLookup, radius float64) *Calculator {
	return &Calculator{
		world:  world,
		radius: radius,
	}
}

// Resolve looks up the speaker in the world and returns the entity with a
// volume multiplier in [0,1] that decreases linearly with distance.
//
// Postcondition: Returns false when the speaker has no live entity in
// range; the caller drops the frame silently. The multiplier is 1 at zero
// distance and 0 at or beyond the audible radius.
func (c *Calculator) Resolve(speaker string) (Entity, float64, bool) {
	ent, ok := c.world.NearbyPlayer(speaker)
	if !ok {
		return Entity{}, 0, false
	}

	dist := c.world.ListenerPosition().DistanceTo(ent.Pos)
	volume := 1 - dist/c.radius
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	return ent, volume, true
}
