package server

import "time"

const (
	ProtocolVersion   = 1
	writeWait         = 10 * time.Second
	tickRate          = 15 // simulation ticks per second
	heartbeatInterval = 2 * time.Second
	disconnectAfter   = 3 * heartbeatInterval
)

// Movement constants carry the tuning of the original experience; no
// physical units are asserted, consistency across scenes is what
// matters. All of them can be overridden by the tuning file.
const (
	defaultWalkSpeed        = 40.0
	defaultRunMultiplier    = 1.75
	defaultCrouchMultiplier = 0.5
	defaultGravity          = 25.0
	defaultJumpImpulse      = 35.0
	defaultFloorY           = 50.0
	defaultCeilingHeight    = 10.0
	defaultEyeHeight        = 10.0
	defaultWorldBound       = 10000.0
	defaultMouseSensitivity = 0.002
)

// Proximity interaction defaults, overridable via the tuning file.
const (
	defaultProximityRange    = 25.0
	defaultVerticalBand      = 1000.0
	defaultProximityInterval = 100 * time.Millisecond
)

// Default spawn matches the hallway scene entrance.
const (
	defaultSpawnX = 5.23
	defaultSpawnY = 40.0
	defaultSpawnZ = 518.87
)

// Camera follow defaults; per-scene overrides come from the tuning
// file.
const (
	defaultCameraDistance = 6.0
	defaultCameraHeight   = 2.0
)
