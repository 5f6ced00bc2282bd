package server

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"phantom-box/server/internal/geom"
)

// stepPlayer advances one avatar by dt seconds. Order within a tick:
// look angles were already applied when the input arrived, so the
// intent rotation below always uses the same yaw the camera will
// render with — camera and movement direction cannot desynchronize
// inside a frame.
func stepPlayer(state *playerState, dt float64, tun Tuning) {
	// Gravity accumulates before the jump check so a jump issued on
	// the same tick the player lands still fires.
	state.velocityY -= tun.Gravity * dt

	speed := tun.WalkSpeed
	if state.running {
		speed *= tun.RunMultiplier
	}
	if state.crouching {
		speed *= tun.CrouchMultiplier
	}

	dx, dz := geom.NormalizeIntent(state.intentX, state.intentZ)
	move := geom.RotateIntentY(mgl64.Vec3{dx, 0, dz}, state.Yaw).Mul(speed * dt)

	state.X += move.X()
	state.Z += move.Z()

	if state.jumpHeld && state.Grounded {
		state.velocityY = tun.JumpImpulse
		state.Grounded = false
	}

	state.Y += state.velocityY * dt

	floor := tun.FloorY
	ceiling := tun.FloorY + tun.CeilingHeight
	if state.Y <= floor {
		state.Y = floor
		state.velocityY = 0
		state.Grounded = true
	} else if state.Y >= ceiling {
		state.Y = ceiling
		state.velocityY = 0
	}

	state.X = geom.Clamp(state.X, -tun.WorldBound, tun.WorldBound)
	state.Z = geom.Clamp(state.Z, -tun.WorldBound, tun.WorldBound)

	state.Camera = followCamera(state.position(), state.Yaw, state.Pitch, tun)
}

// applyLook accumulates pointer deltas into look angles. Vertical look
// is clamped to straight up/down; horizontal wraps freely.
func applyLook(state *playerState, dx, dy float64, tun Tuning) {
	state.Yaw += dx * tun.MouseSensitivity
	state.Pitch += dy * tun.MouseSensitivity
	state.Pitch = geom.Clamp(state.Pitch, -math.Pi/2, math.Pi/2)
}
