package server

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// CameraPose is the follow camera's position and look target, derived
// from the avatar every tick. The client applies it verbatim.
type CameraPose struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	TargetX float64 `json:"targetX"`
	TargetY float64 `json:"targetY"`
	TargetZ float64 `json:"targetZ"`
}

// followCamera orbits the avatar at the tuned distance and height. Yaw
// and pitch come from accumulated pointer deltas; the camera always
// looks at the avatar's eye position. A zero camera distance collapses
// to first person: the camera sits at the eyes looking along the view
// direction.
func followCamera(player mgl64.Vec3, yaw, pitch float64, tun Tuning) CameraPose {
	eye := player.Add(mgl64.Vec3{0, tun.EyeHeight, 0})

	if tun.CameraDistance == 0 {
		forward := viewDirection(yaw, pitch)
		target := eye.Add(forward)
		return CameraPose{
			X: eye.X(), Y: eye.Y(), Z: eye.Z(),
			TargetX: target.X(), TargetY: target.Y(), TargetZ: target.Z(),
		}
	}

	// Orbit opposite the view direction so the avatar stays in frame.
	back := viewDirection(yaw, pitch).Mul(-tun.CameraDistance)
	position := eye.Add(back).Add(mgl64.Vec3{0, tun.CameraHeight, 0})
	return CameraPose{
		X: position.X(), Y: position.Y(), Z: position.Z(),
		TargetX: eye.X(), TargetY: eye.Y(), TargetZ: eye.Z(),
	}
}

// viewDirection converts yaw/pitch into a unit forward vector under
// the same right-handed, -Z-forward convention the movement rotation
// uses.
func viewDirection(yaw, pitch float64) mgl64.Vec3 {
	cosPitch := math.Cos(pitch)
	return mgl64.Vec3{
		math.Sin(yaw) * cosPitch,
		-math.Sin(pitch),
		-math.Cos(yaw) * cosPitch,
	}
}
