// Package geom holds the small amount of vector math the simulation
// needs on top of mathgl.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RotateIntentY rotates a move-intent vector around the Y axis so that
// "forward" tracks the camera's horizontal look angle. The convention
// is right-handed with -Z as forward at yaw 0; positive yaw turns the
// view to the right, which is a rotation of the intent by -yaw.
func RotateIntentY(v mgl64.Vec3, yaw float64) mgl64.Vec3 {
	return mgl64.Rotate3DY(-yaw).Mul3x1(v)
}

// NormalizeIntent scales a held-key intent down to unit length so a
// diagonal is never faster than a single axis. Sub-unit intents pass
// through unchanged (analog input stays analog).
func NormalizeIntent(x, z float64) (float64, float64) {
	length := math.Hypot(x, z)
	if length > 1 {
		x /= length
		z /= length
	}
	return x, z
}

// HorizontalDistance ignores the vertical component; the interaction
// range check uses it together with a separate vertical band.
func HorizontalDistance(a, b mgl64.Vec3) float64 {
	return math.Hypot(a.X()-b.X(), a.Z()-b.Z())
}

// Clamp bounds v to [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
