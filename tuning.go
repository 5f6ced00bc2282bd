package server

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Tuning gathers the gameplay scalars that were empirically tuned in
// the original experience. Values are loaded from a yaml file when one
// is configured and otherwise fall back to the built-in defaults.
type Tuning struct {
	WalkSpeed        float64 `yaml:"walk_speed"`
	RunMultiplier    float64 `yaml:"run_multiplier"`
	CrouchMultiplier float64 `yaml:"crouch_multiplier"`
	Gravity          float64 `yaml:"gravity"`
	JumpImpulse      float64 `yaml:"jump_impulse"`
	FloorY           float64 `yaml:"floor_y"`
	CeilingHeight    float64 `yaml:"ceiling_height"`
	EyeHeight        float64 `yaml:"eye_height"`
	WorldBound       float64 `yaml:"world_bound"`
	MouseSensitivity float64 `yaml:"mouse_sensitivity"`

	ProximityRange      float64 `yaml:"proximity_range"`
	VerticalBand        float64 `yaml:"vertical_band"`
	ProximityIntervalMS int     `yaml:"proximity_interval_ms"`

	CameraDistance float64 `yaml:"camera_distance"`
	CameraHeight   float64 `yaml:"camera_height"`

	SpawnX float64 `yaml:"spawn_x"`
	SpawnY float64 `yaml:"spawn_y"`
	SpawnZ float64 `yaml:"spawn_z"`
}

func DefaultTuning() Tuning {
	return Tuning{
		WalkSpeed:           defaultWalkSpeed,
		RunMultiplier:       defaultRunMultiplier,
		CrouchMultiplier:    defaultCrouchMultiplier,
		Gravity:             defaultGravity,
		JumpImpulse:         defaultJumpImpulse,
		FloorY:              defaultFloorY,
		CeilingHeight:       defaultCeilingHeight,
		EyeHeight:           defaultEyeHeight,
		WorldBound:          defaultWorldBound,
		MouseSensitivity:    defaultMouseSensitivity,
		ProximityRange:      defaultProximityRange,
		VerticalBand:        defaultVerticalBand,
		ProximityIntervalMS: int(defaultProximityInterval / time.Millisecond),
		CameraDistance:      defaultCameraDistance,
		CameraHeight:        defaultCameraHeight,
		SpawnX:              defaultSpawnX,
		SpawnY:              defaultSpawnY,
		SpawnZ:              defaultSpawnZ,
	}
}

// LoadTuning reads a yaml tuning file over the defaults, so a partial
// file only overrides what it names.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t, nil
}

// ProximityInterval converts the tuned poll cadence to a duration,
// guarding against non-positive values.
func (t Tuning) ProximityInterval() time.Duration {
	if t.ProximityIntervalMS <= 0 {
		return defaultProximityInterval
	}
	return time.Duration(t.ProximityIntervalMS) * time.Millisecond
}
