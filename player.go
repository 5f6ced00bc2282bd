package server

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"phantom-box/server/internal/assets"
	"phantom-box/server/internal/emotion"
)

// Player is the wire-visible avatar state.
type Player struct {
	ID       string     `json:"id"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Z        float64    `json:"z"`
	Yaw      float64    `json:"yaw"`
	Pitch    float64    `json:"pitch"`
	Grounded bool       `json:"grounded"`
	Camera   CameraPose `json:"camera"`
}

// Experience is what the multi-step form submits: the memory text and
// its emotional framing. Held in memory for the session only.
type Experience struct {
	Memory          string          `json:"memory"`
	Emotion         emotion.Emotion `json:"emotion"`
	Intensity       int             `json:"intensity"`
	Location        string          `json:"location"`
	AnalyzedEmotion emotion.Emotion `json:"analyzedEmotion"`
}

// playerState is the authoritative per-session state. All fields are
// guarded by the hub mutex; snapshots copy the embedded Player so
// broadcasts never observe a half-written frame.
type playerState struct {
	Player

	intentX   float64
	intentZ   float64
	jumpHeld  bool
	running   bool
	crouching bool
	velocityY float64

	experience    *Experience
	scene         *emotion.SceneConfig
	resolved      []assets.ResolvedScene
	labelAnalyzed bool

	interactions map[string]*interactionState
	collected    map[string]bool
	completed    bool

	lastInput     time.Time
	lastHeartbeat time.Time
	lastRTT       time.Duration
}

func newPlayerState(id string, tun Tuning, now time.Time) *playerState {
	p := &playerState{
		Player: Player{
			ID:       id,
			X:        tun.SpawnX,
			Y:        tun.SpawnY,
			Z:        tun.SpawnZ,
			Grounded: false,
		},
		interactions:  make(map[string]*interactionState),
		collected:     make(map[string]bool),
		lastHeartbeat: now,
	}
	for _, placement := range scenePlacements() {
		p.interactions[placement.AssetID] = &interactionState{phase: phaseFar}
	}
	p.Camera = followCamera(p.position(), p.Yaw, p.Pitch, tun)
	return p
}

func (p *playerState) position() mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

// resetForScene moves the player back to spawn and wipes transient
// physics; collection state survives a scene change only when the
// scene itself does, so it is cleared too.
func (p *playerState) resetForScene(tun Tuning) {
	p.X, p.Y, p.Z = tun.SpawnX, tun.SpawnY, tun.SpawnZ
	p.Yaw, p.Pitch = 0, 0
	p.velocityY = 0
	p.intentX, p.intentZ = 0, 0
	p.jumpHeld, p.running, p.crouching = false, false, false
	p.collected = make(map[string]bool)
	p.completed = false
	for id := range p.interactions {
		p.interactions[id] = &interactionState{phase: phaseFar}
	}
	p.Camera = followCamera(p.position(), p.Yaw, p.Pitch, tun)
}

func (p *playerState) collectedIDs() []string {
	ids := make([]string, 0, len(p.collected))
	for _, id := range collectibleOrder() {
		if p.collected[id] {
			ids = append(ids, id)
		}
	}
	return ids
}
