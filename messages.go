package server

import (
	"phantom-box/server/internal/assets"
	"phantom-box/server/internal/emotion"
)

// Client → server message envelope. Type selects which optional block
// is meaningful.
type clientMessage struct {
	Type      string  `json:"type"`
	DX        float64 `json:"dx,omitempty"`
	DZ        float64 `json:"dz,omitempty"`
	Jump      bool    `json:"jump,omitempty"`
	Run       bool    `json:"run,omitempty"`
	Crouch    bool    `json:"crouch,omitempty"`
	LookDX    float64 `json:"lookDx,omitempty"`
	LookDY    float64 `json:"lookDy,omitempty"`
	AssetID   string  `json:"assetId,omitempty"`
	Memory    string  `json:"memory,omitempty"`
	Emotion   string  `json:"emotion,omitempty"`
	Intensity int     `json:"intensity,omitempty"`
	Location  string  `json:"location,omitempty"`
	SentAt    int64   `json:"sentAt,omitempty"`
}

type joinResponse struct {
	Ver     int              `json:"ver"`
	ID      string           `json:"id"`
	Players []Player         `json:"players"`
	Assets  []AssetPlacement `json:"assets"`
	Config  Tuning           `json:"config"`
}

type stateMessage struct {
	Ver        int      `json:"ver"`
	Type       string   `json:"type"`
	Players    []Player `json:"players"`
	Tick       uint64   `json:"t"`
	ServerTime int64    `json:"serverTime"`
}

// modalMessage surfaces an asset descriptor when the player walks into
// range. PointerLock false tells the client to release exclusive
// pointer capture before showing conventional UI.
type modalMessage struct {
	Ver         int               `json:"ver"`
	Type        string            `json:"type"`
	Asset       assets.Descriptor `json:"asset"`
	PointerLock bool              `json:"pointerLock"`
}

type collectedMessage struct {
	Ver         int      `json:"ver"`
	Type        string   `json:"type"`
	AssetID     string   `json:"assetId"`
	Collected   []string `json:"collected"`
	PointerLock bool     `json:"pointerLock"`
}

type dismissedMessage struct {
	Ver         int    `json:"ver"`
	Type        string `json:"type"`
	AssetID     string `json:"assetId"`
	PointerLock bool   `json:"pointerLock"`
}

// completionMessage fires exactly once per session, when the collected
// set equals the collectible universe.
type completionMessage struct {
	Ver       int      `json:"ver"`
	Type      string   `json:"type"`
	Collected []string `json:"collected"`
	Message   string   `json:"message"`
}

// sceneMessage answers an experience submission with the derived
// scene and the resolved collectible documents placed in it.
type sceneMessage struct {
	Ver      int                    `json:"ver"`
	Type     string                 `json:"type"`
	Emotion  string                 `json:"emotion"`
	Analyzed bool                   `json:"analyzed"`
	Scene    emotion.SceneConfig    `json:"scene"`
	Assets   []AssetPlacement       `json:"assets"`
	Resolved []assets.ResolvedScene `json:"resolved"`
}

type heartbeatMessage struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rtt"`
}

type diagnosticsPlayer struct {
	Ver           int    `json:"ver"`
	ID            string `json:"id"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rttMillis"`
	Collected     int    `json:"collected"`
}

func (joinResponse) ProtoJoinResponse()    {}
func (stateMessage) ProtoStateSnapshot()   {}
func (modalMessage) ProtoModalEvent()      {}
func (completionMessage) ProtoCompletion() {}
func (sceneMessage) ProtoSceneAssignment() {}
