package server

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"phantom-box/server/internal/assets"
	"phantom-box/server/internal/emotion"
	"phantom-box/server/logging"
)

// Hub owns all live sessions and the shared asset pipeline. Every
// mutation of player state happens under mu; snapshots are taken under
// the lock and broadcast after it is released.
type Hub struct {
	mu          sync.Mutex
	players     map[string]*playerState
	subscribers map[string]*subscriber

	tuning    Tuning
	labels    *emotion.Client
	resolver  *assets.Resolver
	publisher logging.Publisher

	currentTick uint64
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewHub(tun Tuning, labels *emotion.Client, resolver *assets.Resolver, publisher logging.Publisher) *Hub {
	if publisher == nil {
		publisher = logging.NopPublisher{}
	}
	return &Hub{
		players:     make(map[string]*playerState),
		subscribers: make(map[string]*subscriber),
		tuning:      tun,
		labels:      labels,
		resolver:    resolver,
		publisher:   publisher,
	}
}

// Join registers a new session and returns the initial snapshot.
func (h *Hub) Join() joinResponse {
	playerID := "session-" + uuid.NewString()
	now := time.Now()
	player := newPlayerState(playerID, h.tuning, now)

	h.mu.Lock()
	h.players[playerID] = player
	players := h.snapshotLocked()
	h.mu.Unlock()

	h.publisher.Publish(context.Background(), logging.Event{
		Type:     logging.EventSessionJoined,
		Actor:    logging.SessionRef(playerID),
		Severity: logging.SeverityInfo,
	})

	go h.broadcastState(players)

	return joinResponse{
		Ver:     ProtocolVersion,
		ID:      playerID,
		Players: players,
		Assets:  scenePlacements(),
		Config:  h.tuning,
	}
}

// Subscribe binds a websocket connection to an existing session,
// replacing any previous connection.
func (h *Hub) Subscribe(playerID string, conn *websocket.Conn) (*subscriber, []Player, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.players[playerID]
	if !ok {
		return nil, nil, false
	}
	state.lastHeartbeat = time.Now()

	if existing, ok := h.subscribers[playerID]; ok {
		existing.conn.Close()
	}

	sub := &subscriber{conn: conn}
	h.subscribers[playerID] = sub
	return sub, h.snapshotLocked(), true
}

// Disconnect removes a session. When the last session leaves, the
// resolved-document arena is torn down so repeated visits cannot
// accumulate rewritten documents.
func (h *Hub) Disconnect(playerID string) []Player {
	h.mu.Lock()
	sub, subOK := h.subscribers[playerID]
	if subOK {
		delete(h.subscribers, playerID)
	}
	_, playerOK := h.players[playerID]
	if playerOK {
		delete(h.players, playerID)
	}
	var players []Player
	empty := false
	if playerOK {
		players = h.snapshotLocked()
		empty = len(h.players) == 0
	}
	h.mu.Unlock()

	if subOK {
		sub.conn.Close()
	}
	if !playerOK {
		return nil
	}

	if empty && h.resolver != nil {
		for _, id := range collectibleOrder() {
			h.resolver.Release(id)
		}
	}

	h.publisher.Publish(context.Background(), logging.Event{
		Type:     logging.EventSessionLeft,
		Actor:    logging.SessionRef(playerID),
		Severity: logging.SeverityInfo,
	})
	return players
}

// UpdateIntent records the held-key movement vector and modifier keys
// for the next tick.
func (h *Hub) UpdateIntent(playerID string, msg clientMessage) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.players[playerID]
	if !ok {
		return false
	}
	state.intentX = msg.DX
	state.intentZ = msg.DZ
	state.jumpHeld = msg.Jump
	state.running = msg.Run
	state.crouching = msg.Crouch
	state.lastInput = time.Now()
	return true
}

// ApplyLook folds pointer deltas into the look angles. This happens on
// receipt, before the next tick's movement rotation, which is the
// ordering guarantee that keeps camera and movement aligned.
func (h *Hub) ApplyLook(playerID string, dx, dy float64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.players[playerID]
	if !ok {
		return false
	}
	applyLook(state, dx, dy, h.tuning)
	state.Camera = followCamera(state.position(), state.Yaw, state.Pitch, h.tuning)
	return true
}

// SubmitExperience classifies the submitted memory, derives the scene,
// resolves the collectible documents, and resets the avatar at the
// scene spawn. Network work happens outside the hub lock.
func (h *Hub) SubmitExperience(ctx context.Context, playerID string, msg clientMessage) (sceneMessage, bool) {
	label, analyzed := h.labels.Label(ctx, msg.Memory)
	if !analyzed {
		h.publisher.Publish(ctx, logging.Event{
			Type:     logging.EventLabelFallback,
			Actor:    logging.SessionRef(playerID),
			Severity: logging.SeverityWarn,
			Extra:    map[string]any{"emotion": string(label)},
		})
	}

	scene := emotion.SceneFor(label, msg.Intensity)

	resolved := make([]assets.ResolvedScene, 0, len(collectibleOrder()))
	for _, assetID := range collectibleOrder() {
		res := h.resolver.Resolve(ctx, assetID)
		if res.Placeholder {
			h.publisher.Publish(ctx, logging.Event{
				Type:     logging.EventAssetPlaceholder,
				Actor:    logging.SessionRef(playerID),
				Targets:  []logging.EntityRef{logging.AssetRef(assetID)},
				Severity: logging.SeverityWarn,
			})
		} else {
			h.publisher.Publish(ctx, logging.Event{
				Type:     logging.EventAssetResolved,
				Actor:    logging.SessionRef(playerID),
				Targets:  []logging.EntityRef{logging.AssetRef(assetID)},
				Severity: logging.SeverityDebug,
			})
		}
		resolved = append(resolved, res)
	}

	h.mu.Lock()
	state, ok := h.players[playerID]
	if !ok {
		h.mu.Unlock()
		return sceneMessage{}, false
	}
	state.experience = &Experience{
		Memory:          msg.Memory,
		Emotion:         emotion.Emotion(msg.Emotion),
		Intensity:       msg.Intensity,
		Location:        msg.Location,
		AnalyzedEmotion: label,
	}
	state.scene = &scene
	state.resolved = resolved
	state.labelAnalyzed = analyzed
	state.resetForScene(h.tuning)
	h.mu.Unlock()

	h.publisher.Publish(ctx, logging.Event{
		Type:     logging.EventSceneAssigned,
		Actor:    logging.SessionRef(playerID),
		Severity: logging.SeverityInfo,
		Extra:    map[string]any{"emotion": string(label), "scene": scene.Name},
	})

	return sceneMessage{
		Ver:      ProtocolVersion,
		Type:     "scene",
		Emotion:  string(label),
		Analyzed: analyzed,
		Scene:    scene,
		Assets:   scenePlacements(),
		Resolved: resolved,
	}, true
}

// SceneReplay rebuilds the scene assignment for a session that already
// submitted an experience, so a reconnecting client recovers its scene
// instead of staring at the base world.
func (h *Hub) SceneReplay(playerID string) (sceneMessage, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.players[playerID]
	if !ok || state.scene == nil || state.experience == nil {
		return sceneMessage{}, false
	}

	resolved := make([]assets.ResolvedScene, len(state.resolved))
	copy(resolved, state.resolved)
	return sceneMessage{
		Ver:      ProtocolVersion,
		Type:     "scene",
		Emotion:  string(state.experience.AnalyzedEmotion),
		Analyzed: state.labelAnalyzed,
		Scene:    *state.scene,
		Assets:   scenePlacements(),
		Resolved: resolved,
	}, true
}

// Collect confirms a modal. The second return reports whether this
// collect completed the full set.
func (h *Hub) Collect(playerID, assetID string) (collectedMessage, bool, bool) {
	h.mu.Lock()
	state, ok := h.players[playerID]
	if !ok {
		h.mu.Unlock()
		return collectedMessage{}, false, false
	}
	if !collectAssetLocked(state, assetID) {
		h.mu.Unlock()
		return collectedMessage{}, false, false
	}
	collected := state.collectedIDs()
	completed := completionReachedLocked(state)
	h.mu.Unlock()

	h.publisher.Publish(context.Background(), logging.Event{
		Type:     logging.EventAssetCollected,
		Actor:    logging.SessionRef(playerID),
		Targets:  []logging.EntityRef{logging.AssetRef(assetID)},
		Severity: logging.SeverityInfo,
	})
	if completed {
		h.publisher.Publish(context.Background(), logging.Event{
			Type:     logging.EventCompletion,
			Actor:    logging.SessionRef(playerID),
			Severity: logging.SeverityInfo,
		})
	}

	return collectedMessage{
		Ver:         ProtocolVersion,
		Type:        "collected",
		AssetID:     assetID,
		Collected:   collected,
		PointerLock: true,
	}, true, completed
}

// Dismiss closes a modal without collecting.
func (h *Hub) Dismiss(playerID, assetID string) (dismissedMessage, bool) {
	h.mu.Lock()
	state, ok := h.players[playerID]
	if !ok || !dismissAssetLocked(state, assetID) {
		h.mu.Unlock()
		return dismissedMessage{}, false
	}
	h.mu.Unlock()

	return dismissedMessage{
		Ver:         ProtocolVersion,
		Type:        "dismissed",
		AssetID:     assetID,
		PointerLock: true,
	}, true
}

// UpdateHeartbeat refreshes liveness metadata and returns the measured
// round-trip time.
func (h *Hub) UpdateHeartbeat(playerID string, receivedAt time.Time, clientSent int64) (time.Duration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.players[playerID]
	if !ok {
		return 0, false
	}
	state.lastHeartbeat = receivedAt

	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			state.lastRTT = rtt
		}
	}
	return state.lastRTT, true
}

func (h *Hub) snapshotLocked() []Player {
	players := make([]Player, 0, len(h.players))
	for _, player := range h.players {
		players = append(players, player.Player)
	}
	return players
}

// advance integrates one tick for every session and prunes sessions
// whose heartbeats went quiet.
func (h *Hub) advance(now time.Time, dt float64) ([]Player, []*subscriber) {
	h.mu.Lock()

	toClose := make([]*subscriber, 0)
	for id, state := range h.players {
		if now.Sub(state.lastHeartbeat) > disconnectAfter {
			if sub, ok := h.subscribers[id]; ok {
				toClose = append(toClose, sub)
				delete(h.subscribers, id)
			}
			delete(h.players, id)
			log.Printf("disconnecting %s due to heartbeat timeout", id)
			continue
		}
		stepPlayer(state, dt, h.tuning)
	}
	h.currentTick++
	players := h.snapshotLocked()
	h.mu.Unlock()

	return players, toClose
}

// RunSimulation drives the fixed-rate tick loop until stop closes.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = 1.0 / float64(tickRate)
			}
			last = now

			players, toClose := h.advance(now, dt)
			for _, sub := range toClose {
				sub.conn.Close()
			}
			h.broadcastState(players)
		}
	}
}

// RunProximity polls the interaction machines on a fixed interval,
// decoupled from the tick rate. It shares stop with the simulation so
// leaving the 3D view tears both down together.
func (h *Hub) RunProximity(stop <-chan struct{}) {
	ticker := time.NewTicker(h.tuning.ProximityInterval())
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			h.mu.Lock()
			var triggers []modalTrigger
			for _, state := range h.players {
				triggers = append(triggers, pollInteractionsLocked(state, h.tuning)...)
			}
			tick := h.currentTick
			h.mu.Unlock()

			for _, trigger := range triggers {
				h.publisher.Publish(context.Background(), logging.Event{
					Type:     logging.EventModalShown,
					Tick:     tick,
					Actor:    logging.SessionRef(trigger.playerID),
					Targets:  []logging.EntityRef{logging.AssetRef(trigger.asset.ID)},
					Severity: logging.SeverityInfo,
				})
				h.sendTo(trigger.playerID, modalMessage{
					Ver:         ProtocolVersion,
					Type:        "modal",
					Asset:       trigger.asset,
					PointerLock: false,
				})
			}
		}
	}
}

// broadcastState pushes a snapshot to every subscriber.
func (h *Hub) broadcastState(players []Player) {
	if players == nil {
		h.mu.Lock()
		players = h.snapshotLocked()
		h.mu.Unlock()
	}

	h.mu.Lock()
	tick := h.currentTick
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	msg := stateMessage{
		Ver:        ProtocolVersion,
		Type:       "state",
		Players:    players,
		Tick:       tick,
		ServerTime: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal state message: %v", err)
		return
	}

	for id, sub := range subs {
		if err := sub.write(data); err != nil {
			log.Printf("failed to send update to %s: %v", id, err)
			if players := h.Disconnect(id); players != nil {
				go h.broadcastState(players)
			}
		}
	}
}

// sendTo marshals and delivers one message to a single subscriber.
func (h *Hub) sendTo(playerID string, payload any) {
	h.mu.Lock()
	sub, ok := h.subscribers[playerID]
	h.mu.Unlock()
	if !ok {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal message for %s: %v", playerID, err)
		return
	}
	if err := sub.write(data); err != nil {
		log.Printf("failed to send message to %s: %v", playerID, err)
		if players := h.Disconnect(playerID); players != nil {
			go h.broadcastState(players)
		}
	}
}

func (s *subscriber) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// DiagnosticsSnapshot reports per-session liveness for the
// diagnostics endpoint.
func (h *Hub) DiagnosticsSnapshot() []diagnosticsPlayer {
	h.mu.Lock()
	defer h.mu.Unlock()

	players := make([]diagnosticsPlayer, 0, len(h.players))
	for _, state := range h.players {
		players = append(players, diagnosticsPlayer{
			Ver:           ProtocolVersion,
			ID:            state.ID,
			LastHeartbeat: state.lastHeartbeat.UnixMilli(),
			RTTMillis:     state.lastRTT.Milliseconds(),
			Collected:     len(state.collected),
		})
	}
	return players
}
