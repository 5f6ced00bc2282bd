package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"phantom-box/server/internal/assets"
	"phantom-box/server/internal/emotion"
)

// offlineStorage serves a minimal scene document for every asset so
// resolution succeeds without the real object store.
func offlineStorage(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "scene.gltf") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "model/gltf+json")
		w.Write([]byte(`{"buffers":[{"uri":"scene.bin"}],"images":[]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestHub(t *testing.T) (*Hub, *assets.Arena) {
	t.Helper()
	storage := offlineStorage(t)
	arena := assets.NewArena()
	resolver := assets.NewResolver(assets.NewMetadataClient(""), arena, storage.URL, nil)
	return NewHub(DefaultTuning(), emotion.NewClient(""), resolver, nil), arena
}

func TestJoinSpawnsAtConfiguredPosition(t *testing.T) {
	hub, _ := newTestHub(t)
	tun := DefaultTuning()

	resp := hub.Join()
	if resp.Ver != ProtocolVersion {
		t.Fatalf("ver = %d", resp.Ver)
	}
	if !strings.HasPrefix(resp.ID, "session-") {
		t.Fatalf("session id = %q", resp.ID)
	}
	if len(resp.Players) != 1 {
		t.Fatalf("players = %d", len(resp.Players))
	}
	p := resp.Players[0]
	if p.X != tun.SpawnX || p.Y != tun.SpawnY || p.Z != tun.SpawnZ {
		t.Fatalf("spawned at (%v, %v, %v)", p.X, p.Y, p.Z)
	}
	if len(resp.Assets) != len(collectibleOrder()) {
		t.Fatalf("placements = %d", len(resp.Assets))
	}
}

func TestAdvanceMovesPlayersByIntent(t *testing.T) {
	hub, _ := newTestHub(t)
	resp := hub.Join()

	if !hub.UpdateIntent(resp.ID, clientMessage{Type: "input", DZ: -1}) {
		t.Fatalf("UpdateIntent failed")
	}
	players, toClose := hub.advance(time.Now(), stepDt)
	if len(toClose) != 0 {
		t.Fatalf("unexpected disconnects: %d", len(toClose))
	}
	if len(players) != 1 || players[0].Z >= resp.Players[0].Z {
		t.Fatalf("player did not move forward: %+v", players)
	}
}

func TestApplyLookRotatesCameraImmediately(t *testing.T) {
	hub, _ := newTestHub(t)
	resp := hub.Join()
	tun := DefaultTuning()

	if !hub.ApplyLook(resp.ID, 500, 0) {
		t.Fatalf("ApplyLook failed")
	}

	hub.mu.Lock()
	state := hub.players[resp.ID]
	yaw := state.Yaw
	camera := state.Camera
	hub.mu.Unlock()

	if yaw != 500*tun.MouseSensitivity {
		t.Fatalf("yaw = %v", yaw)
	}
	if camera == resp.Players[0].Camera {
		t.Fatalf("camera pose did not update with the look")
	}
}

func TestAdvancePrunesSilentSessions(t *testing.T) {
	hub, _ := newTestHub(t)
	resp := hub.Join()

	hub.mu.Lock()
	hub.players[resp.ID].lastHeartbeat = time.Now().Add(-2 * disconnectAfter)
	hub.mu.Unlock()

	players, _ := hub.advance(time.Now(), stepDt)
	if len(players) != 0 {
		t.Fatalf("silent session survived: %+v", players)
	}
}

func TestSubmitExperienceAssignsSceneAndResolvesAssets(t *testing.T) {
	hub, arena := newTestHub(t)
	resp := hub.Join()

	// Move the avatar first so the reset is observable.
	hub.UpdateIntent(resp.ID, clientMessage{Type: "input", DZ: -1})
	hub.advance(time.Now(), stepDt)

	msg, ok := hub.SubmitExperience(context.Background(), resp.ID, clientMessage{
		Type:      "experience",
		Memory:    "무서워서 밤길을 걷지 못했다",
		Emotion:   "두려운",
		Intensity: 7,
		Location:  "골목길",
	})
	if !ok {
		t.Fatalf("SubmitExperience failed")
	}
	if msg.Emotion != string(emotion.EmotionFearful) {
		t.Fatalf("labeled %q", msg.Emotion)
	}
	// No label service is configured, so the local analyzer answered.
	if msg.Analyzed {
		t.Fatalf("offline label marked as remote")
	}
	if msg.Scene.Name == "" || msg.Scene.Particles <= 0 {
		t.Fatalf("scene = %+v", msg.Scene)
	}
	if len(msg.Resolved) != len(collectibleOrder()) {
		t.Fatalf("resolved %d documents", len(msg.Resolved))
	}
	for _, res := range msg.Resolved {
		if res.Placeholder {
			t.Fatalf("asset %s resolved to placeholder", res.AssetID)
		}
	}
	if arena.Len() != len(collectibleOrder()) {
		t.Fatalf("arena holds %d documents", arena.Len())
	}

	tun := DefaultTuning()
	hub.mu.Lock()
	state := hub.players[resp.ID]
	x, z := state.X, state.Z
	exp := state.experience
	hub.mu.Unlock()
	if x != tun.SpawnX || z != tun.SpawnZ {
		t.Fatalf("experience submission did not reset to spawn: (%v, %v)", x, z)
	}
	if exp == nil || exp.AnalyzedEmotion != emotion.EmotionFearful || exp.Intensity != 7 {
		t.Fatalf("experience record = %+v", exp)
	}
}

func TestSceneReplayRequiresExperience(t *testing.T) {
	hub, _ := newTestHub(t)
	resp := hub.Join()

	if _, ok := hub.SceneReplay(resp.ID); ok {
		t.Fatalf("replay offered before any experience was submitted")
	}

	if _, ok := hub.SubmitExperience(context.Background(), resp.ID, clientMessage{Memory: "무서워"}); !ok {
		t.Fatalf("SubmitExperience failed")
	}

	replay, ok := hub.SceneReplay(resp.ID)
	if !ok {
		t.Fatalf("no replay after experience submission")
	}
	if replay.Type != "scene" || replay.Scene.Name == "" {
		t.Fatalf("replay = %+v", replay)
	}
	if len(replay.Resolved) != len(collectibleOrder()) {
		t.Fatalf("replay carries %d resolved documents", len(replay.Resolved))
	}

	if _, ok := hub.SceneReplay("session-unknown"); ok {
		t.Fatalf("replay offered for unknown session")
	}
}

func TestCollectThroughHubReportsCompletion(t *testing.T) {
	hub, _ := newTestHub(t)
	resp := hub.Join()
	tun := DefaultTuning()

	for i, placement := range scenePlacements() {
		hub.mu.Lock()
		state := hub.players[resp.ID]
		state.X, state.Y, state.Z = placement.X, placement.Y, placement.Z+1
		triggers := pollInteractionsLocked(state, tun)
		hub.mu.Unlock()
		if len(triggers) != 1 {
			t.Fatalf("placement %d: triggers = %+v", i, triggers)
		}

		msg, ok, completed := hub.Collect(resp.ID, placement.AssetID)
		if !ok {
			t.Fatalf("Collect(%s) refused", placement.AssetID)
		}
		if len(msg.Collected) != i+1 {
			t.Fatalf("collected list = %v", msg.Collected)
		}
		wantCompleted := i == len(scenePlacements())-1
		if completed != wantCompleted {
			t.Fatalf("placement %d: completed = %v", i, completed)
		}
	}

	// Collecting again is refused and cannot re-complete.
	if _, ok, _ := hub.Collect(resp.ID, assets.AssetBrokenMirror); ok {
		t.Fatalf("re-collect accepted")
	}
}

func TestDismissReopensNothing(t *testing.T) {
	hub, _ := newTestHub(t)
	resp := hub.Join()
	tun := DefaultTuning()
	mirror := mirrorPlacement(t)

	hub.mu.Lock()
	state := hub.players[resp.ID]
	state.X, state.Y, state.Z = mirror.X, mirror.Y, mirror.Z+1
	pollInteractionsLocked(state, tun)
	hub.mu.Unlock()

	msg, ok := hub.Dismiss(resp.ID, mirror.AssetID)
	if !ok {
		t.Fatalf("Dismiss refused")
	}
	if !msg.PointerLock {
		t.Fatalf("dismissal must re-acquire pointer lock")
	}
	if _, ok := hub.Dismiss(resp.ID, mirror.AssetID); ok {
		t.Fatalf("double dismiss accepted")
	}
}

func TestDisconnectLastSessionReleasesDocuments(t *testing.T) {
	hub, arena := newTestHub(t)
	first := hub.Join()
	second := hub.Join()

	hub.SubmitExperience(context.Background(), first.ID, clientMessage{Memory: "무서워"})
	if arena.Len() == 0 {
		t.Fatalf("no documents resolved")
	}

	hub.Disconnect(first.ID)
	if arena.Len() == 0 {
		t.Fatalf("documents released while a session remained")
	}

	hub.Disconnect(second.ID)
	if arena.Len() != 0 {
		t.Fatalf("last disconnect left %d documents", arena.Len())
	}
}

func TestUpdateHeartbeatMeasuresRTT(t *testing.T) {
	hub, _ := newTestHub(t)
	resp := hub.Join()

	now := time.Now()
	rtt, ok := hub.UpdateHeartbeat(resp.ID, now, now.Add(-40*time.Millisecond).UnixMilli())
	if !ok {
		t.Fatalf("heartbeat refused")
	}
	if rtt < 30*time.Millisecond || rtt > 50*time.Millisecond {
		t.Fatalf("rtt = %v", rtt)
	}

	if _, ok := hub.UpdateHeartbeat("session-unknown", now, 0); ok {
		t.Fatalf("heartbeat accepted for unknown session")
	}
}
