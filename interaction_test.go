package server

import (
	"testing"
	"time"

	"phantom-box/server/internal/assets"
)

func playerAt(t *testing.T, tun Tuning, x, y, z float64) *playerState {
	t.Helper()
	state := newPlayerState("session-test", tun, time.Unix(0, 0))
	state.X, state.Y, state.Z = x, y, z
	return state
}

func mirrorPlacement(t *testing.T) AssetPlacement {
	t.Helper()
	for _, p := range scenePlacements() {
		if p.AssetID == assets.AssetBrokenMirror {
			return p
		}
	}
	t.Fatalf("mirror placement missing")
	return AssetPlacement{}
}

func TestModalFiresOncePerApproach(t *testing.T) {
	tun := DefaultTuning()
	mirror := mirrorPlacement(t)
	state := playerAt(t, tun, mirror.X, mirror.Y, mirror.Z+tun.ProximityRange-1)

	triggers := pollInteractionsLocked(state, tun)
	if len(triggers) != 1 || triggers[0].asset.ID != assets.AssetBrokenMirror {
		t.Fatalf("first poll inside range: triggers = %+v", triggers)
	}

	// Staying put must not re-open the modal.
	for i := 0; i < 5; i++ {
		if again := pollInteractionsLocked(state, tun); len(again) != 0 {
			t.Fatalf("poll %d re-triggered: %+v", i, again)
		}
	}
}

func TestModalSurvivesLeavingRangeWhileOpen(t *testing.T) {
	tun := DefaultTuning()
	mirror := mirrorPlacement(t)
	state := playerAt(t, tun, mirror.X, mirror.Y, mirror.Z+1)
	pollInteractionsLocked(state, tun)

	// Walking away with the modal open changes nothing until the UI
	// answers with collect or dismiss.
	state.Z = mirror.Z + tun.ProximityRange*4
	if triggers := pollInteractionsLocked(state, tun); len(triggers) != 0 {
		t.Fatalf("open modal re-triggered after leaving range: %+v", triggers)
	}
	if !collectAssetLocked(state, assets.AssetBrokenMirror) {
		t.Fatalf("collect refused while modal was open")
	}
}

func TestDismissRearmsAfterLeavingRange(t *testing.T) {
	tun := DefaultTuning()
	mirror := mirrorPlacement(t)
	state := playerAt(t, tun, mirror.X, mirror.Y, mirror.Z+1)
	pollInteractionsLocked(state, tun)

	if !dismissAssetLocked(state, assets.AssetBrokenMirror) {
		t.Fatalf("dismiss refused while modal was open")
	}

	// Still in range after dismissal: no re-trigger.
	if triggers := pollInteractionsLocked(state, tun); len(triggers) != 0 {
		t.Fatalf("dismissed modal re-triggered in place: %+v", triggers)
	}

	// Leave, poll, return: the approach edge fires again.
	state.Z = mirror.Z + tun.ProximityRange*4
	pollInteractionsLocked(state, tun)
	state.Z = mirror.Z + 1
	triggers := pollInteractionsLocked(state, tun)
	if len(triggers) != 1 {
		t.Fatalf("re-approach did not re-trigger: %+v", triggers)
	}
}

func TestCollectedAssetNeverTriggersAgain(t *testing.T) {
	tun := DefaultTuning()
	mirror := mirrorPlacement(t)
	state := playerAt(t, tun, mirror.X, mirror.Y, mirror.Z+1)
	pollInteractionsLocked(state, tun)

	if !collectAssetLocked(state, assets.AssetBrokenMirror) {
		t.Fatalf("collect refused")
	}
	if collectAssetLocked(state, assets.AssetBrokenMirror) {
		t.Fatalf("double collect accepted")
	}

	state.Z = mirror.Z + tun.ProximityRange*4
	pollInteractionsLocked(state, tun)
	state.Z = mirror.Z + 1
	if triggers := pollInteractionsLocked(state, tun); len(triggers) != 0 {
		t.Fatalf("collected asset re-triggered: %+v", triggers)
	}
}

func TestCollectRequiresOpenModal(t *testing.T) {
	tun := DefaultTuning()
	state := playerAt(t, tun, 0, tun.FloorY, 0)

	if collectAssetLocked(state, assets.AssetBrokenMirror) {
		t.Fatalf("collect accepted without an approach")
	}
	if collectAssetLocked(state, "unknown_asset") {
		t.Fatalf("collect accepted for an unplaced asset")
	}
	if dismissAssetLocked(state, assets.AssetBrokenMirror) {
		t.Fatalf("dismiss accepted without an open modal")
	}
}

func TestVerticalBandGatesProximity(t *testing.T) {
	tun := DefaultTuning()
	tun.VerticalBand = 5
	mirror := mirrorPlacement(t)
	state := playerAt(t, tun, mirror.X, mirror.Y+tun.VerticalBand+1, mirror.Z+1)

	if triggers := pollInteractionsLocked(state, tun); len(triggers) != 0 {
		t.Fatalf("trigger fired outside the vertical band: %+v", triggers)
	}

	state.Y = mirror.Y
	if triggers := pollInteractionsLocked(state, tun); len(triggers) != 1 {
		t.Fatalf("trigger missing inside the band: %+v", triggers)
	}
}

func TestCompletionLatchFiresOnce(t *testing.T) {
	tun := DefaultTuning()
	state := playerAt(t, tun, 0, tun.FloorY, 0)

	for i, placement := range scenePlacements() {
		if completionReachedLocked(state) {
			t.Fatalf("completion before all assets were collected")
		}
		state.X, state.Y, state.Z = placement.X, placement.Y, placement.Z+1
		if triggers := pollInteractionsLocked(state, tun); len(triggers) == 0 {
			t.Fatalf("placement %d did not trigger", i)
		}
		if !collectAssetLocked(state, placement.AssetID) {
			t.Fatalf("collect refused for %s", placement.AssetID)
		}
	}

	if !completionReachedLocked(state) {
		t.Fatalf("completion never fired")
	}
	if completionReachedLocked(state) {
		t.Fatalf("completion fired twice")
	}

	ids := state.collectedIDs()
	if len(ids) != len(collectibleOrder()) {
		t.Fatalf("collected ids = %v", ids)
	}
}

func TestResetForSceneRearmsEverything(t *testing.T) {
	tun := DefaultTuning()
	mirror := mirrorPlacement(t)
	state := playerAt(t, tun, mirror.X, mirror.Y, mirror.Z+1)
	pollInteractionsLocked(state, tun)
	collectAssetLocked(state, assets.AssetBrokenMirror)

	state.resetForScene(tun)

	if state.X != tun.SpawnX || state.Y != tun.SpawnY || state.Z != tun.SpawnZ {
		t.Fatalf("reset did not return to spawn: (%v, %v, %v)", state.X, state.Y, state.Z)
	}
	if len(state.collectedIDs()) != 0 || state.completed {
		t.Fatalf("collection state survived the reset")
	}

	state.X, state.Y, state.Z = mirror.X, mirror.Y, mirror.Z+1
	if triggers := pollInteractionsLocked(state, tun); len(triggers) != 1 {
		t.Fatalf("reset asset did not re-arm: %+v", triggers)
	}
}
