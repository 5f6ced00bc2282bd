package server

import (
	"phantom-box/server/internal/assets"
	"phantom-box/server/internal/geom"
)

// interactionPhase is the per-asset, per-player proximity machine:
//
//	FAR → NEAR → SHOWING_MODAL → COLLECTED
//
// The FAR→NEAR edge is what triggers the modal, exactly once per
// approach. Dismissing drops back to NEAR; only leaving range and
// returning re-arms the trigger. COLLECTED is terminal.
type interactionPhase int

const (
	phaseFar interactionPhase = iota
	phaseNear
	phaseShowingModal
	phaseCollected
)

type interactionState struct {
	phase interactionPhase
}

// modalTrigger is a proximity event captured under the hub lock and
// delivered to the subscriber after the lock is released.
type modalTrigger struct {
	playerID string
	asset    assets.Descriptor
}

// pollInteractionsLocked advances every uncollected asset's machine
// for one player and returns any modal that should surface. Repeated
// polls at the same position are no-ops: only the inward threshold
// crossing fires.
func pollInteractionsLocked(state *playerState, tun Tuning) []modalTrigger {
	var triggers []modalTrigger
	playerPos := state.position()

	for _, placement := range scenePlacements() {
		inter, ok := state.interactions[placement.AssetID]
		if !ok || inter.phase == phaseCollected {
			continue
		}

		horizontal := geom.HorizontalDistance(playerPos, placement.position())
		vertical := playerPos.Y() - placement.Y
		if vertical < 0 {
			vertical = -vertical
		}
		inRange := horizontal < tun.ProximityRange && vertical < tun.VerticalBand

		switch inter.phase {
		case phaseFar:
			if inRange {
				// Edge-triggered: entering range both marks NEAR and
				// opens the modal in the same poll.
				inter.phase = phaseShowingModal
				if desc, ok := assets.DescriptorFor(placement.AssetID); ok {
					triggers = append(triggers, modalTrigger{playerID: state.ID, asset: desc})
				}
			}
		case phaseNear:
			if !inRange {
				inter.phase = phaseFar
			}
		case phaseShowingModal:
			// The modal stays owned by the UI until collect/dismiss;
			// walking out of range while it is open changes nothing.
		}
	}
	return triggers
}

// collectAssetLocked handles the explicit "collect" confirmation.
// Returns false when the asset is not currently offered (unknown id,
// never approached, or already collected) — collecting is only legal
// from SHOWING_MODAL.
func collectAssetLocked(state *playerState, assetID string) bool {
	inter, ok := state.interactions[assetID]
	if !ok || inter.phase != phaseShowingModal {
		return false
	}
	inter.phase = phaseCollected
	state.collected[assetID] = true
	return true
}

// dismissAssetLocked handles dismissal without collecting. The asset
// stays collectible on a future approach.
func dismissAssetLocked(state *playerState, assetID string) bool {
	inter, ok := state.interactions[assetID]
	if !ok || inter.phase != phaseShowingModal {
		return false
	}
	inter.phase = phaseNear
	return true
}

// completionReachedLocked reports whether this collect completed the
// set, flipping the once-only completed latch.
func completionReachedLocked(state *playerState) bool {
	if state.completed {
		return false
	}
	for _, id := range collectibleOrder() {
		if !state.collected[id] {
			return false
		}
	}
	state.completed = true
	return true
}
