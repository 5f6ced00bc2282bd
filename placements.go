package server

import (
	"github.com/go-gl/mathgl/mgl64"

	"phantom-box/server/internal/assets"
)

// AssetPlacement positions one collectible inside the active scene.
type AssetPlacement struct {
	AssetID string  `json:"assetId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	Scale   float64 `json:"scale"`
}

func (p AssetPlacement) position() mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

// scenePlacements lays the three collectibles down the hallway, spaced
// so each one is approached separately.
func scenePlacements() []AssetPlacement {
	return []AssetPlacement{
		{AssetID: assets.AssetBrokenMirror, X: 0, Y: defaultFloorY, Z: 470, Scale: 1},
		{AssetID: assets.AssetMedievalWaterTub, X: 6, Y: defaultFloorY, Z: 400, Scale: 1},
		{AssetID: assets.AssetWoodenLadder, X: -6, Y: defaultFloorY, Z: 330, Scale: 1},
	}
}

// collectibleOrder mirrors the placement order for stable output.
func collectibleOrder() []string {
	return assets.CollectibleIDs()
}
