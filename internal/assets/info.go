// Package assets resolves collectible 3D models: manifest lookup with
// an embedded fallback, glTF URI rewriting for proxied delivery, and
// the arena that owns rewritten documents.
package assets

// Descriptor identifies one collectible and its narrative framing.
// The table is fixed at startup and never mutated.
type Descriptor struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Symbol      string `json:"symbol"`
}

const (
	AssetBrokenMirror     = "broken_mirror"
	AssetMedievalWaterTub = "medieval_water_tub"
	AssetWoodenLadder     = "wooden_ladder"
)

var descriptors = map[string]Descriptor{
	AssetBrokenMirror: {
		ID:          AssetBrokenMirror,
		Title:       "깨진 거울",
		Description: "내면의 분열과 혼란스러운 자아를 상징합니다. 거울이 깨져 있는 것은 자신의 정체성에 대한 혼란과 분열된 내면 세계를 나타냅니다.",
		Symbol:      "자아의 균열",
	},
	AssetMedievalWaterTub: {
		ID:          AssetMedievalWaterTub,
		Title:       "중세 목욕통",
		Description: "세속의 욕망과 정화를 상징합니다. 물을 담는 목욕통은 씻김과 정화를 의미하며, 중세 시대의 세속적 욕망과 정신적 정화의 대비를 보여줍니다.",
		Symbol:      "세속의 욕망",
	},
	AssetWoodenLadder: {
		ID:          AssetWoodenLadder,
		Title:       "나무 사다리",
		Description: "승화와 성장을 상징합니다. 사다리는 위로 올라가는 도구로, 정신적 성장과 내면의 승화 과정을 나타냅니다.",
		Symbol:      "정신적 승화",
	},
}

// CollectibleIDs is the fixed universe of collectibles, in placement
// order.
func CollectibleIDs() []string {
	return []string{AssetBrokenMirror, AssetMedievalWaterTub, AssetWoodenLadder}
}

// DescriptorFor looks up the static table.
func DescriptorFor(id string) (Descriptor, bool) {
	d, ok := descriptors[id]
	return d, ok
}
