package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"
)

// FileSet lists a model's files as the metadata backend names them.
// Entries may be absolute URLs or paths relative to
// <storage-root>/<assetId>/.
type FileSet struct {
	SceneGltf  string            `json:"scene.gltf"`
	SceneBin   string            `json:"scene.bin"`
	LicenseTxt string            `json:"license.txt"`
	Textures   map[string]string `json:"textures,omitempty"`
}

// ManifestEntry is one named asset inside a manifest response.
type ManifestEntry struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Files       FileSet `json:"files"`
}

// Manifest maps asset name to its entry. Responses carry a single
// entry in practice but the shape allows more.
type Manifest map[string]ManifestEntry

// AssetName returns the first entry's name, or "" for an empty
// manifest. "First" means first in key order so the answer is stable.
func (m Manifest) AssetName() string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}

// Title returns the first entry's title, or "".
func (m Manifest) Title() string {
	name := m.AssetName()
	if name == "" {
		return ""
	}
	return m[name].Title
}

// Description returns the first entry's description, or "".
func (m Manifest) Description() string {
	name := m.AssetName()
	if name == "" {
		return ""
	}
	return m[name].Description
}

// first returns the first entry by key order.
func (m Manifest) first() (ManifestEntry, bool) {
	name := m.AssetName()
	if name == "" {
		return ManifestEntry{}, false
	}
	return m[name], true
}

// legacyRequestText fills the vestigial text parameter the metadata
// backend still expects on POST /asset/:id.
const legacyRequestText = "나는 밤길을 걷고 싶지 않아."

// fallbackManifests keeps the experience alive when the metadata
// backend is down. File references follow the per-asset relative
// convention so the resolver treats them like any remote manifest.
var fallbackManifests = map[string]Manifest{
	AssetBrokenMirror: {
		AssetBrokenMirror: ManifestEntry{
			Title:       "깨진 거울 - 내면의 분열",
			Description: descriptors[AssetBrokenMirror].Description,
			Files: FileSet{
				SceneGltf:  "scene.gltf",
				SceneBin:   "scene.bin",
				LicenseTxt: "license.txt",
				Textures: map[string]string{
					"mirror_baseColor": "textures/mirror_baseColor.png",
				},
			},
		},
	},
	AssetMedievalWaterTub: {
		AssetMedievalWaterTub: ManifestEntry{
			Title:       "중세 목욕통 - 세속의 욕망",
			Description: descriptors[AssetMedievalWaterTub].Description,
			Files: FileSet{
				SceneGltf:  "scene.gltf",
				SceneBin:   "scene.bin",
				LicenseTxt: "license.txt",
				Textures: map[string]string{
					"tub_baseColor": "textures/tub_baseColor.png",
				},
			},
		},
	},
	AssetWoodenLadder: {
		AssetWoodenLadder: ManifestEntry{
			Title:       "나무 사다리 - 정신적 승화",
			Description: descriptors[AssetWoodenLadder].Description,
			Files: FileSet{
				SceneGltf:  "scene.gltf",
				SceneBin:   "scene.bin",
				LicenseTxt: "license.txt",
				Textures: map[string]string{
					"ladder_baseColor": "textures/ladder_baseColor.png",
				},
			},
		},
	},
}

// MetadataClient fetches asset manifests from the metadata backend.
// An empty base URL skips the network entirely and serves only the
// embedded fallback table.
type MetadataClient struct {
	baseURL string
	httpc   *http.Client
}

func NewMetadataClient(baseURL string) *MetadataClient {
	return &MetadataClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchManifest resolves an asset id to its manifest. Network failure
// falls back to the embedded table; false means neither source knows
// the id, in which case the caller degrades to placeholder geometry.
func (c *MetadataClient) FetchManifest(ctx context.Context, assetID string) (Manifest, bool) {
	if c != nil && c.baseURL != "" {
		manifest, err := c.remoteManifest(ctx, assetID)
		if err == nil && len(manifest) > 0 {
			return manifest, true
		}
		if err != nil {
			log.Printf("asset manifest fetch failed for %s: %v", assetID, err)
		}
	}

	manifest, ok := fallbackManifests[assetID]
	return manifest, ok
}

func (c *MetadataClient) remoteManifest(ctx context.Context, assetID string) (Manifest, error) {
	body, err := json.Marshal(map[string]string{"text": legacyRequestText})
	if err != nil {
		return nil, fmt.Errorf("encode manifest request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/asset/"+assetID, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build manifest request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("manifest request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("manifest request: HTTP %d", resp.StatusCode)
	}

	var manifest Manifest
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return manifest, nil
}
