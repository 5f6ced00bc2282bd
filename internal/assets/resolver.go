package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// URLRewriter turns an absolute resource URL into the form the browser
// should load it from. The proxy gateway's ProxiedURL satisfies it.
type URLRewriter func(raw string) string

// ResolvedScene is the loadable outcome of resolving an asset id.
// Placeholder means neither the manifest nor the document could be
// obtained; the renderer shows neutral cube geometry instead and the
// experience keeps running.
type ResolvedScene struct {
	AssetID     string `json:"assetId"`
	DocumentURL string `json:"documentUrl,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// Resolver turns asset ids into renderable scene documents: manifest
// lookup, raw glTF fetch, URI rewriting, and arena storage.
type Resolver struct {
	metadata    *MetadataClient
	arena       *Arena
	rewrite     URLRewriter
	storageRoot string
	httpc       *http.Client
}

func NewResolver(metadata *MetadataClient, arena *Arena, storageRoot string, rewrite URLRewriter) *Resolver {
	if rewrite == nil {
		rewrite = func(raw string) string { return raw }
	}
	return &Resolver{
		metadata:    metadata,
		arena:       arena,
		rewrite:     rewrite,
		storageRoot: strings.TrimRight(storageRoot, "/"),
		httpc:       &http.Client{Timeout: 30 * time.Second},
	}
}

// Resolve produces a ResolvedScene for an asset id. Every failure mode
// degrades to a placeholder result; Resolve never blocks the caller on
// a missing asset.
func (r *Resolver) Resolve(ctx context.Context, assetID string) ResolvedScene {
	manifest, ok := r.metadata.FetchManifest(ctx, assetID)
	if !ok {
		return ResolvedScene{AssetID: assetID, Placeholder: true}
	}

	entry, ok := manifest.first()
	if !ok {
		return ResolvedScene{AssetID: assetID, Placeholder: true}
	}

	raw, err := r.fetchDocument(ctx, assetID, entry.Files.SceneGltf)
	if err != nil {
		log.Printf("scene document fetch failed for %s: %v", assetID, err)
		return ResolvedScene{
			AssetID:     assetID,
			Title:       manifest.Title(),
			Description: manifest.Description(),
			Placeholder: true,
		}
	}

	rewritten, err := r.RewriteDocument(raw, assetID)
	if err != nil {
		// Structural parsing is the primary strategy; the regex shim
		// is a best-effort compatibility path for malformed documents.
		rewritten, err = r.rewriteDocumentShim(raw, assetID)
		if err != nil {
			log.Printf("scene document rewrite failed for %s: %v", assetID, err)
			return ResolvedScene{
				AssetID:     assetID,
				Title:       manifest.Title(),
				Description: manifest.Description(),
				Placeholder: true,
			}
		}
	}

	return ResolvedScene{
		AssetID:     assetID,
		DocumentURL: r.arena.Put(assetID, rewritten),
		Title:       manifest.Title(),
		Description: manifest.Description(),
	}
}

// Release revokes the rewritten document for an asset id.
func (r *Resolver) Release(assetID string) {
	r.arena.Release(assetID)
}

func (r *Resolver) fetchDocument(ctx context.Context, assetID, ref string) ([]byte, error) {
	docURL := r.absoluteURL(assetID, ref)
	if docURL == "" {
		return nil, fmt.Errorf("manifest for %s has no scene document", assetID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build document request: %w", err)
	}

	resp, err := r.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("document request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("document request: HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// RewriteDocument parses a glTF document and rewrites every buffer and
// image URI in place: relative references gain the per-asset base, and
// cross-origin absolutes are wrapped behind the proxy gateway. The
// rewriting is structural (buffers[].uri, images[].uri), never
// string-pattern based.
func (r *Resolver) RewriteDocument(raw []byte, assetID string) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse scene document: %w", err)
	}

	r.rewriteSection(doc, "buffers", assetID)
	r.rewriteSection(doc, "images", assetID)

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serialize scene document: %w", err)
	}
	return out, nil
}

func (r *Resolver) rewriteSection(doc map[string]any, key, assetID string) {
	section, ok := doc[key].([]any)
	if !ok {
		return
	}
	for _, item := range section {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		uri, ok := entry["uri"].(string)
		if !ok || uri == "" {
			continue
		}
		entry["uri"] = r.RewriteURI(uri, assetID)
	}
}

// RewriteURI maps one resource reference to its loadable form. The
// same relative path may arrive as "x", "./x", or "/x"; all three land
// on the identical rewritten URL. Data URIs stay embedded.
func (r *Resolver) RewriteURI(uri, assetID string) string {
	if strings.HasPrefix(uri, "data:") {
		return uri
	}
	if isAbsoluteURL(uri) {
		return r.rewrite(uri)
	}
	return r.rewrite(r.absoluteURL(assetID, uri))
}

func (r *Resolver) absoluteURL(assetID, ref string) string {
	if ref == "" {
		return ""
	}
	if isAbsoluteURL(ref) {
		return ref
	}
	rel := strings.TrimPrefix(ref, "./")
	rel = strings.TrimPrefix(rel, "/")
	return r.storageRoot + "/" + assetID + "/" + rel
}

func isAbsoluteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
