package assets

import (
	"net/http"
	"path"
	"strings"
	"sync"
)

// ResolvedRoutePrefix is where the arena serves rewritten documents.
const ResolvedRoutePrefix = "/assets/resolved/"

// Arena owns rewritten scene documents, keyed by asset id. Documents
// live until Release is called for the id (or ReleaseAll at teardown),
// which is the server-side analog of revoking an object URL: repeated
// loads must not accumulate stale copies.
type Arena struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func NewArena() *Arena {
	return &Arena{docs: make(map[string][]byte)}
}

// Put stores a document, replacing any previous copy for the id, and
// returns the URL path it is served under.
func (a *Arena) Put(assetID string, data []byte) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.docs[assetID] = data
	return ResolvedRoutePrefix + assetID
}

// Get returns the stored document for an id.
func (a *Arena) Get(assetID string) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	data, ok := a.docs[assetID]
	return data, ok
}

// Release drops the document for an id.
func (a *Arena) Release(assetID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.docs, assetID)
}

// ReleaseAll drops every document. Called on scene teardown.
func (a *Arena) ReleaseAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.docs = make(map[string][]byte)
}

// Len reports how many documents are currently held.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.docs)
}

// Handler serves GET <ResolvedRoutePrefix><assetId> from the arena.
func (a *Arena) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		assetID := path.Base(strings.TrimPrefix(r.URL.Path, ResolvedRoutePrefix))
		data, ok := a.Get(assetID)
		if !ok {
			http.Error(w, "unknown document", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "model/gltf+json")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(data)
	}
}
