// Package proxy implements the same-origin relay that lets the browser
// fetch object-storage resources without tripping CORS, plus the pure
// URL transform the asset resolver uses to route references through it.
package proxy

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"phantom-box/server/logging"
)

// RoutePath is where the relay is mounted on the application origin.
const RoutePath = "/api/proxy"

// Gateway rewrites storage-host URLs onto the relay and serves the
// relay itself.
type Gateway struct {
	storageHost string
	httpc       *http.Client
	publisher   logging.Publisher
}

func NewGateway(storageHost string, publisher logging.Publisher) *Gateway {
	if publisher == nil {
		publisher = logging.NopPublisher{}
	}
	return &Gateway{
		storageHost: storageHost,
		httpc:       &http.Client{Timeout: 60 * time.Second},
		publisher:   publisher,
	}
}

// ProxiedURL wraps raw behind the relay when its host is the known
// object-storage host. Every other input passes through unchanged.
// Pure string transform; malformed URLs are returned as-is.
func (g *Gateway) ProxiedURL(raw string) string {
	if g == nil || g.storageHost == "" {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.Host != g.storageHost {
		return raw
	}
	return RoutePath + "?url=" + url.QueryEscape(raw)
}

// Handler serves GET /api/proxy?url=<encoded>. The upstream body is
// streamed through with its Content-Type, permissive CORS headers and
// a one-hour cache directive; compressible payloads are gzipped when
// the client accepts it. Upstream failures map to the same status
// with a JSON error body, transport failures to 500.
func (g *Gateway) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeProxyError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		raw := r.URL.Query().Get("url")
		if raw == "" {
			writeProxyError(w, http.StatusBadRequest, "URL parameter is required")
			return
		}

		req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, raw, nil)
		if err != nil {
			writeProxyError(w, http.StatusBadRequest, "invalid URL")
			return
		}

		resp, err := g.httpc.Do(req)
		if err != nil {
			log.Printf("proxy fetch failed for %s: %v", raw, err)
			writeProxyError(w, http.StatusInternalServerError, "failed to fetch file")
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			writeProxyError(w, resp.StatusCode, "failed to fetch upstream")
			return
		}

		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Cache-Control", "public, max-age=3600")

		g.publisher.Publish(r.Context(), logging.Event{
			Type:     logging.EventProxyRelay,
			Actor:    logging.WorldRef(),
			Severity: logging.SeverityDebug,
			Extra:    map[string]any{"url": raw, "status": resp.StatusCode},
		})

		var out io.Writer = w
		if compressible(contentType) && acceptsGzip(r) {
			w.Header().Set("Content-Encoding", "gzip")
			gz := gzip.NewWriter(w)
			defer gz.Close()
			out = gz
		}

		if _, err := io.Copy(out, resp.Body); err != nil {
			log.Printf("proxy stream interrupted for %s: %v", raw, err)
		}
	}
}

// Shutdown is a hook for symmetric lifecycle wiring; the gateway holds
// no background resources today.
func (g *Gateway) Shutdown(context.Context) error {
	return nil
}

func writeProxyError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func compressible(contentType string) bool {
	switch {
	case strings.HasPrefix(contentType, "text/"):
		return true
	case strings.Contains(contentType, "json"):
		return true
	case strings.Contains(contentType, "gltf"):
		return true
	default:
		return false
	}
}

func acceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}
