package server

import (
	"encoding/json"
	"net/http"
	"time"

	"phantom-box/server/internal/assets"
	"phantom-box/server/internal/proxy"
)

// Routes mounts every HTTP endpoint on the mux: session join, the
// websocket, the CORS relay, resolved scene documents, and the
// operational endpoints.
func Routes(mux *http.ServeMux, hub *Hub, gateway *proxy.Gateway, arena *assets.Arena) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		payload := struct {
			Status     string              `json:"status"`
			ServerTime int64               `json:"serverTime"`
			Players    []diagnosticsPlayer `json:"players"`
			TickRate   int                 `json:"tickRate"`
			Heartbeat  int64               `json:"heartbeatMillis"`
			Documents  int                 `json:"resolvedDocuments"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Players:    hub.DiagnosticsSnapshot(),
			TickRate:   tickRate,
			Heartbeat:  heartbeatInterval.Milliseconds(),
			Documents:  arena.Len(),
		}

		data, err := json.Marshal(payload)
		if err != nil {
			http.Error(w, "failed to encode", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/join", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		join := hub.Join()
		data, err := json.Marshal(join)
		if err != nil {
			http.Error(w, "failed to encode", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/ws", hub.HandleWS)
	mux.HandleFunc(proxy.RoutePath, gateway.Handler())
	mux.HandleFunc(assets.ResolvedRoutePrefix, arena.Handler())
}
