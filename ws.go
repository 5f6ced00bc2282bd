package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWS upgrades the connection, replays the current snapshot, and
// pumps client messages until the socket drops. Each message type maps
// onto one hub operation; malformed payloads are discarded.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("id")
	if playerID == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade failed for %s: %v", playerID, err)
		return
	}

	sub, snapshot, ok := h.Subscribe(playerID, conn)
	if !ok {
		message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown session")
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
		return
	}

	initial := stateMessage{
		Ver:        ProtocolVersion,
		Type:       "state",
		Players:    snapshot,
		ServerTime: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(initial)
	if err != nil {
		log.Printf("failed to marshal initial state for %s: %v", playerID, err)
		h.dropAndRebroadcast(playerID, sub)
		return
	}
	if err := sub.write(data); err != nil {
		h.dropAndRebroadcast(playerID, sub)
		return
	}

	// Reconnecting mid-experience: replay the scene assignment so the
	// client does not fall back to the base world.
	if replay, ok := h.SceneReplay(playerID); ok {
		h.sendTo(playerID, replay)
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.dropAndRebroadcast(playerID, sub)
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Printf("discarding malformed message from %s: %v", playerID, err)
			continue
		}

		switch msg.Type {
		case "input":
			if !h.UpdateIntent(playerID, msg) {
				log.Printf("input ignored for unknown session %s", playerID)
			}
		case "look":
			h.ApplyLook(playerID, msg.LookDX, msg.LookDY)
		case "experience":
			ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
			reply, ok := h.SubmitExperience(ctx, playerID, msg)
			cancel()
			if ok {
				h.sendTo(playerID, reply)
			}
		case "collect":
			reply, ok, completed := h.Collect(playerID, msg.AssetID)
			if !ok {
				continue
			}
			h.sendTo(playerID, reply)
			if completed {
				h.sendTo(playerID, completionMessage{
					Ver:       ProtocolVersion,
					Type:      "completion",
					Collected: reply.Collected,
					Message:   "모든 에셋을 수집했습니다!",
				})
			}
		case "dismiss":
			if reply, ok := h.Dismiss(playerID, msg.AssetID); ok {
				h.sendTo(playerID, reply)
			}
		case "heartbeat":
			now := time.Now()
			rtt, ok := h.UpdateHeartbeat(playerID, now, msg.SentAt)
			if !ok {
				continue
			}
			h.sendTo(playerID, heartbeatMessage{
				Ver:        ProtocolVersion,
				Type:       "heartbeat",
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt.Milliseconds(),
			})
		default:
			log.Printf("unknown message type %q from %s", msg.Type, playerID)
		}
	}
}

// dropAndRebroadcast ends the session for a failed connection. When a
// newer connection has already taken the session over, the stale read
// loop exits without touching it.
func (h *Hub) dropAndRebroadcast(playerID string, sub *subscriber) {
	h.mu.Lock()
	current, ok := h.subscribers[playerID]
	h.mu.Unlock()
	if ok && current != sub {
		return
	}
	if players := h.Disconnect(playerID); players != nil {
		go h.broadcastState(players)
	}
}
