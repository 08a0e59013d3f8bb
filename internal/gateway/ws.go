package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// WSMessage is the JSON message protocol for the WebSocket gateway.
// Example: {"type": "chat", "content": "any python courses?"}
type WSMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// jsonMarshal is used when encoding WSMessage; tests may replace it to force
// Marshal errors. Access is protected by jsonMarshalMu for race-safe swaps.
var (
	jsonMarshalMu sync.RWMutex
	jsonMarshal   = json.Marshal
)

// Default upgrader for WebSocket connections.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request to WebSocket and runs a read loop. "chat"
// messages go through the assistant, with typing_start/typing_stop framing
// the turn so the client can show an indicator; anything else echoes.
// Writes are serialized with a mutex so multiple goroutines write safely.
// Only GET is accepted for the WebSocket handshake.
func HandleWS(w http.ResponseWriter, r *http.Request, assistant Assistant) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var in WSMessage
		if err := json.Unmarshal(raw, &in); err != nil {
			reply := WSMessage{Type: "error", Content: "invalid JSON"}
			writeWSMessage(conn, &writeMu, &reply)
			continue
		}

		if assistant == nil || in.Type != "chat" {
			out := WSMessage{Type: in.Type, Content: "echo: " + in.Content}
			writeWSMessage(conn, &writeMu, &out)
			continue
		}

		typingStart := WSMessage{Type: "typing_start"}
		writeWSMessage(conn, &writeMu, &typingStart)

		msg := truncateMessage(in.Content)

		out := WSMessage{Type: "chat"}
		reply, err := assistant.Respond(r.Context(), msg)
		if err != nil {
			slog.Error("agent turn failed", "error", err)
			out.Type = "error"
			out.Content = "internal error"
		} else {
			out.Content = reply.Answer
			out.Data = reply.Data
		}
		writeWSMessage(conn, &writeMu, &out)

		typingStop := WSMessage{Type: "typing_stop"}
		writeWSMessage(conn, &writeMu, &typingStop)
	}
}

func writeWSMessage(conn *websocket.Conn, mu *sync.Mutex, msg *WSMessage) {
	jsonMarshalMu.RLock()
	marshal := jsonMarshal
	jsonMarshalMu.RUnlock()
	data, err := marshal(msg)
	if err != nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	_ = conn.WriteMessage(websocket.TextMessage, data)
}
