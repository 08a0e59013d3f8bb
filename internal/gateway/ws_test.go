package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"fekra/internal/agent"
)

func dialWS(t *testing.T, assistant Assistant) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleWS(w, r, assistant)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	var msg WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestHandleWS_ShouldEchoNonChatMessages(t *testing.T) {
	conn := dialWS(t, &stubAssistant{reply: &agent.Reply{Answer: "unused"}})
	if err := conn.WriteJSON(WSMessage{Type: "ping", Content: "hello"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := readWS(t, conn)
	if out.Type != "ping" || out.Content != "echo: hello" {
		t.Errorf("unexpected echo: %+v", out)
	}
}

func TestHandleWS_ShouldFrameChatWithTypingEvents(t *testing.T) {
	assistant := &stubAssistant{reply: &agent.Reply{Answer: "One Python course.", Data: []string{"Intro to Python"}}}
	conn := dialWS(t, assistant)

	if err := conn.WriteJSON(WSMessage{Type: "chat", Content: "python courses?"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	if out := readWS(t, conn); out.Type != "typing_start" {
		t.Errorf("expected typing_start first, got %+v", out)
	}
	out := readWS(t, conn)
	if out.Type != "chat" || out.Content != "One Python course." {
		t.Errorf("unexpected chat reply: %+v", out)
	}
	if out.Data == nil {
		t.Error("chat reply should carry tool data")
	}
	if out := readWS(t, conn); out.Type != "typing_stop" {
		t.Errorf("expected typing_stop last, got %+v", out)
	}
}

func TestHandleWS_ShouldReportInvalidJSON(t *testing.T) {
	conn := dialWS(t, nil)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := readWS(t, conn)
	if out.Type != "error" || out.Content != "invalid JSON" {
		t.Errorf("unexpected reply: %+v", out)
	}
}

func TestHandleWS_ShouldRejectNonGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/ws", nil)
	w := httptest.NewRecorder()
	HandleWS(w, req, nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: %d", w.Code)
	}
}
