package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"unicode/utf8"
)

// maxMessageLen bounds inbound chat messages, counted in runes; longer input
// is truncated, not rejected, so a pasted wall of text still gets an answer.
const maxMessageLen = 2000

type chatRequest struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// HandleChat serves one assistant turn: POST {message} in, {answer, data?}
// out. Upstream failures surface as a generic 500; the real error goes to
// the log, never to the client.
func HandleChat(w http.ResponseWriter, r *http.Request, assistant Assistant) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method_not_allowed"})
		return
	}
	if assistant == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "agent_unavailable"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Detail: "invalid JSON body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Detail: "message required"})
		return
	}
	msg := truncateMessage(req.Message)

	reply, err := assistant.Respond(r.Context(), msg)
	if err != nil {
		slog.Error("agent turn failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "agent_error", Detail: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// truncateMessage cuts msg to maxMessageLen runes, never splitting one.
func truncateMessage(msg string) string {
	if utf8.RuneCountInString(msg) <= maxMessageLen {
		return msg
	}
	return string([]rune(msg)[:maxMessageLen])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
