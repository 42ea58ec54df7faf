package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/venue-scout/internal/intent"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type           string `json:"type"` // "ask"
	VenueID        string `json:"venue_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	Content        string `json:"content"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type           string   `json:"type"` // "answer", "clarify" or "error"
	ConversationID string   `json:"conversation_id,omitempty"`
	Headline       string   `json:"headline,omitempty"`
	Body           string   `json:"body,omitempty"`
	Facts          []string `json:"facts,omitempty"`
	Caveats        []string `json:"caveats,omitempty"`
	Actions        []string `json:"actions,omitempty"`
	Narrated       bool     `json:"narrated,omitempty"`
	Error          string   `json:"error,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read", zap.Error(err))
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendChat(conn, chatResponse{Type: "error", Error: "invalid message format"})
			continue
		}
		if req.Type != "ask" {
			s.sendChat(conn, chatResponse{Type: "error", ConversationID: req.ConversationID, Error: "unknown message type: " + req.Type})
			continue
		}
		if req.Content == "" {
			s.sendChat(conn, chatResponse{Type: "error", ConversationID: req.ConversationID, Error: "content is required"})
			continue
		}

		resp, err := s.answer(r.Context(), askRequest{
			VenueID:        req.VenueID,
			ConversationID: req.ConversationID,
			Question:       req.Content,
		})
		switch {
		case err == nil:
			s.sendChat(conn, chatResponse{
				Type:           "answer",
				ConversationID: resp.ConversationID,
				Headline:       resp.Headline,
				Body:           resp.Body,
				Facts:          resp.Facts,
				Caveats:        resp.Caveats,
				Actions:        resp.Actions,
				Narrated:       resp.Narrated,
			})
		case errors.Is(err, intent.ErrNeedClarification):
			s.sendChat(conn, chatResponse{
				Type:           "clarify",
				ConversationID: req.ConversationID,
				Headline:       clarificationMessage,
			})
		default:
			s.sendChat(conn, chatResponse{Type: "error", ConversationID: req.ConversationID, Error: err.Error()})
		}
	}
}

func (s *Server) sendChat(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		s.log.Warn("websocket write", zap.Error(err))
	}
}
