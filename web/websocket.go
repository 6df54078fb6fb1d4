package web

import (
	"net/http"
)

type welcomeMessage struct {
	Type string      `json:"type"`
	Data welcomeData `json:"data"`
}

type welcomeData struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// handleWebSocket GET /ws upgrades the request into a subscriber session.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade error: %v", err)
		return
	}

	session := newSession(s.wsHub, conn, s.clock)
	session.SendJSON(welcomeMessage{
		Type: "welcome",
		Data: welcomeData{SessionID: session.ID, Message: "Connected to live match updates"},
	})

	s.wsHub.Register(session)
	session.start()
}
