package http

import (
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/aretw0/abacus/pkg/domain"
)

// KeyMessage is sent by WebSocket clients, one key per message.
type KeyMessage struct {
	Key string `json:"key"`
}

// DisplayMessage is the server's reply to every KeyMessage.
type DisplayMessage struct {
	Display domain.Display `json:"display"`
	Error   *Failure       `json:"error,omitempty"`
}

// KeypadSocket handles GET /sessions/{id}/ws. The session must exist.
func (s *Server) KeypadSocket(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := s.sessions.Load(r.Context(), id); err != nil {
		s.storeError(w, id, err)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", "session_id", id, "err", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	for {
		var msg KeyMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				s.logger.Debug("websocket read ended", "session_id", id, "err", err)
			}
			return
		}

		reply := DisplayMessage{}
		resp, err := s.press(r, id, []string{msg.Key})
		switch {
		case err == nil:
			reply.Display = resp.Display
			if len(resp.Failures) > 0 {
				f := resp.Failures[0]
				reply.Error = &f
			}
		case errors.Is(err, domain.ErrSessionNotFound):
			_ = conn.Close(websocket.StatusPolicyViolation, "session deleted")
			return
		default:
			reply.Error = &Failure{Key: msg.Key, Kind: domain.KindGeneric, Message: err.Error()}
		}

		if err := wsjson.Write(ctx, conn, reply); err != nil {
			s.logger.Debug("websocket write failed", "session_id", id, "err", err)
			return
		}
	}
}
