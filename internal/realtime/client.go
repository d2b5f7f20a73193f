package realtime

import (
	"encoding/json"
	"time"

	"household-finance-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// readPump pumps inbound frames from the connection into the hub dispatcher.
// A read error, a close, or a missed pong all end here, and the deferred
// disconnect runs the full cleanup (room leaves, offline transition,
// unregister).
func (s *Session) readPump(h *Hub) {
	defer func() {
		h.disconnect(s)
		s.Conn.Close()
	}()
	s.Conn.SetReadLimit(maxMessageSize)
	s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	s.Conn.SetPongHandler(func(string) error {
		s.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("Hub", "Unexpected close", map[string]interface{}{"conn_id": s.ConnId, "error": err.Error()})
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			h.sendError(s, "malformed frame")
			continue
		}
		h.dispatch(s, &env)
	}
}

// writePump pumps outbound frames from the Send queue to the connection and
// keeps the heartbeat alive.
func (s *Session) writePump(log logger.ILogger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.Send:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn("Hub", "Ping failed", map[string]interface{}{"conn_id": s.ConnId, "error": err.Error()})
				return
			}
		}
	}
}
