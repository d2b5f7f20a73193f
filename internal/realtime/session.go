package realtime

import (
	"encoding/json"

	"household-finance-be/internal/entity"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Session is the per-connection state. One user with two open tabs has two
// sessions; presence events are emitted per session, not per user.
type Session struct {
	ConnId   uuid.UUID
	UserId   uuid.UUID
	FullName string

	Conn *websocket.Conn

	// Send is the bounded outbound queue. A full queue drops the session
	// rather than blocking the hub (explicit backpressure).
	Send chan []byte

	// Memberships holds the user's active household roles, loaded once at
	// connect time. Room authorization checks against this set.
	Memberships map[uuid.UUID]entity.MembershipRole

	// rooms the session currently belongs to, keyed by room key.
	// Guarded by the hub mutex.
	rooms map[string]struct{}
}

func (s *Session) HasMembership(householdId uuid.UUID) bool {
	_, ok := s.Memberships[householdId]
	return ok
}

// Envelope is the wire frame for every inbound and outbound event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func encodeEvent(event string, data interface{}) []byte {
	frame, _ := json.Marshal(struct {
		Event string      `json:"event"`
		Data  interface{} `json:"data"`
	}{Event: event, Data: data})
	return frame
}
