package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"household-finance-be/internal/entity"
	"household-finance-be/internal/identity"
	"household-finance-be/internal/pkg/logger"
	"household-finance-be/internal/service"
	"household-finance-be/pkg/bus"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// busChannel is the single fan-out channel shared by all instances. Every
// frame carries its room key; each instance re-delivers to the local
// sessions attached to that room.
const busChannel = "realtime_events"

type busFrame struct {
	Origin      string          `json:"origin"`
	Room        string          `json:"room"`
	ExcludeUser string          `json:"exclude_user,omitempty"`
	Message     json.RawMessage `json:"message"`
}

// Hub owns the per-instance connection table and room registry. Cross
// instance state (fan-out, collaborator sets) goes through the bus and
// Redis; nothing here is authoritative beyond this process.
type Hub struct {
	instanceId string

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session            // conn id -> session
	byUser   map[uuid.UUID]map[uuid.UUID]*Session // user id -> conn id -> session
	rooms    map[string]map[uuid.UUID]*Session // room key -> conn id -> session

	bus           bus.Bus
	rdb           *redis.Client // nil in single-node mode
	chat          service.IChatService
	notifications service.INotificationService
	scheduler     *Scheduler
	logger        logger.ILogger

	highlightTTL time.Duration
}

func NewHub(
	b bus.Bus,
	rdb *redis.Client,
	chat service.IChatService,
	notifications service.INotificationService,
	scheduler *Scheduler,
	log logger.ILogger,
	highlightTTL time.Duration,
) *Hub {
	return &Hub{
		instanceId:    uuid.NewString(),
		sessions:      make(map[uuid.UUID]*Session),
		byUser:        make(map[uuid.UUID]map[uuid.UUID]*Session),
		rooms:         make(map[string]map[uuid.UUID]*Session),
		bus:           b,
		rdb:           rdb,
		chat:          chat,
		notifications: notifications,
		scheduler:     scheduler,
		logger:        log,
		highlightTTL:  highlightTTL,
	}
}

// SetNotificationService breaks the construction cycle: the notification
// service needs the hub as its delivery sink, and the hub needs the service
// for notification-mark-read. Call before Run.
func (h *Hub) SetNotificationService(s service.INotificationService) {
	h.notifications = s
}

// Run subscribes to the bus and drives the scheduler until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	if h.bus != nil {
		if err := h.bus.Subscribe(busChannel, h.handleBusFrame); err != nil {
			h.logger.Error("Hub", "Failed to subscribe to broadcast bus", map[string]interface{}{"error": err.Error()})
		}
	}
	h.scheduler.Run(ctx)
}

// Connect registers the session, auto-joins its personal room and one room
// per active household, emits the per-connection online transition, and then
// blocks pumping the connection until it closes.
func (h *Hub) Connect(conn *websocket.Conn, ident *identity.Identity, memberships []*entity.HouseholdMembership) {
	session := &Session{
		ConnId:      uuid.New(),
		UserId:      ident.UserID,
		FullName:    ident.FullName,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Memberships: make(map[uuid.UUID]entity.MembershipRole, len(memberships)),
		rooms:       make(map[string]struct{}),
	}
	for _, m := range memberships {
		session.Memberships[m.HouseholdId] = m.Role
	}

	h.register(session)

	go session.writePump(h.logger)
	session.readPump(h)
}

// register inserts the session into the tables, auto-joins its personal and
// household rooms, and emits the online transition.
func (h *Hub) register(session *Session) {
	h.mu.Lock()
	h.sessions[session.ConnId] = session
	if h.byUser[session.UserId] == nil {
		h.byUser[session.UserId] = make(map[uuid.UUID]*Session)
	}
	h.byUser[session.UserId][session.ConnId] = session
	h.addToRoom(session, userRoom(session.UserId).Key())
	for householdId := range session.Memberships {
		h.addToRoom(session, householdRoom(householdId).Key())
	}
	h.mu.Unlock()

	h.logger.Info("Hub", "Session connected", map[string]interface{}{
		"conn_id": session.ConnId,
		"user_id": session.UserId,
	})

	// Presence is per connection: a second tab produces a second online
	// event. Clients deduplicate.
	for householdId := range session.Memberships {
		h.broadcastRoom(householdRoom(householdId).Key(), "user-online",
			map[string]interface{}{"userId": session.UserId}, session.ConnId, uuid.Nil)
	}
}

// disconnect runs full cleanup for a session: announced leaves for
// collaboration rooms, per-connection offline transitions, table removal.
// Reached from read errors, heartbeat timeouts and explicit closes alike.
func (h *Hub) disconnect(session *Session) {
	h.mu.Lock()
	if _, ok := h.sessions[session.ConnId]; !ok {
		h.mu.Unlock()
		return
	}

	var collabLeaves []string
	for key := range session.rooms {
		h.removeFromRoom(session, key)
		if isCollabKey(key) {
			collabLeaves = append(collabLeaves, key)
		}
	}

	delete(h.sessions, session.ConnId)
	delete(h.byUser[session.UserId], session.ConnId)
	if len(h.byUser[session.UserId]) == 0 {
		delete(h.byUser, session.UserId)
	}
	close(session.Send)
	h.mu.Unlock()

	for _, key := range collabLeaves {
		h.announceLeave(session, key)
	}
	for householdId := range session.Memberships {
		h.broadcastRoom(householdRoom(householdId).Key(), "user-offline",
			map[string]interface{}{"userId": session.UserId}, uuid.Nil, uuid.Nil)
	}

	h.logger.Info("Hub", "Session disconnected", map[string]interface{}{
		"conn_id": session.ConnId,
		"user_id": session.UserId,
	})
}

// addToRoom and removeFromRoom require h.mu held.
func (h *Hub) addToRoom(session *Session, key string) {
	if h.rooms[key] == nil {
		h.rooms[key] = make(map[uuid.UUID]*Session)
	}
	h.rooms[key][session.ConnId] = session
	session.rooms[key] = struct{}{}
}

func (h *Hub) removeFromRoom(session *Session, key string) {
	delete(session.rooms, key)
	if members, ok := h.rooms[key]; ok {
		delete(members, session.ConnId)
		if len(members) == 0 {
			delete(h.rooms, key)
		}
	}
}

func (h *Hub) joinRoom(session *Session, key string) {
	h.mu.Lock()
	h.addToRoom(session, key)
	h.mu.Unlock()
}

func (h *Hub) leaveRoom(session *Session, key string) {
	h.mu.Lock()
	h.removeFromRoom(session, key)
	h.mu.Unlock()
}

func (h *Hub) inRoom(session *Session, key string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := session.rooms[key]
	return ok
}

// announceLeave broadcasts collab-user-left and drops the user from the
// cluster-wide collaborator set once no local session of theirs remains in
// the room.
func (h *Hub) announceLeave(session *Session, key string) {
	h.broadcastRoom(key, "collab-user-left",
		map[string]interface{}{"userId": session.UserId}, uuid.Nil, uuid.Nil)

	h.mu.RLock()
	stillPresent := false
	for _, other := range h.rooms[key] {
		if other.UserId == session.UserId {
			stillPresent = true
			break
		}
	}
	h.mu.RUnlock()

	if !stillPresent && h.rdb != nil {
		if err := h.rdb.SRem(context.Background(), membersKey(key), session.UserId.String()).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to update collaborator set", map[string]interface{}{"room": key, "error": err.Error()})
		}
	}
}

// broadcastRoom delivers an event to the local members of a room and
// publishes it on the bus for sibling instances. excludeConn filters one
// local connection (typically the sender's); excludeUser filters every
// session of a user cluster-wide.
func (h *Hub) broadcastRoom(roomKey, event string, data interface{}, excludeConn, excludeUser uuid.UUID) {
	msg := encodeEvent(event, data)
	h.deliverLocal(roomKey, msg, excludeConn, excludeUser)

	if h.bus == nil {
		return
	}
	frame := busFrame{
		Origin:  h.instanceId,
		Room:    roomKey,
		Message: msg,
	}
	if excludeUser != uuid.Nil {
		frame.ExcludeUser = excludeUser.String()
	}
	payload, _ := json.Marshal(frame)
	if err := h.bus.Publish(context.Background(), busChannel, payload); err != nil {
		// At-most-once by contract: log and move on.
		h.logger.Warn("Hub", "Bus publish failed", map[string]interface{}{"room": roomKey, "error": err.Error()})
	}
}

func (h *Hub) handleBusFrame(_ string, payload []byte) {
	var frame busFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		h.logger.Warn("Hub", "Malformed bus frame", map[string]interface{}{"error": err.Error()})
		return
	}
	if frame.Origin == h.instanceId {
		// Local members already got this one.
		return
	}

	excludeUser := uuid.Nil
	if frame.ExcludeUser != "" {
		excludeUser, _ = uuid.Parse(frame.ExcludeUser)
	}
	h.deliverLocal(frame.Room, frame.Message, uuid.Nil, excludeUser)
}

func (h *Hub) deliverLocal(roomKey string, msg []byte, excludeConn, excludeUser uuid.UUID) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for connId, session := range h.rooms[roomKey] {
		if connId == excludeConn || (excludeUser != uuid.Nil && session.UserId == excludeUser) {
			continue
		}
		h.sendBytes(session, msg)
	}
}

func (h *Hub) sendToSession(session *Session, event string, data interface{}) {
	h.sendBytes(session, encodeEvent(event, data))
}

func (h *Hub) sendError(session *Session, message string) {
	h.sendToSession(session, "error", map[string]interface{}{"message": message})
}

// sendBytes drops the frame when the session's queue is full; the heartbeat
// eventually tears the connection down if it never drains.
func (h *Hub) sendBytes(session *Session, msg []byte) {
	select {
	case session.Send <- msg:
	default:
		h.logger.Warn("Hub", "Session send buffer full, dropping frame", map[string]interface{}{
			"conn_id": session.ConnId,
			"user_id": session.UserId,
		})
	}
}

// Collaborators returns the cluster-wide user ids present in a room when
// Redis is available, falling back to the local table otherwise.
func (h *Hub) Collaborators(roomKey string) []uuid.UUID {
	if h.rdb != nil {
		members, err := h.rdb.SMembers(context.Background(), membersKey(roomKey)).Result()
		if err == nil {
			out := make([]uuid.UUID, 0, len(members))
			for _, m := range members {
				if id, err := uuid.Parse(m); err == nil {
					out = append(out, id)
				}
			}
			return out
		}
		h.logger.Warn("Hub", "Collaborator set read failed, using local view", map[string]interface{}{"room": roomKey, "error": err.Error()})
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, session := range h.rooms[roomKey] {
		if !seen[session.UserId] {
			seen[session.UserId] = true
			out = append(out, session.UserId)
		}
	}
	return out
}

// onlineUsers is the local instance's view, used to pick offline-notify
// recipients. A user connected to a sibling instance may still get an email.
func (h *Hub) onlineUsers() map[uuid.UUID]bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	online := make(map[uuid.UUID]bool, len(h.byUser))
	for userId := range h.byUser {
		online[userId] = true
	}
	return online
}

// SendToUser implements service.Delivery via the user's personal room.
func (h *Hub) SendToUser(userID uuid.UUID, event string, data interface{}) {
	h.broadcastRoom(userRoom(userID).Key(), event, data, uuid.Nil, uuid.Nil)
}

// PublishUpdate implements service.Delivery for data-subscription channels.
func (h *Hub) PublishUpdate(resourceType string, resourceId uuid.UUID, data interface{}) {
	h.broadcastRoom(subscriptionKey(resourceType, resourceId), "data-update", map[string]interface{}{
		"type":      resourceType,
		"id":        resourceId,
		"data":      data,
		"timestamp": time.Now(),
	}, uuid.Nil, uuid.Nil)
}
