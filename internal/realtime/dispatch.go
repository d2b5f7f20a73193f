package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"household-finance-be/internal/entity"
	"household-finance-be/internal/service"

	"github.com/google/uuid"
)

type joinCollaborationPayload struct {
	Kind        string     `json:"kind"`
	ScopeId     uuid.UUID  `json:"scopeId"`
	HouseholdId *uuid.UUID `json:"householdId,omitempty"`
}

type leaveCollaborationPayload struct {
	Kind    string    `json:"kind"`
	ScopeId uuid.UUID `json:"scopeId"`
}

type editPayload struct {
	Kind      string          `json:"kind"`
	ScopeId   uuid.UUID       `json:"scopeId"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
}

type highlightPayload struct {
	Kind    string    `json:"kind"`
	ScopeId uuid.UUID `json:"scopeId"`
	ItemId  uuid.UUID `json:"itemId"`
	Note    string    `json:"note,omitempty"`
}

type chatRoomPayload struct {
	RoomType string    `json:"roomType"`
	RoomId   uuid.UUID `json:"roomId"`
}

type chatSendPayload struct {
	RoomType string     `json:"roomType"`
	RoomId   uuid.UUID  `json:"roomId"`
	Message  string     `json:"message"`
	ParentId *uuid.UUID `json:"parentId,omitempty"`
}

type chatTypingPayload struct {
	RoomType string    `json:"roomType"`
	RoomId   uuid.UUID `json:"roomId"`
	IsTyping bool      `json:"isTyping"`
}

type subscriptionTarget struct {
	Type string    `json:"type"`
	Id   uuid.UUID `json:"id"`
}

type markReadPayload struct {
	NotificationId uuid.UUID `json:"notificationId"`
}

func (h *Hub) dispatch(s *Session, env *Envelope) {
	switch env.Event {
	case "join-collaboration":
		h.handleJoinCollaboration(s, env.Data)
	case "leave-collaboration":
		h.handleLeaveCollaboration(s, env.Data)
	case "edit":
		h.handleEdit(s, env.Data)
	case "highlight":
		h.handleHighlight(s, env.Data)
	case "chat-join":
		h.handleChatJoin(s, env.Data)
	case "chat-send":
		h.handleChatSend(s, env.Data)
	case "chat-typing":
		h.handleChatTyping(s, env.Data)
	case "subscribe-updates":
		h.handleSubscribe(s, env.Data)
	case "unsubscribe-updates":
		h.handleUnsubscribe(s, env.Data)
	case "notification-mark-read":
		h.handleMarkRead(s, env.Data)
	default:
		h.sendError(s, "unknown event: "+env.Event)
	}
}

// authorizeRoom enforces the membership rule: rooms scoped to a household
// are only joinable with an active membership in that household. Violations
// emit an error event; the connection stays open.
func (h *Hub) authorizeRoom(s *Session, kind entity.RoomKind, scopeId uuid.UUID, householdId *uuid.UUID) bool {
	switch kind {
	case entity.RoomKindHousehold, entity.RoomKindChat:
		return s.HasMembership(scopeId)
	case entity.RoomKindDocument:
		if householdId == nil {
			return false
		}
		return s.HasMembership(*householdId)
	default:
		return false
	}
}

func parseRoomKind(raw string) (entity.RoomKind, bool) {
	switch kind := entity.RoomKind(raw); kind {
	case entity.RoomKindDocument, entity.RoomKindChat, entity.RoomKindHousehold:
		return kind, true
	default:
		return "", false
	}
}

func (h *Hub) handleJoinCollaboration(s *Session, data json.RawMessage) {
	var p joinCollaborationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.sendError(s, "malformed join-collaboration payload")
		return
	}
	kind, ok := parseRoomKind(p.Kind)
	if !ok {
		h.sendError(s, "unknown room kind: "+p.Kind)
		return
	}
	if !h.authorizeRoom(s, kind, p.ScopeId, p.HouseholdId) {
		h.sendError(s, "access denied")
		return
	}

	room := RoomRef{Kind: kind, ScopeId: p.ScopeId}
	h.joinRoom(s, room.Key())

	if h.rdb != nil {
		if err := h.rdb.SAdd(context.Background(), membersKey(room.Key()), s.UserId.String()).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to update collaborator set", map[string]interface{}{"room": room.Key(), "error": err.Error()})
		}
	}

	h.broadcastRoom(room.Key(), "collab-user-joined", map[string]interface{}{
		"user": map[string]interface{}{
			"id":       s.UserId,
			"fullName": s.FullName,
		},
	}, s.ConnId, uuid.Nil)
}

func (h *Hub) handleLeaveCollaboration(s *Session, data json.RawMessage) {
	var p leaveCollaborationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.sendError(s, "malformed leave-collaboration payload")
		return
	}
	kind, ok := parseRoomKind(p.Kind)
	if !ok {
		h.sendError(s, "unknown room kind: "+p.Kind)
		return
	}

	room := RoomRef{Kind: kind, ScopeId: p.ScopeId}
	if !h.inRoom(s, room.Key()) {
		return
	}
	h.leaveRoom(s, room.Key())
	h.announceLeave(s, room.Key())
}

func (h *Hub) handleEdit(s *Session, data json.RawMessage) {
	var p editPayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.sendError(s, "malformed edit payload")
		return
	}
	if p.Operation != "create" && p.Operation != "update" && p.Operation != "delete" {
		h.sendError(s, "unknown edit operation: "+p.Operation)
		return
	}
	kind, ok := parseRoomKind(p.Kind)
	if !ok {
		h.sendError(s, "unknown room kind: "+p.Kind)
		return
	}
	room := RoomRef{Kind: kind, ScopeId: p.ScopeId}
	if !h.inRoom(s, room.Key()) {
		h.sendError(s, "not in room")
		return
	}

	h.broadcastRoom(room.Key(), "collab-edit", map[string]interface{}{
		"userId":    s.UserId,
		"operation": p.Operation,
		"data":      p.Data,
	}, s.ConnId, uuid.Nil)
}

// handleHighlight broadcasts immediately and registers the removal with the
// centralized scheduler. The due time derives from the creation instant plus
// the fixed TTL, and removal is idempotent: clients that already dropped the
// highlight ignore the event.
func (h *Hub) handleHighlight(s *Session, data json.RawMessage) {
	var p highlightPayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.sendError(s, "malformed highlight payload")
		return
	}
	kind, ok := parseRoomKind(p.Kind)
	if !ok {
		h.sendError(s, "unknown room kind: "+p.Kind)
		return
	}
	room := RoomRef{Kind: kind, ScopeId: p.ScopeId}
	if !h.inRoom(s, room.Key()) {
		h.sendError(s, "not in room")
		return
	}

	h.broadcastRoom(room.Key(), "collab-highlight", map[string]interface{}{
		"userId": s.UserId,
		"itemId": p.ItemId,
		"note":   p.Note,
	}, s.ConnId, uuid.Nil)

	createdAt := time.Now()
	roomKey := room.Key()
	itemId := p.ItemId
	h.scheduler.Schedule(createdAt.Add(h.highlightTTL), func() {
		// The removal fires regardless of whether the creating session is
		// still connected.
		h.broadcastRoom(roomKey, "collab-highlight-remove", map[string]interface{}{
			"itemId": itemId,
		}, uuid.Nil, uuid.Nil)
	})
}

func (h *Hub) handleChatJoin(s *Session, data json.RawMessage) {
	var p chatRoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.sendError(s, "malformed chat-join payload")
		return
	}
	kind, ok := parseRoomKind(p.RoomType)
	if !ok {
		h.sendError(s, "unknown room kind: "+p.RoomType)
		return
	}
	if !h.authorizeRoom(s, kind, p.RoomId, nil) {
		h.sendError(s, "access denied")
		return
	}

	room := RoomRef{Kind: kind, ScopeId: p.RoomId}
	h.joinRoom(s, room.Key())

	history, err := h.chat.History(context.Background(), kind, p.RoomId)
	if err != nil {
		h.logger.Error("Hub", "History load failed", map[string]interface{}{"room": room.Key(), "error": err.Error()})
		h.sendError(s, "failed to load chat history")
		return
	}
	h.sendToSession(s, "chat-history", history)
}

func (h *Hub) handleChatSend(s *Session, data json.RawMessage) {
	var p chatSendPayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.sendError(s, "malformed chat-send payload")
		return
	}
	kind, ok := parseRoomKind(p.RoomType)
	if !ok {
		h.sendError(s, "unknown room kind: "+p.RoomType)
		return
	}
	if !h.authorizeRoom(s, kind, p.RoomId, nil) {
		h.sendError(s, "access denied")
		return
	}

	message, err := h.chat.Send(context.Background(), s.UserId, kind, p.RoomId, p.Message, p.ParentId)
	if err != nil {
		var validation *service.ValidationError
		if errors.As(err, &validation) {
			h.sendError(s, validation.Message)
			return
		}
		h.logger.Error("Hub", "Chat persist failed", map[string]interface{}{"error": err.Error()})
		h.sendError(s, "failed to send message")
		return
	}

	// Broadcast strictly after persistence. No exclusions: the sender gets
	// the authoritative copy back (self-echo) exactly once.
	room := RoomRef{Kind: kind, ScopeId: p.RoomId}
	h.broadcastRoom(room.Key(), "chat-message", message, uuid.Nil, uuid.Nil)
	if !h.inRoom(s, room.Key()) {
		// Sender hasn't chat-joined; deliver the echo directly.
		h.sendToSession(s, "chat-message", message)
	}

	// Offline notification rides behind the request, best-effort.
	online := h.onlineUsers()
	go h.chat.NotifyOffline(context.Background(), p.RoomId, s.UserId, room.Key(), message.Text, online)
}

func (h *Hub) handleChatTyping(s *Session, data json.RawMessage) {
	var p chatTypingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.sendError(s, "malformed chat-typing payload")
		return
	}
	kind, ok := parseRoomKind(p.RoomType)
	if !ok {
		h.sendError(s, "unknown room kind: "+p.RoomType)
		return
	}
	room := RoomRef{Kind: kind, ScopeId: p.RoomId}
	if !h.inRoom(s, room.Key()) {
		h.sendError(s, "not in room")
		return
	}

	// Excludes every session of the sender, not just this connection.
	// No server-side auto-clear: receivers expire the indicator locally.
	h.broadcastRoom(room.Key(), "chat-user-typing", map[string]interface{}{
		"userId":   s.UserId,
		"isTyping": p.IsTyping,
	}, uuid.Nil, s.UserId)
}

func (h *Hub) handleSubscribe(s *Session, data json.RawMessage) {
	var targets []subscriptionTarget
	if err := json.Unmarshal(data, &targets); err != nil {
		h.sendError(s, "malformed subscribe-updates payload")
		return
	}
	for _, t := range targets {
		h.joinRoom(s, subscriptionKey(t.Type, t.Id))
	}
}

func (h *Hub) handleUnsubscribe(s *Session, data json.RawMessage) {
	var targets []subscriptionTarget
	if err := json.Unmarshal(data, &targets); err != nil {
		h.sendError(s, "malformed unsubscribe-updates payload")
		return
	}
	for _, t := range targets {
		h.leaveRoom(s, subscriptionKey(t.Type, t.Id))
	}
}

func (h *Hub) handleMarkRead(s *Session, data json.RawMessage) {
	var p markReadPayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.sendError(s, "malformed notification-mark-read payload")
		return
	}
	if err := h.notifications.MarkAsRead(context.Background(), p.NotificationId); err != nil {
		h.sendError(s, "failed to mark notification read")
	}
}
