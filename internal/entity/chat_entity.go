// FILE: internal/entity/chat_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

// RoomKind identifies the logical scope a room belongs to.
type RoomKind string

const (
	RoomKindDocument     RoomKind = "document"
	RoomKindChat         RoomKind = "chat"
	RoomKindHousehold    RoomKind = "household"
	RoomKindUser         RoomKind = "user"
	RoomKindSubscription RoomKind = "subscription"
)

// ChatMessage is durable and append-only: never mutated, never deleted by
// this core. ParentId threads replies.
type ChatMessage struct {
	Id        uuid.UUID
	RoomKind  RoomKind
	RoomId    uuid.UUID
	UserId    uuid.UUID
	Text      string
	ParentId  *uuid.UUID
	CreatedAt time.Time
}
