// FILE: internal/dto/chat_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessageResponse is the authoritative server copy echoed back to every
// room member, the sender included.
type ChatMessageResponse struct {
	Id        uuid.UUID       `json:"id"`
	RoomType  string          `json:"roomType"`
	RoomId    uuid.UUID       `json:"roomId"`
	User      ChatMessageUser `json:"user"`
	Text      string          `json:"text"`
	ParentId  *uuid.UUID      `json:"parentId,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type ChatMessageUser struct {
	Id       uuid.UUID `json:"id"`
	FullName string    `json:"fullName,omitempty"`
}

type ChatHistoryResponse struct {
	RoomType string                 `json:"roomType"`
	RoomId   uuid.UUID              `json:"roomId"`
	Messages []*ChatMessageResponse `json:"messages"`
}
