package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RoomKind  string     `gorm:"type:varchar(20);not null;index:idx_chat_messages_room,priority:1"`
	RoomId    uuid.UUID  `gorm:"type:uuid;not null;index:idx_chat_messages_room,priority:2"`
	UserId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Text      string     `gorm:"type:text;not null"`
	ParentId  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index:idx_chat_messages_room,priority:3"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
