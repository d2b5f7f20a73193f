package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName  string    `gorm:"type:varchar(255);not null"`
	Status    string    `gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

type NotificationPreference struct {
	UserId           uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	ChatEmailEnabled bool                        `gorm:"default:true"`
	MutedRooms       datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	UpdatedAt        time.Time                   `gorm:"autoUpdateTime"`
}

func (NotificationPreference) TableName() string {
	return "notification_preferences"
}
