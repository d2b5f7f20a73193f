package model

import (
	"time"

	"github.com/google/uuid"
)

type Invitation struct {
	Id          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	HouseholdId uuid.UUID  `gorm:"type:uuid;not null;index"`
	Email       string     `gorm:"type:varchar(255);not null;index"`
	Role        string     `gorm:"type:varchar(20);not null;default:'member'"`
	Token       string     `gorm:"type:varchar(64);uniqueIndex;not null"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	ExpiresAt   time.Time  `gorm:"not null;index"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	AcceptedAt  *time.Time
}

func (Invitation) TableName() string {
	return "invitations"
}
