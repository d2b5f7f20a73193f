// FILE: internal/entity/user_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusBlocked  UserStatus = "blocked"
)

// User is a read model only. Account creation, passwords and token minting
// live in the identity platform; this core just resolves verified user ids
// to display data and status.
type User struct {
	Id        uuid.UUID
	Email     string
	FullName  string
	Status    UserStatus
	CreatedAt time.Time
}

// NotificationPreference gates the best-effort offline chat notification.
type NotificationPreference struct {
	UserId           uuid.UUID
	ChatEmailEnabled bool
	MutedRooms       []string
	UpdatedAt        time.Time
}
