package model

import (
	"time"

	"github.com/google/uuid"
)

type Household struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"type:text;not null"`
	MaxUsers  int       `gorm:"not null;default:5"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Household) TableName() string {
	return "households"
}

type HouseholdMembership struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	HouseholdId uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_memberships_household_user,priority:1"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_memberships_household_user,priority:2"`
	Role        string    `gorm:"type:varchar(20);not null;default:'member'"`
	Active      bool      `gorm:"not null;default:true;index"`
	JoinedAt    time.Time `gorm:"autoCreateTime"`
}

func (HouseholdMembership) TableName() string {
	return "household_memberships"
}
