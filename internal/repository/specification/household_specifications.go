package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByHouseholdID struct {
	HouseholdID uuid.UUID
}

func (s ByHouseholdID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("household_id = ?", s.HouseholdID)
}

type ByUserID struct {
	UserID uuid.UUID
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// ActiveOnly narrows memberships to the rows the admission cap counts.
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}

type ByToken struct {
	Token string
}

func (s ByToken) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("token = ?", s.Token)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

// ExpiresBefore selects rows whose TTL elapsed before the given instant.
type ExpiresBefore struct {
	At time.Time
}

func (s ExpiresBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("expires_at < ?", s.At)
}
