// FILE: internal/entity/household_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type MembershipRole string

const (
	MembershipRoleAdmin  MembershipRole = "admin"
	MembershipRoleMember MembershipRole = "member"
	MembershipRoleViewer MembershipRole = "viewer"
)

// Household is the collaboration space. MaxUsers is copied onto the row at
// creation time so the admission lock has a natural anchor and the cap can
// be tuned per household later without a config change.
type Household struct {
	Id        uuid.UUID
	Name      string
	MaxUsers  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HouseholdMembership links a user to a household. The count of Active
// memberships per household never exceeds Household.MaxUsers at any
// committed point in time.
type HouseholdMembership struct {
	Id          uuid.UUID
	HouseholdId uuid.UUID
	UserId      uuid.UUID
	Role        MembershipRole
	Active      bool
	JoinedAt    time.Time
}
