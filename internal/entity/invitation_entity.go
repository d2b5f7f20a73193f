// FILE: internal/entity/invitation_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusExpired  InvitationStatus = "expired"
)

// Invitation state machine: pending -> accepted | expired. Accepting creates
// a membership only if admission still holds at accept time; on denial the
// invitation stays pending so it can be retried after someone leaves.
type Invitation struct {
	Id          uuid.UUID
	HouseholdId uuid.UUID
	Email       string
	Role        MembershipRole
	Token       string
	Status      InvitationStatus
	ExpiresAt   time.Time
	CreatedAt   time.Time
	AcceptedAt  *time.Time
}

func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
