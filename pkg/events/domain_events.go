package events

import (
	"time"

	"github.com/google/uuid"
)

// Event type codes consumed by the notification worker.
const (
	TypeMemberJoined      = "MEMBER_JOINED"
	TypeMemberDeactivated = "MEMBER_DEACTIVATED"
	TypeInvitationSent    = "INVITATION_SENT"
)

// NewMemberJoined is emitted after an admission transaction commits.
func NewMemberJoined(householdID, userID uuid.UUID, role string) Event {
	return BaseEvent{
		Type: TypeMemberJoined,
		Data: map[string]interface{}{
			"household_id": householdID.String(),
			"user_id":      userID.String(),
			"role":         role,
		},
		OccurredAt: time.Now(),
	}
}

func NewMemberDeactivated(householdID, userID uuid.UUID) Event {
	return BaseEvent{
		Type: TypeMemberDeactivated,
		Data: map[string]interface{}{
			"household_id": householdID.String(),
			"user_id":      userID.String(),
		},
		OccurredAt: time.Now(),
	}
}

func NewInvitationSent(householdID uuid.UUID, email, role string) Event {
	return BaseEvent{
		Type: TypeInvitationSent,
		Data: map[string]interface{}{
			"household_id": householdID.String(),
			"email":        email,
			"role":         role,
		},
		OccurredAt: time.Now(),
	}
}
