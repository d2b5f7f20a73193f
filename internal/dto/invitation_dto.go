// FILE: internal/dto/invitation_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendInvitationRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=admin member viewer"`
}

type SendInvitationResponse struct {
	Id        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token" validate:"required"`
}

type AcceptInvitationResponse struct {
	HouseholdId uuid.UUID `json:"householdId"`
	Role        string    `json:"role"`
}
