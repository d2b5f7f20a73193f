// FILE: internal/dto/household_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterHouseholdRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type RegisterHouseholdResponse struct {
	Id       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	MaxUsers int       `json:"maxUsers"`
}

// AdmissionStatus is the canAdmit probe result. The same shape (minus
// Allowed) rides the 403 rejection body.
type AdmissionStatus struct {
	Allowed      bool `json:"allowed"`
	CurrentUsers int  `json:"currentUsers"`
	MaxUsers     int  `json:"maxUsers"`
}

type MemberResponse struct {
	UserId   uuid.UUID `json:"userId"`
	Email    string    `json:"email"`
	FullName string    `json:"fullName"`
	Role     string    `json:"role"`
	Active   bool      `json:"active"`
	JoinedAt time.Time `json:"joinedAt"`
}
