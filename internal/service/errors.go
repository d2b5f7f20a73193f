package service

import "errors"

var (
	// ErrAccessDenied is returned when a session tries to act on a household
	// it holds no active membership in.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound is returned for missing households, members or invitations.
	ErrNotFound = errors.New("not found")

	// ErrInvitationExpired is returned when accepting an invitation past its TTL.
	ErrInvitationExpired = errors.New("invitation expired")

	// ErrInvitationUsed is returned when accepting an already-accepted invitation.
	ErrInvitationUsed = errors.New("invitation already accepted")
)

// ValidationError carries a user-facing message for malformed input.
// It never reaches persistence: validation runs before any write.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// AdmissionError is the structured rejection for the membership cap. It is
// never downgraded to success; callers may retry after a member leaves.
type AdmissionError struct {
	CurrentUsers int
	MaxUsers     int
}

func (e *AdmissionError) Error() string {
	return "User limit reached"
}
