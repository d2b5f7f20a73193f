package unitofwork

import (
	"context"

	"household-finance-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	HouseholdRepository() contract.HouseholdRepository
	MembershipRepository() contract.MembershipRepository
	InvitationRepository() contract.InvitationRepository
	ChatMessageRepository() contract.ChatMessageRepository
	UserRepository() contract.UserRepository
	NotificationPreferenceRepository() contract.NotificationPreferenceRepository
}
