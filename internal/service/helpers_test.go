package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"household-finance-be/internal/entity"
	"household-finance-be/internal/repository/memory"
	"household-finance-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// captureMailer records outgoing mail instead of sending it.
type captureMailer struct {
	mu          sync.Mutex
	invitations []string // recipient emails
	digests     []string // recipient emails
}

func (m *captureMailer) SendInvitation(toEmail, householdName, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invitations = append(m.invitations, toEmail)
	return nil
}

func (m *captureMailer) SendChatDigest(toEmail, senderName, roomName, preview string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.digests = append(m.digests, toEmail)
	return nil
}

func (m *captureMailer) sentInvitations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.invitations...)
}

func (m *captureMailer) sentDigests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.digests...)
}

func newMemoryFactory() unitofwork.RepositoryFactory {
	return memory.NewRepositoryFactory(memory.NewStore())
}

func seedUser(t *testing.T, factory unitofwork.RepositoryFactory, email, fullName string) uuid.UUID {
	t.Helper()
	user := entity.User{
		Id:       uuid.New(),
		Email:    email,
		FullName: fullName,
		Status:   entity.UserStatusActive,
	}
	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.UserRepository().Create(context.Background(), &user))
	return user.Id
}

// seedHousehold creates a household at the given cap with `active` active
// members. The first member is the admin; their id is returned second.
func seedHousehold(t *testing.T, factory unitofwork.RepositoryFactory, maxUsers, active int) (uuid.UUID, uuid.UUID, []uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)

	household := entity.Household{Id: uuid.New(), Name: "Test Household", MaxUsers: maxUsers}
	require.NoError(t, uow.HouseholdRepository().Create(ctx, &household))

	var memberIds []uuid.UUID
	var adminId uuid.UUID
	for i := 0; i < active; i++ {
		role := entity.MembershipRoleMember
		if i == 0 {
			role = entity.MembershipRoleAdmin
		}
		userId := seedUser(t, factory, uuid.NewString()+"@example.com", "Member")
		membership := entity.HouseholdMembership{
			Id:          uuid.New(),
			HouseholdId: household.Id,
			UserId:      userId,
			Role:        role,
			Active:      true,
		}
		require.NoError(t, uow.MembershipRepository().Create(ctx, &membership))
		if i == 0 {
			adminId = userId
		}
		memberIds = append(memberIds, userId)
	}

	return household.Id, adminId, memberIds
}

func seedInvitation(t *testing.T, factory unitofwork.RepositoryFactory, householdId uuid.UUID, email string, status entity.InvitationStatus, expiresAt time.Time) *entity.Invitation {
	t.Helper()
	invitation := entity.Invitation{
		Id:          uuid.New(),
		HouseholdId: householdId,
		Email:       email,
		Role:        entity.MembershipRoleMember,
		Token:       uuid.NewString(),
		Status:      status,
		ExpiresAt:   expiresAt,
	}
	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.InvitationRepository().Create(context.Background(), &invitation))
	return &invitation
}

func activeCount(t *testing.T, factory unitofwork.RepositoryFactory, householdId uuid.UUID) int64 {
	t.Helper()
	uow := factory.NewUnitOfWork(context.Background())
	count, err := uow.MembershipRepository().CountActive(context.Background(), householdId)
	require.NoError(t, err)
	return count
}

func newTestInvitationService(factory unitofwork.RepositoryFactory, mail *captureMailer) IInvitationService {
	return NewInvitationService(factory, mail, nil, nopLogger{}, 72*time.Hour)
}
