package service

import (
	"context"
	"testing"
	"time"

	"household-finance-be/internal/dto"
	"household-finance-be/internal/entity"
	"household-finance-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesAdminMembership(t *testing.T) {
	factory := newMemoryFactory()
	userId := seedUser(t, factory, "owner@example.com", "Owner")

	svc := NewHouseholdService(factory, nil, nopLogger{}, 5)

	res, err := svc.Register(context.Background(), userId, &dto.RegisterHouseholdRequest{Name: "Smith Family"})
	require.NoError(t, err)
	assert.Equal(t, "Smith Family", res.Name)
	assert.Equal(t, 5, res.MaxUsers)

	members, err := svc.Members(context.Background(), userId, res.Id)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, userId, members[0].UserId)
	assert.Equal(t, "admin", members[0].Role)
	assert.True(t, members[0].Active)
	assert.Equal(t, "owner@example.com", members[0].Email)
}

func TestMembersRequiresActiveMembership(t *testing.T) {
	factory := newMemoryFactory()
	householdId, _, _ := seedHousehold(t, factory, 5, 2)

	svc := NewHouseholdService(factory, nil, nopLogger{}, 5)

	_, err := svc.Members(context.Background(), uuid.New(), householdId)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestDeactivateRequiresAdmin(t *testing.T) {
	factory := newMemoryFactory()
	householdId, _, members := seedHousehold(t, factory, 5, 3)

	svc := NewHouseholdService(factory, nil, nopLogger{}, 5)

	err := svc.Deactivate(context.Background(), members[1], householdId, members[2])
	assert.ErrorIs(t, err, ErrAccessDenied)
}

// Deactivating a member frees their seat: an accept that was rejected at the
// cap succeeds after the deactivation.
func TestDeactivateFreesSeat(t *testing.T) {
	factory := newMemoryFactory()
	householdId, adminId, members := seedHousehold(t, factory, 2, 2)

	households := NewHouseholdService(factory, nil, nopLogger{}, 2)
	invitations := newTestInvitationService(factory, &captureMailer{})

	invite := seedInvitation(t, factory, householdId, "third@example.com", entity.InvitationStatusPending, time.Now().Add(time.Hour))
	thirdUser := seedUser(t, factory, "third@example.com", "Third User")

	_, err := invitations.Accept(context.Background(), thirdUser, &dto.AcceptInvitationRequest{Token: invite.Token})
	var admission *AdmissionError
	require.ErrorAs(t, err, &admission)

	require.NoError(t, households.Deactivate(context.Background(), adminId, householdId, members[1]))
	assert.Equal(t, int64(1), activeCount(t, factory, householdId))

	_, err = invitations.Accept(context.Background(), thirdUser, &dto.AcceptInvitationRequest{Token: invite.Token})
	require.NoError(t, err)
	assert.Equal(t, int64(2), activeCount(t, factory, householdId))
}

func TestDeactivateIsIdempotent(t *testing.T) {
	factory := newMemoryFactory()
	householdId, adminId, members := seedHousehold(t, factory, 5, 2)

	svc := NewHouseholdService(factory, nil, nopLogger{}, 5)

	require.NoError(t, svc.Deactivate(context.Background(), adminId, householdId, members[1]))
	require.NoError(t, svc.Deactivate(context.Background(), adminId, householdId, members[1]))
	assert.Equal(t, int64(1), activeCount(t, factory, householdId))
}

func TestReactivateRespectsCap(t *testing.T) {
	factory := newMemoryFactory()
	householdId, adminId, members := seedHousehold(t, factory, 2, 2)

	svc := NewHouseholdService(factory, nil, nopLogger{}, 2)

	// Park members[1] inactive, then fill their seat with a new member.
	require.NoError(t, svc.Deactivate(context.Background(), adminId, householdId, members[1]))

	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)
	newUser := seedUser(t, factory, "filler@example.com", "Filler")
	require.NoError(t, uow.MembershipRepository().Create(ctx, &entity.HouseholdMembership{
		Id:          uuid.New(),
		HouseholdId: householdId,
		UserId:      newUser,
		Role:        entity.MembershipRoleMember,
		Active:      true,
	}))

	err := svc.Reactivate(ctx, adminId, householdId, members[1])
	var admission *AdmissionError
	require.ErrorAs(t, err, &admission)
	assert.Equal(t, 2, admission.CurrentUsers)

	// Freeing the seat makes reactivation succeed.
	require.NoError(t, svc.Deactivate(ctx, adminId, householdId, newUser))
	require.NoError(t, svc.Reactivate(ctx, adminId, householdId, members[1]))

	refreshed, err := uow.MembershipRepository().FindOne(ctx,
		specification.ByHouseholdID{HouseholdID: householdId},
		specification.ByUserID{UserID: members[1]},
	)
	require.NoError(t, err)
	assert.True(t, refreshed.Active)
}

func TestReactivateUnknownMember(t *testing.T) {
	factory := newMemoryFactory()
	householdId, adminId, _ := seedHousehold(t, factory, 5, 1)

	svc := NewHouseholdService(factory, nil, nopLogger{}, 5)

	err := svc.Reactivate(context.Background(), adminId, householdId, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActiveMemberships(t *testing.T) {
	factory := newMemoryFactory()
	userId := seedUser(t, factory, "multi@example.com", "Multi")

	svc := NewHouseholdService(factory, nil, nopLogger{}, 5)

	first, err := svc.Register(context.Background(), userId, &dto.RegisterHouseholdRequest{Name: "First"})
	require.NoError(t, err)
	second, err := svc.Register(context.Background(), userId, &dto.RegisterHouseholdRequest{Name: "Second"})
	require.NoError(t, err)

	memberships, err := svc.ActiveMemberships(context.Background(), userId)
	require.NoError(t, err)
	require.Len(t, memberships, 2)
	ids := map[uuid.UUID]bool{memberships[0].HouseholdId: true, memberships[1].HouseholdId: true}
	assert.True(t, ids[first.Id])
	assert.True(t, ids[second.Id])
}
