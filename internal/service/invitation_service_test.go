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

func TestSendRequiresAdmin(t *testing.T) {
	factory := newMemoryFactory()
	householdId, _, members := seedHousehold(t, factory, 5, 2)

	svc := newTestInvitationService(factory, &captureMailer{})

	// members[1] is a plain member.
	_, err := svc.Send(context.Background(), members[1], householdId, &dto.SendInvitationRequest{
		Email: "new@example.com",
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	// Strangers are denied the same way.
	_, err = svc.Send(context.Background(), uuid.New(), householdId, &dto.SendInvitationRequest{
		Email: "new@example.com",
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestSendRejectsWhenFull(t *testing.T) {
	factory := newMemoryFactory()
	householdId, adminId, _ := seedHousehold(t, factory, 3, 3)

	svc := newTestInvitationService(factory, &captureMailer{})

	_, err := svc.Send(context.Background(), adminId, householdId, &dto.SendInvitationRequest{
		Email: "new@example.com",
	})

	var admission *AdmissionError
	require.ErrorAs(t, err, &admission)
	assert.Equal(t, 3, admission.CurrentUsers)
	assert.Equal(t, 3, admission.MaxUsers)
}

func TestSendCreatesPendingInvitation(t *testing.T) {
	factory := newMemoryFactory()
	householdId, adminId, _ := seedHousehold(t, factory, 5, 2)

	mail := &captureMailer{}
	svc := newTestInvitationService(factory, mail)

	before := time.Now()
	res, err := svc.Send(context.Background(), adminId, householdId, &dto.SendInvitationRequest{
		Email: "new@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", res.Email)
	assert.True(t, res.ExpiresAt.After(before.Add(71*time.Hour)))

	uow := factory.NewUnitOfWork(context.Background())
	stored, err := uow.InvitationRepository().FindOne(context.Background(),
		specification.ByHouseholdID{HouseholdID: householdId},
		specification.ByEmail{Email: "new@example.com"},
	)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entity.InvitationStatusPending, stored.Status)
	assert.Equal(t, entity.MembershipRoleMember, stored.Role)
	assert.NotEmpty(t, stored.Token)

	// Email goes out off the request path.
	assert.Eventually(t, func() bool {
		return len(mail.sentInvitations()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestAcceptUnknownToken(t *testing.T) {
	factory := newMemoryFactory()
	svc := newTestInvitationService(factory, &captureMailer{})

	_, err := svc.Accept(context.Background(), uuid.New(), &dto.AcceptInvitationRequest{Token: "no-such-token"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptExpiredInvitationMarksExpired(t *testing.T) {
	factory := newMemoryFactory()
	householdId, _, _ := seedHousehold(t, factory, 5, 1)

	invite := seedInvitation(t, factory, householdId, "late@example.com", entity.InvitationStatusPending, time.Now().Add(-time.Minute))
	userId := seedUser(t, factory, "late@example.com", "Late User")

	svc := newTestInvitationService(factory, &captureMailer{})

	_, err := svc.Accept(context.Background(), userId, &dto.AcceptInvitationRequest{Token: invite.Token})
	assert.ErrorIs(t, err, ErrInvitationExpired)

	uow := factory.NewUnitOfWork(context.Background())
	stored, err := uow.InvitationRepository().FindOne(context.Background(), specification.ByToken{Token: invite.Token})
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationStatusExpired, stored.Status)
}

func TestAcceptUsedInvitation(t *testing.T) {
	factory := newMemoryFactory()
	householdId, _, _ := seedHousehold(t, factory, 5, 1)

	invite := seedInvitation(t, factory, householdId, "dup@example.com", entity.InvitationStatusAccepted, time.Now().Add(time.Hour))
	userId := seedUser(t, factory, "dup@example.com", "Dup User")

	svc := newTestInvitationService(factory, &captureMailer{})

	_, err := svc.Accept(context.Background(), userId, &dto.AcceptInvitationRequest{Token: invite.Token})
	assert.ErrorIs(t, err, ErrInvitationUsed)
}

func TestAcceptCreatesMembership(t *testing.T) {
	factory := newMemoryFactory()
	householdId, _, _ := seedHousehold(t, factory, 5, 1)

	invite := seedInvitation(t, factory, householdId, "new@example.com", entity.InvitationStatusPending, time.Now().Add(time.Hour))
	userId := seedUser(t, factory, "new@example.com", "New User")

	svc := newTestInvitationService(factory, &captureMailer{})

	res, err := svc.Accept(context.Background(), userId, &dto.AcceptInvitationRequest{Token: invite.Token})
	require.NoError(t, err)
	assert.Equal(t, householdId, res.HouseholdId)
	assert.Equal(t, "member", res.Role)

	uow := factory.NewUnitOfWork(context.Background())
	membership, err := uow.MembershipRepository().FindOne(context.Background(),
		specification.ByHouseholdID{HouseholdID: householdId},
		specification.ByUserID{UserID: userId},
	)
	require.NoError(t, err)
	require.NotNil(t, membership)
	assert.True(t, membership.Active)
	assert.Equal(t, entity.MembershipRoleMember, membership.Role)

	stored, err := uow.InvitationRepository().FindOne(context.Background(), specification.ByToken{Token: invite.Token})
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationStatusAccepted, stored.Status)
	require.NotNil(t, stored.AcceptedAt)
}

func TestAcceptReactivatesInactiveMembership(t *testing.T) {
	factory := newMemoryFactory()
	householdId, _, members := seedHousehold(t, factory, 5, 2)

	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)
	membership, err := uow.MembershipRepository().FindOne(ctx,
		specification.ByHouseholdID{HouseholdID: householdId},
		specification.ByUserID{UserID: members[1]},
	)
	require.NoError(t, err)
	membership.Active = false
	require.NoError(t, uow.MembershipRepository().Update(ctx, membership))

	invite := seedInvitation(t, factory, householdId, "back@example.com", entity.InvitationStatusPending, time.Now().Add(time.Hour))

	svc := newTestInvitationService(factory, &captureMailer{})

	_, err = svc.Accept(ctx, members[1], &dto.AcceptInvitationRequest{Token: invite.Token})
	require.NoError(t, err)

	refreshed, err := uow.MembershipRepository().FindOne(ctx,
		specification.ByHouseholdID{HouseholdID: householdId},
		specification.ByUserID{UserID: members[1]},
	)
	require.NoError(t, err)
	assert.True(t, refreshed.Active)
	assert.Equal(t, invite.Role, refreshed.Role)
}

func TestAcceptIsNoopForActiveMembership(t *testing.T) {
	factory := newMemoryFactory()
	householdId, _, members := seedHousehold(t, factory, 5, 2)

	invite := seedInvitation(t, factory, householdId, "again@example.com", entity.InvitationStatusPending, time.Now().Add(time.Hour))

	svc := newTestInvitationService(factory, &captureMailer{})

	_, err := svc.Accept(context.Background(), members[1], &dto.AcceptInvitationRequest{Token: invite.Token})
	require.NoError(t, err)

	assert.Equal(t, int64(2), activeCount(t, factory, householdId))

	uow := factory.NewUnitOfWork(context.Background())
	stored, err := uow.InvitationRepository().FindOne(context.Background(), specification.ByToken{Token: invite.Token})
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationStatusAccepted, stored.Status)
}

func TestExpireSweep(t *testing.T) {
	factory := newMemoryFactory()
	householdId, _, _ := seedHousehold(t, factory, 5, 1)

	past := seedInvitation(t, factory, householdId, "past@example.com", entity.InvitationStatusPending, time.Now().Add(-time.Hour))
	future := seedInvitation(t, factory, householdId, "future@example.com", entity.InvitationStatusPending, time.Now().Add(time.Hour))

	svc := newTestInvitationService(factory, &captureMailer{})

	expired, err := svc.ExpireSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	uow := factory.NewUnitOfWork(context.Background())
	storedPast, err := uow.InvitationRepository().FindOne(context.Background(), specification.ByToken{Token: past.Token})
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationStatusExpired, storedPast.Status)

	storedFuture, err := uow.InvitationRepository().FindOne(context.Background(), specification.ByToken{Token: future.Token})
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationStatusPending, storedFuture.Status)

	// Sweeping again finds nothing.
	expired, err = svc.ExpireSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), expired)
}
