package integration

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"household-finance-be/internal/dto"
	"household-finance-be/internal/entity"
	"household-finance-be/internal/repository/specification"
	"household-finance-be/internal/repository/unitofwork"
	"household-finance-be/internal/service"
	"household-finance-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type nopMailer struct{}

func (nopMailer) SendInvitation(toEmail, householdName, token string) error          { return nil }
func (nopMailer) SendChatDigest(toEmail, senderName, roomName, preview string) error { return nil }

func TestHouseholdAdmissionFlow(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(ctx)

	assert.NotNil(t, uow.HouseholdRepository())
	assert.NotNil(t, uow.MembershipRepository())
	assert.NotNil(t, uow.InvitationRepository())

	households := service.NewHouseholdService(uowFactory, nil, nopLogger{}, 2)
	invitations := service.NewInvitationService(uowFactory, nopMailer{}, nil, nopLogger{}, time.Hour)
	admission := service.NewAdmissionService(uowFactory)

	newUser := func(name string) uuid.UUID {
		user := entity.User{
			Id:       uuid.New(),
			Email:    "integration-" + uuid.NewString() + "@example.com",
			FullName: name,
			Status:   entity.UserStatusActive,
		}
		require.NoError(t, uow.UserRepository().Create(ctx, &user))
		return user.Id
	}

	owner := newUser("Integration Owner")
	partner := newUser("Integration Partner")
	third := newUser("Integration Third")

	household, err := households.Register(ctx, owner, &dto.RegisterHouseholdRequest{Name: "Integration Household"})
	require.NoError(t, err)
	t.Logf("Registered household %s (cap %d)", household.Id, household.MaxUsers)

	t.Run("Check Admission Probe", func(t *testing.T) {
		status, err := admission.CanAdmit(ctx, owner, household.Id)
		require.NoError(t, err)
		assert.True(t, status.Allowed)
		assert.Equal(t, 1, status.CurrentUsers)
		assert.Equal(t, 2, status.MaxUsers)
	})

	t.Run("Check Invite And Accept", func(t *testing.T) {
		sent, err := invitations.Send(ctx, owner, household.Id, &dto.SendInvitationRequest{Email: "partner@example.com"})
		require.NoError(t, err)

		stored, err := uow.InvitationRepository().FindOne(ctx, specification.ByID{ID: sent.Id})
		require.NoError(t, err)
		require.NotNil(t, stored)

		accepted, err := invitations.Accept(ctx, partner, &dto.AcceptInvitationRequest{Token: stored.Token})
		require.NoError(t, err)
		assert.Equal(t, household.Id, accepted.HouseholdId)
	})

	t.Run("Check Cap Enforcement", func(t *testing.T) {
		// Household is now full (cap 2); sending pre-checks the count.
		_, err := invitations.Send(ctx, owner, household.Id, &dto.SendInvitationRequest{Email: "third@example.com"})
		var admissionErr *service.AdmissionError
		require.ErrorAs(t, err, &admissionErr)
		assert.Equal(t, 2, admissionErr.CurrentUsers)
		assert.Equal(t, 2, admissionErr.MaxUsers)
	})

	t.Run("Check Seat Reuse After Deactivation", func(t *testing.T) {
		require.NoError(t, households.Deactivate(ctx, owner, household.Id, partner))

		sent, err := invitations.Send(ctx, owner, household.Id, &dto.SendInvitationRequest{Email: "third@example.com"})
		require.NoError(t, err)

		stored, err := uow.InvitationRepository().FindOne(ctx, specification.ByID{ID: sent.Id})
		require.NoError(t, err)

		_, err = invitations.Accept(ctx, third, &dto.AcceptInvitationRequest{Token: stored.Token})
		require.NoError(t, err)

		// Reactivating the deactivated partner must now fail: the seat went
		// to the third user.
		err = households.Reactivate(ctx, owner, household.Id, partner)
		var admissionErr *service.AdmissionError
		require.True(t, errors.As(err, &admissionErr))

		count, err := uow.MembershipRepository().CountActive(ctx, household.Id)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
