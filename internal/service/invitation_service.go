// FILE: internal/service/invitation_service.go
package service

import (
	"context"
	"time"

	"household-finance-be/internal/dto"
	"household-finance-be/internal/entity"
	"household-finance-be/internal/pkg/logger"
	"household-finance-be/internal/pkg/mailer"
	"household-finance-be/internal/repository/specification"
	"household-finance-be/internal/repository/unitofwork"
	"household-finance-be/pkg/events"
	pktNats "household-finance-be/pkg/nats"

	"github.com/google/uuid"
)

type IInvitationService interface {
	Send(ctx context.Context, actorId, householdId uuid.UUID, req *dto.SendInvitationRequest) (*dto.SendInvitationResponse, error)
	Accept(ctx context.Context, userId uuid.UUID, req *dto.AcceptInvitationRequest) (*dto.AcceptInvitationResponse, error)

	// ExpireSweep flips pending invitations past their TTL to expired.
	// Driven by the scheduler; idempotent.
	ExpireSweep(ctx context.Context) (int64, error)
}

type invitationService struct {
	uowFactory   unitofwork.RepositoryFactory
	emailService mailer.IEmailService
	publisher    *pktNats.Publisher
	logger       logger.ILogger
	ttl          time.Duration
}

func NewInvitationService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	publisher *pktNats.Publisher,
	log logger.ILogger,
	ttl time.Duration,
) IInvitationService {
	return &invitationService{
		uowFactory:   uowFactory,
		emailService: emailService,
		publisher:    publisher,
		logger:       log,
		ttl:          ttl,
	}
}

// Send pre-checks admission before creating the invitation. The pre-check is
// advisory (the binding check happens at accept time), but refusing up front
// avoids inviting someone into a household that is already full.
func (s *invitationService) Send(ctx context.Context, actorId, householdId uuid.UUID, req *dto.SendInvitationRequest) (*dto.SendInvitationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	actor, err := uow.MembershipRepository().FindOne(ctx,
		specification.ByHouseholdID{HouseholdID: householdId},
		specification.ByUserID{UserID: actorId},
		specification.ActiveOnly{},
	)
	if err != nil {
		return nil, err
	}
	if actor == nil || actor.Role != entity.MembershipRoleAdmin {
		return nil, ErrAccessDenied
	}

	household, err := uow.HouseholdRepository().FindOne(ctx, specification.ByID{ID: householdId})
	if err != nil {
		return nil, err
	}
	if household == nil {
		return nil, ErrNotFound
	}

	count, err := uow.MembershipRepository().CountActive(ctx, householdId)
	if err != nil {
		return nil, err
	}
	if count >= int64(household.MaxUsers) {
		return nil, &AdmissionError{CurrentUsers: int(count), MaxUsers: household.MaxUsers}
	}

	role := entity.MembershipRole(req.Role)
	if role == "" {
		role = entity.MembershipRoleMember
	}

	invitation := entity.Invitation{
		Id:          uuid.New(),
		HouseholdId: householdId,
		Email:       req.Email,
		Role:        role,
		Token:       uuid.NewString(),
		Status:      entity.InvitationStatusPending,
		ExpiresAt:   time.Now().Add(s.ttl),
	}
	if err := uow.InvitationRepository().Create(ctx, &invitation); err != nil {
		return nil, err
	}

	// Email delivery is best-effort and off the request path.
	go func() {
		if err := s.emailService.SendInvitation(invitation.Email, household.Name, invitation.Token); err != nil {
			s.logger.Warn("InvitationService", "Failed to send invitation email", map[string]interface{}{
				"email": invitation.Email,
				"error": err.Error(),
			})
		}
	}()

	s.publishEvent(ctx, events.NewInvitationSent(householdId, invitation.Email, string(role)))

	return &dto.SendInvitationResponse{
		Id:        invitation.Id,
		Email:     invitation.Email,
		ExpiresAt: invitation.ExpiresAt,
	}, nil
}

// Accept re-checks admission inside the same transaction that inserts the
// membership. On denial the invitation stays pending so it can be retried
// once a member leaves. A token is a single consume: the status is checked
// again under the household lock, so two concurrent accepts of the same
// token admit exactly one member.
func (s *invitationService) Accept(ctx context.Context, userId uuid.UUID, req *dto.AcceptInvitationRequest) (*dto.AcceptInvitationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	invitation, err := uow.InvitationRepository().FindOne(ctx, specification.ByToken{Token: req.Token})
	if err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, ErrNotFound
	}
	if invitation.Status == entity.InvitationStatusAccepted {
		return nil, ErrInvitationUsed
	}
	if invitation.Status == entity.InvitationStatusExpired || invitation.Expired(time.Now()) {
		if invitation.Status == entity.InvitationStatusPending {
			invitation.Status = entity.InvitationStatusExpired
			if err := uow.InvitationRepository().Update(ctx, invitation); err != nil {
				s.logger.Warn("InvitationService", "Failed to mark invitation expired", map[string]interface{}{
					"invitation_id": invitation.Id,
					"error":         err.Error(),
				})
			}
		}
		return nil, ErrInvitationExpired
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if _, err := admitLocked(ctx, uow, invitation.HouseholdId); err != nil {
		// AdmissionError: rollback leaves the invitation pending.
		return nil, err
	}

	// Re-read the invitation under the household lock. The fast-fail checks
	// above run on a plain read, so a concurrent accept of the same token
	// can pass them too; both then serialize through admitLocked and the
	// loser sees the winner's transition here.
	invitation, err = uow.InvitationRepository().FindOne(ctx, specification.ByToken{Token: req.Token})
	if err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, ErrNotFound
	}
	if invitation.Status == entity.InvitationStatusAccepted {
		return nil, ErrInvitationUsed
	}
	if invitation.Status == entity.InvitationStatusExpired || invitation.Expired(time.Now()) {
		return nil, ErrInvitationExpired
	}

	existing, err := uow.MembershipRepository().FindOne(ctx,
		specification.ByHouseholdID{HouseholdID: invitation.HouseholdId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, err
	}

	switch {
	case existing == nil:
		membership := entity.HouseholdMembership{
			Id:          uuid.New(),
			HouseholdId: invitation.HouseholdId,
			UserId:      userId,
			Role:        invitation.Role,
			Active:      true,
			JoinedAt:    time.Now(),
		}
		if err := uow.MembershipRepository().Create(ctx, &membership); err != nil {
			return nil, err
		}
	case !existing.Active:
		existing.Active = true
		existing.Role = invitation.Role
		if err := uow.MembershipRepository().Update(ctx, existing); err != nil {
			return nil, err
		}
	}
	// existing && active: accepting again is a no-op on the membership.

	now := time.Now()
	invitation.Status = entity.InvitationStatusAccepted
	invitation.AcceptedAt = &now
	if err := uow.InvitationRepository().Update(ctx, invitation); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewMemberJoined(invitation.HouseholdId, userId, string(invitation.Role)))

	return &dto.AcceptInvitationResponse{
		HouseholdId: invitation.HouseholdId,
		Role:        string(invitation.Role),
	}, nil
}

func (s *invitationService) ExpireSweep(ctx context.Context) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	expired, err := uow.InvitationRepository().ExpirePending(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.logger.Info("InvitationService", "Expired pending invitations", map[string]interface{}{"count": expired})
	}
	return expired, nil
}

func (s *invitationService) publishEvent(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("InvitationService", "Failed to publish domain event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
