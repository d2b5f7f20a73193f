// FILE: internal/service/household_service.go
package service

import (
	"context"
	"time"

	"household-finance-be/internal/dto"
	"household-finance-be/internal/entity"
	"household-finance-be/internal/pkg/logger"
	"household-finance-be/internal/repository/specification"
	"household-finance-be/internal/repository/unitofwork"
	pktNats "household-finance-be/pkg/nats"

	"household-finance-be/pkg/events"

	"github.com/google/uuid"
)

type IHouseholdService interface {
	Register(ctx context.Context, userId uuid.UUID, req *dto.RegisterHouseholdRequest) (*dto.RegisterHouseholdResponse, error)
	Members(ctx context.Context, userId uuid.UUID, householdId uuid.UUID) ([]*dto.MemberResponse, error)
	Deactivate(ctx context.Context, actorId, householdId, targetUserId uuid.UUID) error
	Reactivate(ctx context.Context, actorId, householdId, targetUserId uuid.UUID) error

	// ActiveMemberships is used by the realtime gateway to build the session
	// and auto-join household rooms.
	ActiveMemberships(ctx context.Context, userId uuid.UUID) ([]*entity.HouseholdMembership, error)
}

type householdService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  *pktNats.Publisher
	logger     logger.ILogger
	maxUsers   int
}

func NewHouseholdService(
	uowFactory unitofwork.RepositoryFactory,
	publisher *pktNats.Publisher,
	log logger.ILogger,
	maxUsers int,
) IHouseholdService {
	return &householdService{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     log,
		maxUsers:   maxUsers,
	}
}

// Register creates a household and admits the creator as its first admin.
// The creator goes through the same admission transaction as everyone else;
// with a fresh household the count is zero, but the discipline is uniform.
func (s *householdService) Register(ctx context.Context, userId uuid.UUID, req *dto.RegisterHouseholdRequest) (*dto.RegisterHouseholdResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	household := entity.Household{
		Id:       uuid.New(),
		Name:     req.Name,
		MaxUsers: s.maxUsers,
	}
	if err := uow.HouseholdRepository().Create(ctx, &household); err != nil {
		return nil, err
	}

	if _, err := admitLocked(ctx, uow, household.Id); err != nil {
		return nil, err
	}

	membership := entity.HouseholdMembership{
		Id:          uuid.New(),
		HouseholdId: household.Id,
		UserId:      userId,
		Role:        entity.MembershipRoleAdmin,
		Active:      true,
		JoinedAt:    time.Now(),
	}
	if err := uow.MembershipRepository().Create(ctx, &membership); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewMemberJoined(household.Id, userId, string(entity.MembershipRoleAdmin)))

	return &dto.RegisterHouseholdResponse{
		Id:       household.Id,
		Name:     household.Name,
		MaxUsers: household.MaxUsers,
	}, nil
}

func (s *householdService) Members(ctx context.Context, userId uuid.UUID, householdId uuid.UUID) ([]*dto.MemberResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.requireActiveMembership(ctx, uow, userId, householdId); err != nil {
		return nil, err
	}

	memberships, err := uow.MembershipRepository().FindAll(ctx,
		specification.ByHouseholdID{HouseholdID: householdId},
	)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.UserId)
	}
	users, err := uow.UserRepository().FindByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	byId := make(map[uuid.UUID]*entity.User, len(users))
	for _, u := range users {
		byId[u.Id] = u
	}

	result := make([]*dto.MemberResponse, 0, len(memberships))
	for _, m := range memberships {
		res := dto.MemberResponse{
			UserId:   m.UserId,
			Role:     string(m.Role),
			Active:   m.Active,
			JoinedAt: m.JoinedAt,
		}
		if u, ok := byId[m.UserId]; ok {
			res.Email = u.Email
			res.FullName = u.FullName
		}
		result = append(result, &res)
	}

	return result, nil
}

// Deactivate flips a member inactive. It only ever decreases the active
// count, so no admission transaction is needed.
func (s *householdService) Deactivate(ctx context.Context, actorId, householdId, targetUserId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := s.requireAdmin(ctx, uow, actorId, householdId); err != nil {
		return err
	}

	membership, err := uow.MembershipRepository().FindOne(ctx,
		specification.ByHouseholdID{HouseholdID: householdId},
		specification.ByUserID{UserID: targetUserId},
	)
	if err != nil {
		return err
	}
	if membership == nil {
		return ErrNotFound
	}
	if !membership.Active {
		return nil
	}

	membership.Active = false
	if err := uow.MembershipRepository().Update(ctx, membership); err != nil {
		return err
	}

	s.publishEvent(ctx, events.NewMemberDeactivated(householdId, targetUserId))
	return nil
}

// Reactivate re-admits a previously deactivated member under the same lock
// discipline as a fresh admission.
func (s *householdService) Reactivate(ctx context.Context, actorId, householdId, targetUserId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := s.requireAdmin(ctx, uow, actorId, householdId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if _, err := admitLocked(ctx, uow, householdId); err != nil {
		return err
	}

	membership, err := uow.MembershipRepository().FindOne(ctx,
		specification.ByHouseholdID{HouseholdID: householdId},
		specification.ByUserID{UserID: targetUserId},
	)
	if err != nil {
		return err
	}
	if membership == nil {
		return ErrNotFound
	}
	if membership.Active {
		return uow.Commit()
	}

	membership.Active = true
	if err := uow.MembershipRepository().Update(ctx, membership); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.publishEvent(ctx, events.NewMemberJoined(householdId, targetUserId, string(membership.Role)))
	return nil
}

func (s *householdService) ActiveMemberships(ctx context.Context, userId uuid.UUID) ([]*entity.HouseholdMembership, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.MembershipRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.ActiveOnly{},
	)
}

func (s *householdService) requireActiveMembership(ctx context.Context, uow unitofwork.UnitOfWork, userId, householdId uuid.UUID) (*entity.HouseholdMembership, error) {
	membership, err := uow.MembershipRepository().FindOne(ctx,
		specification.ByHouseholdID{HouseholdID: householdId},
		specification.ByUserID{UserID: userId},
		specification.ActiveOnly{},
	)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, ErrAccessDenied
	}
	return membership, nil
}

func (s *householdService) requireAdmin(ctx context.Context, uow unitofwork.UnitOfWork, userId, householdId uuid.UUID) error {
	membership, err := s.requireActiveMembership(ctx, uow, userId, householdId)
	if err != nil {
		return err
	}
	if membership.Role != entity.MembershipRoleAdmin {
		return ErrAccessDenied
	}
	return nil
}

// publishEvent is best-effort: the membership change already committed, so a
// broken NATS connection must not fail the request. The worker catches up
// from the stream once the connection returns.
func (s *householdService) publishEvent(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("HouseholdService", "Failed to publish domain event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
