// FILE: internal/service/admission_service.go
package service

import (
	"context"

	"household-finance-be/internal/dto"
	"household-finance-be/internal/entity"
	"household-finance-be/internal/repository/specification"
	"household-finance-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IAdmissionService interface {
	// CanAdmit is the advisory probe, restricted to active members of the
	// household. A true answer can go stale before the caller acts on it;
	// every write path re-checks under the row lock.
	CanAdmit(ctx context.Context, actorId, householdId uuid.UUID) (*dto.AdmissionStatus, error)
}

type admissionService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewAdmissionService(uowFactory unitofwork.RepositoryFactory) IAdmissionService {
	return &admissionService{uowFactory: uowFactory}
}

func (s *admissionService) CanAdmit(ctx context.Context, actorId, householdId uuid.UUID) (*dto.AdmissionStatus, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	actor, err := uow.MembershipRepository().FindOne(ctx,
		specification.ByHouseholdID{HouseholdID: householdId},
		specification.ByUserID{UserID: actorId},
		specification.ActiveOnly{},
	)
	if err != nil {
		return nil, err
	}
	if actor == nil {
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

	return &dto.AdmissionStatus{
		Allowed:      count < int64(household.MaxUsers),
		CurrentUsers: int(count),
		MaxUsers:     household.MaxUsers,
	}, nil
}

// admitLocked is the single admission gate shared by every path that adds an
// active membership (registration, invitation accept, reactivation). It MUST
// run inside an open transaction: it takes the household row lock, counts
// active members under that lock, and returns AdmissionError if the cap is
// already reached. The lock is held until the caller commits or rolls back,
// so a concurrent admission against the same household waits here and sees
// the new count.
func admitLocked(ctx context.Context, uow unitofwork.UnitOfWork, householdId uuid.UUID) (*entity.Household, error) {
	household, err := uow.HouseholdRepository().LockById(ctx, householdId)
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

	return household, nil
}
