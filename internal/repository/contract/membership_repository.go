package contract

import (
	"context"

	"household-finance-be/internal/entity"
	"household-finance-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MembershipRepository interface {
	Create(ctx context.Context, membership *entity.HouseholdMembership) error
	Update(ctx context.Context, membership *entity.HouseholdMembership) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.HouseholdMembership, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.HouseholdMembership, error)

	// CountActive returns the number of active memberships for a household.
	// Inside an admission transaction this count is taken under the
	// household row lock, so it cannot race with a concurrent insert.
	CountActive(ctx context.Context, householdId uuid.UUID) (int64, error)
}
