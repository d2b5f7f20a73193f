package contract

import (
	"context"

	"household-finance-be/internal/entity"
	"household-finance-be/internal/repository/specification"

	"github.com/google/uuid"
)

type HouseholdRepository interface {
	Create(ctx context.Context, household *entity.Household) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Household, error)

	// LockById reads the household row FOR UPDATE. Only valid inside a
	// transaction; the lock is held until commit/rollback and serializes
	// concurrent admission attempts against the same household.
	LockById(ctx context.Context, id uuid.UUID) (*entity.Household, error)
}
