package contract

import (
	"context"
	"time"

	"household-finance-be/internal/entity"
	"household-finance-be/internal/repository/specification"
)

type InvitationRepository interface {
	Create(ctx context.Context, invitation *entity.Invitation) error
	Update(ctx context.Context, invitation *entity.Invitation) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Invitation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Invitation, error)

	// ExpirePending flips pending invitations past their TTL to expired.
	// Idempotent; driven by the scheduler sweep.
	ExpirePending(ctx context.Context, before time.Time) (int64, error)
}
