package contract

import (
	"context"

	"household-finance-be/internal/entity"
	"household-finance-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.User, error)
}

type NotificationPreferenceRepository interface {
	GetByUserId(ctx context.Context, userId uuid.UUID) (*entity.NotificationPreference, error)
	Upsert(ctx context.Context, pref *entity.NotificationPreference) error
}
