package contract

import (
	"context"

	"household-finance-be/internal/model"

	"github.com/google/uuid"
)

// NotificationRepository works directly on the model: the inbox rows are a
// write-mostly projection with no domain behavior worth a mapping layer.
type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	GetByUserId(ctx context.Context, userId uuid.UUID, limit, offset int) ([]model.Notification, int64, error)
	GetUnreadCount(ctx context.Context, userId uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
}
