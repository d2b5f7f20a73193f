package contract

import (
	"context"

	"household-finance-be/internal/entity"
	"household-finance-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// FindRecentByRoom returns the most recent limit messages for a room,
	// ordered oldest first, ready for history replay on chat-join.
	FindRecentByRoom(ctx context.Context, kind entity.RoomKind, roomId uuid.UUID, limit int) ([]*entity.ChatMessage, error)
}
